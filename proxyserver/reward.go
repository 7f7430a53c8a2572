package proxyserver

import (
	"context"

	"github.com/EOS-Nation/eosn-proxy/model"
	"github.com/EOS-Nation/eosn-proxy/proxyjson"
	"github.com/EOS-Nation/eosn-proxy/service"
)

// handleSetReward implements the setreward command.
func handleSetReward(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SetRewardCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid setreward command")
	}

	err := service.GetRewardService().RegisterAsset(context.Background(), s.db, cmd.Symbol, cmd.Contract, cmd.Price)
	if err != nil {
		return nil, err
	}
	log.Info("reward asset registered", "symbol", cmd.Symbol, "contract", cmd.Contract, "price", cmd.Price)
	return nil, nil
}

// handleDelReward implements the delreward command.
func handleDelReward(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.DelRewardCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid delreward command")
	}

	if err := service.GetRewardService().RemoveAsset(context.Background(), s.db, cmd.Symbol); err != nil {
		return nil, err
	}
	log.Info("reward asset removed", "symbol", cmd.Symbol)
	return nil, nil
}

// handleSetPrice implements the setprice command.
func handleSetPrice(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SetPriceCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid setprice command")
	}

	if err := service.GetRewardService().UpdatePrice(context.Background(), s.db, cmd.Symbol, cmd.Price); err != nil {
		return nil, err
	}
	if s.priceMgr != nil {
		s.priceMgr.Invalidate(cmd.Symbol)
	}
	return nil, nil
}

// handleSetPrices implements the setprices command. The update is not
// transactional across symbols: a bad quote fails the whole call but quotes
// before it are already stored.
func handleSetPrices(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SetPricesCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid setprices command")
	}

	rewardService := service.GetRewardService()
	ctx := context.Background()
	for _, quote := range cmd.Prices {
		if err := rewardService.UpdatePrice(ctx, s.db, quote.Symbol, quote.Price); err != nil {
			return nil, err
		}
		if s.priceMgr != nil {
			s.priceMgr.Invalidate(quote.Symbol)
		}
	}
	return nil, nil
}

// handleGetRewards implements the getrewards command.
func handleGetRewards(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	infos, err := service.GetRewardService().GetAssets(context.Background(), s.db)
	if err != nil {
		return nil, err
	}
	results := make([]proxyjson.RewardAssetResult, 0, len(infos))
	for _, info := range infos {
		results = append(results, proxyjson.RewardAssetResult{
			Symbol:   info.Symbol,
			Contract: info.Contract,
			Price:    info.Price,
		})
	}
	return results, nil
}

// handleSetPortfolio implements the setportfolio command.
func handleSetPortfolio(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SetPortfolioCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid setportfolio command")
	}

	entries := make([]model.PortfolioEntry, 0, len(cmd.Entries))
	for _, e := range cmd.Entries {
		entries = append(entries, model.PortfolioEntry{
			Symbol:  e.Symbol,
			Percent: e.Percent,
		})
	}
	if err := service.GetRewardService().SetPortfolio(context.Background(), s.db, cmd.Account, entries); err != nil {
		return nil, err
	}
	return nil, nil
}

// handleDelPortfolio implements the delportfolio command.
func handleDelPortfolio(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.DelPortfolioCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid delportfolio command")
	}

	if err := service.GetRewardService().ClearPortfolio(context.Background(), s.db, cmd.Account); err != nil {
		return nil, err
	}
	return nil, nil
}

// handleGetPortfolio implements the getportfolio command.
func handleGetPortfolio(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.GetPortfolioCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid getportfolio command")
	}

	entries, err := service.GetRewardService().GetPortfolio(context.Background(), s.db, cmd.Account)
	if err != nil {
		return nil, err
	}
	result := proxyjson.PortfolioResult{
		Account: cmd.Account,
		Entries: make([]proxyjson.PortfolioEntry, 0, len(entries)),
	}
	for _, e := range entries {
		result.Entries = append(result.Entries, proxyjson.PortfolioEntry{
			Symbol:  e.Symbol,
			Percent: e.Percent,
		})
	}
	return &result, nil
}
