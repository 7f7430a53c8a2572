package proxyserver

import (
	"context"

	"github.com/EOS-Nation/eosn-proxy/proxyjson"
	"github.com/EOS-Nation/eosn-proxy/service"
)

// handleSetReferral implements the setreferral command.
func handleSetReferral(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SetReferralCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid setreferral command")
	}

	err := service.GetReferralService().Set(context.Background(), s.db,
		cmd.Name, cmd.Website, cmd.Description, cmd.Rate)
	if err != nil {
		return nil, err
	}
	log.Info("referral registered", "name", cmd.Name, "rate", cmd.Rate)
	return nil, nil
}

// handleDelReferral implements the delreferral command.
func handleDelReferral(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.DelReferralCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid delreferral command")
	}

	if err := service.GetReferralService().Remove(context.Background(), s.db, cmd.Name); err != nil {
		return nil, err
	}
	log.Info("referral removed", "name", cmd.Name)
	return nil, nil
}

// handleGetReferrals implements the getreferrals command.
func handleGetReferrals(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	infos, err := service.GetReferralService().GetAll(context.Background(), s.db)
	if err != nil {
		return nil, err
	}
	results := make([]proxyjson.ReferralResult, 0, len(infos))
	for _, info := range infos {
		results = append(results, proxyjson.ReferralResult{
			Name:        info.Name,
			Website:     info.Website,
			Description: info.Description,
			Rate:        info.Rate,
		})
	}
	return results, nil
}

// handleSetProxy implements the setproxy command.
func handleSetProxy(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SetProxyCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid setproxy command")
	}

	if err := service.GetProxyService().Set(context.Background(), s.db, cmd.Proxy, cmd.Active); err != nil {
		return nil, err
	}
	log.Info("proxy updated", "proxy", cmd.Proxy, "active", cmd.Active)
	return nil, nil
}

// handleGetProxies implements the getproxies command.
func handleGetProxies(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	infos, err := service.GetProxyService().GetAll(context.Background(), s.db)
	if err != nil {
		return nil, err
	}
	results := make([]proxyjson.ProxyResult, 0, len(infos))
	for _, info := range infos {
		results = append(results, proxyjson.ProxyResult{
			Proxy:  info.Proxy,
			Active: info.Active,
		})
	}
	return results, nil
}
