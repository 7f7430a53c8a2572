package proxyserver

import (
	"context"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/proxyjson"
	"github.com/EOS-Nation/eosn-proxy/service"
)

func voterResult(info *do.VoterInfo) proxyjson.VoterResult {
	return proxyjson.VoterResult{
		Owner:           info.Owner,
		Staked:          info.Staked,
		NextClaimPeriod: info.NextClaimPeriod,
		Referral:        info.Referral,
		Rewards:         info.Rewards,
		Version:         info.Version,
	}
}

// handleSignup implements the signup command.
func handleSignup(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SignupCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid signup command")
	}

	info, err := s.engine.Signup(context.Background(), cmd.Owner, cmd.Referral)
	if err != nil {
		return nil, err
	}
	result := voterResult(info)
	return &result, nil
}

// handleUnsignup implements the unsignup command.
func handleUnsignup(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.UnsignupCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid unsignup command")
	}

	if err := s.engine.Unsignup(context.Background(), cmd.Owner); err != nil {
		return nil, err
	}
	return nil, nil
}

// handleRefresh implements the refresh command.
func handleRefresh(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.RefreshCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid refresh command")
	}

	info, err := s.engine.Refresh(context.Background(), cmd.Owner)
	if err != nil {
		return nil, err
	}
	result := voterResult(info)
	return &result, nil
}

// handleMigrate implements the migrate command.
func handleMigrate(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.MigrateCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid migrate command")
	}

	migrated, err := s.engine.Migrate(context.Background(), cmd.Owner)
	if err != nil {
		return nil, err
	}
	return &proxyjson.MigrateResult{Migrated: migrated}, nil
}

// handleMigrateAll implements the migrateall command.
func handleMigrateAll(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.MigrateAllCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid migrateall command")
	}

	migrated, err := s.engine.MigrateAll(context.Background(), cmd.Skip)
	if err != nil {
		return nil, err
	}
	return &proxyjson.MigrateAllResult{Migrated: migrated}, nil
}

// handleGetVoter implements the getvoter command.
func handleGetVoter(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.GetVoterCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid getvoter command")
	}

	info, err := service.GetVoterService().Get(context.Background(), s.db, cmd.Owner)
	if err != nil {
		return nil, err
	}
	result := voterResult(info)
	return &result, nil
}

// handleGetVoters implements the getvoters command.
func handleGetVoters(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.GetVotersCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid getvoters command")
	}

	voterService := service.GetVoterService()
	ctx := context.Background()
	total, err := voterService.GetVoterNum(ctx, s.db)
	if err != nil {
		return nil, err
	}
	num := cmd.Num
	if num <= 0 || num > 1000 {
		num = 100
	}
	infos, err := voterService.GetPage(ctx, s.db, cmd.Page, num, true)
	if err != nil {
		return nil, err
	}

	voters := make([]proxyjson.VoterResult, 0, len(infos))
	for _, info := range infos {
		voters = append(voters, voterResult(info))
	}
	return &proxyjson.GetVotersResult{
		Total:  total,
		Voters: voters,
	}, nil
}
