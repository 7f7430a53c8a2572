package proxyserver

import (
	"context"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/proxyjson"
	"github.com/EOS-Nation/eosn-proxy/service"
)

// handleSetRate implements the setrate command.
func handleSetRate(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SetRateCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid setrate command")
	}

	if err := service.GetSettingsService().SetRate(context.Background(), s.db, cmd.Rate); err != nil {
		return nil, err
	}
	log.Info("annual rate changed", "rate", cmd.Rate)
	return nil, nil
}

// handleSetInterval implements the setinterval command.
func handleSetInterval(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SetIntervalCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid setinterval command")
	}

	if err := service.GetSettingsService().SetInterval(context.Background(), s.db, cmd.Interval); err != nil {
		return nil, err
	}
	log.Info("claim interval changed", "interval", cmd.Interval)
	return nil, nil
}

// handleSetRent implements the setrent command.
func handleSetRent(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.SetRentCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid setrent command")
	}

	if err := service.GetSettingsService().SetRentRate(context.Background(), s.db, cmd.Rate); err != nil {
		return nil, err
	}
	log.Info("rent rate changed", "rate", cmd.Rate)
	return nil, nil
}

// handlePause implements the pause command.
func handlePause(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.PauseCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid pause command")
	}

	if err := service.GetSettingsService().SetPaused(context.Background(), s.db, cmd.Paused); err != nil {
		return nil, err
	}
	if cmd.Paused {
		log.Warn("engine paused")
	} else {
		log.Warn("engine resumed")
	}
	return nil, nil
}

// handleClean implements the clean command.
func handleClean(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*proxyjson.CleanCmd)
	if !ok {
		return nil, proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, "invalid clean command")
	}

	rows, err := service.GetAdminService().Clean(context.Background(), s.db, cmd.Selector)
	if err != nil {
		return nil, err
	}
	return &proxyjson.CleanResult{Rows: rows}, nil
}

// handleGetSettings implements the getsettings command.
func handleGetSettings(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	settings, err := service.GetSettingsService().Get(context.Background(), s.db)
	if err != nil {
		return nil, err
	}
	return &proxyjson.SettingsResult{
		Rate:                settings.Rate,
		Interval:            settings.Interval,
		RentRate:            settings.RentRate,
		MaxCatchupIntervals: settings.MaxCatchupIntervals,
		Paused:              settings.Paused,
	}, nil
}

// handleGetInfo implements the getinfo command.
func handleGetInfo(s *ProxyServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	ctx := context.Background()

	settings, err := service.GetSettingsService().Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	voters, err := service.GetVoterService().GetVoterNum(ctx, s.db)
	if err != nil {
		return nil, err
	}
	receipts, err := service.GetReceiptService().GetReceiptNum(ctx, s.db)
	if err != nil {
		return nil, err
	}
	activeProxy, err := service.GetProxyService().ActiveProxy(ctx, s.db)
	if err != nil {
		activeProxy = ""
	}

	return &proxyjson.GetInfoResult{
		Version:     chaincfg.BackendVersion,
		Net:         chaincfg.ActiveNetParams.Name,
		Voters:      voters,
		Receipts:    receipts,
		Paused:      settings.Paused,
		ActiveProxy: activeProxy,
	}, nil
}
