package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/constdef"
	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/ledgerclient"
	"github.com/EOS-Nation/eosn-proxy/service"
	"github.com/EOS-Nation/eosn-proxy/stakingclient"
)

// clientReconnectAttempts bounds how often the ws clients retry the initial
// connection before giving up at startup.
const clientReconnectAttempts = 5

// proxyMain is the real main function. It is necessary to work around the
// fact that deferred functions do not run when os.Exit() is called.
func proxyMain() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	mainLog.Info("Version", "version", chaincfg.BackendVersion,
		"net", chaincfg.ActiveNetParams.Name, "go", runtime.Version())

	dbCfg := &dal.DBConfig{
		Username:     cfg.DbUsername,
		Password:     cfg.DbPassword,
		Address:      cfg.DbAddress,
		DatabaseName: cfg.DbName,
	}
	if err := dal.InitDB(dbCfg, !cfg.DisableAutoCreateDB); err != nil {
		mainLog.Error("Unable to initialize database", "error", err)
		return err
	}

	if err := seedBaseAsset(); err != nil {
		mainLog.Error("Unable to seed base reward asset", "error", err)
		return err
	}

	ledgerClient, err := setupLedgerClient(cfg)
	if err != nil {
		mainLog.Error("Unable to connect to ledger", "error", err)
		return err
	}
	defer ledgerClient.Stop()

	stakingClient, err := setupStakingClient(cfg)
	if err != nil {
		mainLog.Error("Unable to connect to staking registry", "error", err)
		return err
	}
	defer stakingClient.Stop()

	svr, err := newServer(cfg, ledgerClient, stakingClient)
	if err != nil {
		mainLog.Error("Unable to create server", "error", err)
		return err
	}
	svr.Start()

	addInterruptHandler(func() {
		mainLog.Info("Stopping server...")
		if err := svr.Stop(); err != nil {
			mainLog.Error("Problem shutting down server", "error", err)
		}
	})

	// Wait until the interrupt handler has fully shut the server down.
	<-interruptHandlersDone
	mainLog.Info("Shutdown complete")
	return nil
}

// seedBaseAsset registers the base asset at par so claims can settle before
// any admin has touched the reward registry. Registration of an existing
// symbol is left untouched.
func seedBaseAsset() error {
	params := chaincfg.ActiveNetParams
	rewardService := service.GetRewardService()
	ctx := context.Background()

	_, err := rewardService.GetAsset(ctx, dal.GlobalDBClient, params.BaseSymbol)
	if err == nil {
		return nil
	}
	return rewardService.RegisterAsset(ctx, dal.GlobalDBClient,
		params.BaseSymbol, params.BaseContract, constdef.PriceScale)
}

// setupLedgerClient connects the payout ledger websocket client.
func setupLedgerClient(cfg *config) (*ledgerclient.RPCClient, error) {
	var certs []byte
	if !cfg.DisableLedgerClientTLS && cfg.LedgerCAFile != "" {
		var err error
		certs, err = os.ReadFile(cleanAndExpandPath(cfg.LedgerCAFile))
		if err != nil {
			return nil, err
		}
	}

	client, err := ledgerclient.NewRPCClient(cfg.LedgerRPCConnect, cfg.LedgerRPCUser,
		cfg.LedgerRPCPass, certs, cfg.DisableLedgerClientTLS, clientReconnectAttempts)
	if err != nil {
		return nil, err
	}
	if err := client.Start(); err != nil {
		return nil, err
	}
	mainLog.Info("Connected to ledger", "address", cfg.LedgerRPCConnect)
	return client, nil
}

// setupStakingClient connects the staking registry websocket client.
func setupStakingClient(cfg *config) (*stakingclient.RPCClient, error) {
	var certs []byte
	if !cfg.DisableStakingClientTLS && cfg.StakingCAFile != "" {
		var err error
		certs, err = os.ReadFile(cleanAndExpandPath(cfg.StakingCAFile))
		if err != nil {
			return nil, err
		}
	}

	client, err := stakingclient.NewRPCClient(cfg.StakingRPCConnect, cfg.StakingRPCUser,
		cfg.StakingRPCPass, certs, cfg.DisableStakingClientTLS, clientReconnectAttempts)
	if err != nil {
		return nil, err
	}
	if err := client.Start(); err != nil {
		return nil, err
	}
	mainLog.Info("Connected to staking registry", "address", cfg.StakingRPCConnect)
	return client, nil
}

func main() {
	if err := proxyMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
