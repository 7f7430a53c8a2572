package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net"

	"github.com/EOS-Nation/eosn-proxy/claimmgr"
	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/ledgerclient"
	"github.com/EOS-Nation/eosn-proxy/model"
	"github.com/EOS-Nation/eosn-proxy/pricefeed"
	"github.com/EOS-Nation/eosn-proxy/pricemgr"
	"github.com/EOS-Nation/eosn-proxy/proxyserver"
	"github.com/EOS-Nation/eosn-proxy/reservemgr"
	"github.com/EOS-Nation/eosn-proxy/stakingclient"
)

// server ties the RPC front end to the claim engine and the background
// managers, and owns their start/stop ordering.
type server struct {
	rpcServer  *proxyserver.ProxyServer
	engine     *claimmgr.Engine
	priceMgr   *pricemgr.PriceManager
	reserveMgr *reservemgr.ReserveManager
}

// newServer builds the claim engine and the managers around the already
// connected ledger and staking clients, then constructs the RPC server on
// the configured listeners.
func newServer(cfg *config, ledgerClient *ledgerclient.RPCClient,
	stakingClient *stakingclient.RPCClient) (*server, error) {

	engineCfg := &model.EngineConfig{
		ClaimAllPageSize:    cfg.ClaimAllPageSize,
		MigrateAllPageSize:  cfg.MigrateAllPageSize,
		ReserveFloat:        cfg.ReserveFloat,
		ReserveTarget:       cfg.ReserveTarget,
		PriceRefreshSeconds: cfg.PriceRefresh,
	}
	engine := claimmgr.NewEngine(dal.GlobalDBClient, engineCfg, nil, ledgerClient, stakingClient)
	stakingClient.Subscribe(func(ntfn *stakingclient.Notification) {
		if ntfn.Type != stakingclient.NTDelegationChanged {
			return
		}
		if change, ok := ntfn.Data.(*model.DelegationChange); ok {
			engine.HandleDelegationChange(context.Background(), change)
		}
	})

	var priceMgr *pricemgr.PriceManager
	if cfg.PriceFeedURL != "" && cfg.priceRefreshDuration() > 0 {
		var feed pricefeed.Feed = pricefeed.NewHTTPFeed(cfg.PriceFeedURL)
		if cfg.PriceOracleURL != "" {
			feed = pricefeed.NewFallbackFeed(feed, pricefeed.NewHTTPFeed(cfg.PriceOracleURL))
		}
		priceMgr = pricemgr.NewPriceManager(dal.GlobalDBClient, feed, cfg.priceRefreshDuration())
	}

	var reserveMgr *reservemgr.ReserveManager
	if cfg.ReserveFloat > 0 {
		reserveMgr = reservemgr.NewReserveManager(ledgerClient, stakingClient,
			cfg.ReserveFloat, cfg.ReserveTarget)
		ledgerClient.Subscribe(reserveMgr.HandleLedgerNotification)
	}

	listeners, err := setupRPCListeners(cfg.Listeners, cfg.RPCKey, cfg.RPCCert, cfg.DisableTLS)
	if err != nil {
		return nil, err
	}
	if len(listeners) == 0 {
		return nil, errors.New("no valid listen address")
	}

	rpcServer := proxyserver.NewProxyServer(&proxyserver.Config{
		Listeners:        listeners,
		RPCUser:          cfg.RPCUser,
		RPCPass:          cfg.RPCPass,
		RPCLimitUser:     cfg.RPCLimitUser,
		RPCLimitPass:     cfg.RPCLimitPass,
		RPCMaxClients:    cfg.RPCMaxClients,
		RPCMaxWebsockets: cfg.RPCMaxWebsockets,
		DisableTLS:       cfg.DisableTLS,
		EnableMetrics:    cfg.EnableMetrics,
	}, dal.GlobalDBClient, engine, priceMgr)

	return &server{
		rpcServer:  rpcServer,
		engine:     engine,
		priceMgr:   priceMgr,
		reserveMgr: reserveMgr,
	}, nil
}

// Start begins accepting RPC connections and kicks off the background
// managers.
func (s *server) Start() {
	if s.priceMgr != nil {
		s.priceMgr.Start()
	}
	s.rpcServer.Start()
}

// Stop gracefully shuts down the server in reverse start order.
func (s *server) Stop() error {
	err := s.rpcServer.Stop()
	if s.priceMgr != nil {
		s.priceMgr.Stop()
	}
	return err
}

// setupRPCListeners returns a slice of listeners configured with the listen
// addresses and TLS settings of the RPC server.
func setupRPCListeners(addrs []string, rpcKey, rpcCert string, disableTLS bool) ([]net.Listener, error) {
	listenFunc := net.Listen
	if !disableTLS {
		if !fileExists(rpcKey) || !fileExists(rpcCert) {
			return nil, errors.New("cannot find RPC cert and key")
		}

		keypair, err := tls.LoadX509KeyPair(rpcCert, rpcKey)
		if err != nil {
			return nil, err
		}

		tlsConfig := tls.Config{
			Certificates: []tls.Certificate{keypair},
			MinVersion:   tls.VersionTLS12,
		}

		// Change the standard net.Listen function to the tls one.
		listenFunc = func(net string, laddr string) (net.Listener, error) {
			return tls.Listen(net, laddr, &tlsConfig)
		}
	}

	listeners := make([]net.Listener, 0, len(addrs))
	for _, addr := range addrs {
		listener, err := listenFunc("tcp", addr)
		if err != nil {
			mainLog.Warn("Can't listen on address", "address", addr, "error", err)
			continue
		}
		listeners = append(listeners, listener)
	}

	return listeners, nil
}
