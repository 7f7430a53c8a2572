package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/utils"

	flags "github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename   = "eosn-proxy.conf"
	defaultLogDirname       = "logs"
	defaultLogFilename      = "eosn-proxy.log"
	defaultLogLevel         = "info"
	defaultListenerPort     = "8668"
	defaultLimitUser        = "voter"
	defaultLimitPass        = "voter"
	defaultMaxRPCClients    = 1000
	defaultMaxRPCWebsockets = 1000
	defaultDbAddress        = "127.0.0.1:3306"
	defaultDatabaseName     = "eosn_proxy"

	defaultClaimAllPageSize   = 200
	defaultMigrateAllPageSize = 500
	defaultPriceRefresh       = 300
)

var (
	defaultHomeDir    = utils.AppDataDir("eosn-proxy", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
	netParams         = &chaincfg.MainNetParams
)

// config defines the configuration options for the proxy reward server.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	AppDataDir  string `short:"A" long:"appdata" description:"Application data directory for config and logs"`
	LogDir      string `long:"logdir" description:"Directory to log output."`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {debug, info, warn, error}"`

	TestNet        bool `long:"testnet" description:"Use the test network"`
	RegressionTest bool `long:"regtest" description:"Use the regression test network"`

	DbUsername          string `long:"dbusername" description:"Username which is used to connect with database"`
	DbPassword          string `long:"dbpassword" description:"Password which is used to connect with database"`
	DbAddress           string `long:"dbaddress" description:"IP address and port of database (default: 127.0.0.1:3306)"`
	DbName              string `long:"dbname" description:"Name of server database (default: eosn_proxy)"`
	DisableAutoCreateDB bool   `long:"noautocreatedb" description:"Disable creating database and tables automatically"`

	Listeners     []string `long:"listen" description:"Add an interface/port to listen for connections (HTTP/ws)"`
	ListenerPort  string   `long:"listenerport" description:"Port that the HTTP/ws server listens on (default: 8668)"`
	RPCUser       string   `short:"u" long:"rpcuser" description:"RPC username for the admin, this is used to control the server. This should be changed in a production environment"`
	RPCPass       string   `short:"P" long:"rpcpass" default-mask:"-" description:"RPC password for the admin"`
	RPCLimitUser  string   `long:"rpclimituser" description:"RPC username for voters, this reaches only the voter-facing command subset"`
	RPCLimitPass  string   `long:"rpclimitpass" default-mask:"-" description:"RPC password for voters"`
	RPCMaxClients int      `long:"rpcmaxclients" description:"Max number of RPC clients"`
	RPCMaxWebsockets int   `long:"rpcmaxwebsockets" description:"Max number of websocket connections"`
	RPCCert       string   `long:"rpccert" description:"File containing the certificate file"`
	RPCKey        string   `long:"rpckey" description:"File containing the certificate key"`
	DisableTLS    bool     `long:"notls" description:"Disable TLS for the RPC server -- NOTE: This is only allowed if the RPC server is bound to localhost"`
	EnableMetrics bool     `long:"metrics" description:"Serve Prometheus metrics on /metrics"`

	LedgerRPCConnect       string `long:"ledgerrpcconnect" description:"Hostname/IP and port of the ledger RPC server to connect to"`
	LedgerRPCUser          string `long:"ledgerrpcuser" description:"Username for RPC connections with the ledger"`
	LedgerRPCPass          string `long:"ledgerrpcpass" default-mask:"-" description:"Password for RPC connections with the ledger"`
	LedgerCAFile           string `long:"ledgercafile" description:"File containing root certificates to authenticate a TLS connection with the ledger"`
	DisableLedgerClientTLS bool   `long:"noledgerclienttls" description:"Disable TLS for the connection with the ledger"`

	StakingRPCConnect       string `long:"stakingrpcconnect" description:"Hostname/IP and port of the staking registry RPC server to connect to"`
	StakingRPCUser          string `long:"stakingrpcuser" description:"Username for RPC connections with the staking registry"`
	StakingRPCPass          string `long:"stakingrpcpass" default-mask:"-" description:"Password for RPC connections with the staking registry"`
	StakingCAFile           string `long:"stakingcafile" description:"File containing root certificates to authenticate a TLS connection with the staking registry"`
	DisableStakingClientTLS bool   `long:"nostakingclienttls" description:"Disable TLS for the connection with the staking registry"`

	ClaimAllPageSize   int    `long:"claimallpagesize" description:"Number of voters processed per page during a claim sweep (default: 200)"`
	MigrateAllPageSize int    `long:"migrateallpagesize" description:"Number of voters migrated per batch (default: 500)"`
	ReserveFloat       int64  `long:"reservefloat" description:"Base asset amount kept liquid for payouts"`
	ReserveTarget      int64  `long:"reservetarget" description:"Cap on base asset placed in the rental market (0 = no cap)"`
	PriceFeedURL       string `long:"pricefeedurl" description:"URL of the market data endpoint supplying reward asset quotes"`
	PriceOracleURL     string `long:"priceoracleurl" description:"URL of a secondary oracle endpoint consulted for symbols the market feed cannot resolve"`
	PriceRefresh       int    `long:"pricerefresh" description:"Seconds between price feed refreshes (default: 300, 0 disables)"`
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	return flags.NewParser(cfg, options)
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// loadConfig initializes and parses the config using a config file and
// command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile:         defaultConfigFile,
		AppDataDir:         defaultHomeDir,
		LogDir:             defaultLogDir,
		DebugLevel:         defaultLogLevel,
		ListenerPort:       defaultListenerPort,
		RPCLimitUser:       defaultLimitUser,
		RPCLimitPass:       defaultLimitPass,
		RPCMaxClients:      defaultMaxRPCClients,
		RPCMaxWebsockets:   defaultMaxRPCWebsockets,
		DbAddress:          defaultDbAddress,
		DbName:             defaultDatabaseName,
		ClaimAllPageSize:   defaultClaimAllPageSize,
		MigrateAllPageSize: defaultMigrateAllPageSize,
		PriceRefresh:       defaultPriceRefresh,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := cfg
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(0)
		}
		return nil, nil, err
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if preCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, chaincfg.BackendVersion)
		os.Exit(0)
	}

	// Load additional config from file.
	parser := newConfigParser(&cfg, flags.Default)
	if preCfg.ConfigFile != defaultConfigFile || fileExists(preCfg.ConfigFile) {
		err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
		if err != nil {
			if _, ok := err.(*os.PathError); !ok {
				fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n", err)
				return nil, nil, err
			}
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		return nil, nil, err
	}

	// Multiple networks can't be selected simultaneously.
	numNets := 0
	if cfg.TestNet {
		numNets++
		netParams = &chaincfg.TestNetParams
	}
	if cfg.RegressionTest {
		numNets++
		netParams = &chaincfg.RegNetParams
	}
	if numNets > 1 {
		err := fmt.Errorf("the testnet and regtest params can't be used together -- choose one of the two")
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	chaincfg.ActiveNetParams = netParams

	cfg.AppDataDir = cleanAndExpandPath(cfg.AppDataDir)
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, netParams.Name)

	// Initialize log rotation. After log rotation has been initialized,
	// the logger variables may be used.
	initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	if !setLogLevel(cfg.DebugLevel) {
		err := fmt.Errorf("the specified debug level [%v] is invalid", cfg.DebugLevel)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	if cfg.RPCUser == "" || cfg.RPCPass == "" {
		err := fmt.Errorf("the rpcuser and rpcpass config options must be specified")
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}
	if cfg.RPCUser == cfg.RPCLimitUser {
		err := fmt.Errorf("the rpcuser and rpclimituser config options must not share the same value")
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	// Default the client connects to localhost on the active net ports.
	if cfg.LedgerRPCConnect == "" {
		cfg.LedgerRPCConnect = net.JoinHostPort("localhost", netParams.LedgerRPCPort)
	}
	if cfg.StakingRPCConnect == "" {
		cfg.StakingRPCConnect = net.JoinHostPort("localhost", netParams.StakingRPCPort)
	}

	// Add the default listener if none were specified. The default
	// listener is all addresses on the listener port for the network we
	// are to connect to.
	if len(cfg.Listeners) == 0 {
		cfg.Listeners = []string{
			net.JoinHostPort("", cfg.ListenerPort),
		}
	}

	// Add default port to all listener addresses if needed and remove
	// duplicate addresses.
	cfg.Listeners = normalizeAddresses(cfg.Listeners, cfg.ListenerPort)

	// The RPC server is disabled from listening on non-localhost
	// interfaces without TLS.
	if cfg.DisableTLS {
		for _, addr := range cfg.Listeners {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				continue
			}
			if host != "" && host != "localhost" && host != "127.0.0.1" && host != "::1" {
				err := fmt.Errorf("the --notls option may not be used when binding RPC to non localhost addresses (%s)", addr)
				fmt.Fprintln(os.Stderr, err)
				return nil, nil, err
			}
		}
	}

	if cfg.ClaimAllPageSize <= 0 {
		cfg.ClaimAllPageSize = defaultClaimAllPageSize
	}
	if cfg.MigrateAllPageSize <= 0 {
		cfg.MigrateAllPageSize = defaultMigrateAllPageSize
	}

	return &cfg, remainingArgs, nil
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	if _, err := os.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false
		}
	}
	return true
}

// normalizeAddresses returns a new slice with all the passed peer addresses
// normalized with the given default port, and all duplicates removed.
func normalizeAddresses(addrs []string, defaultPort string) []string {
	result := make([]string, 0, len(addrs))
	seen := map[string]struct{}{}
	for _, addr := range addrs {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			addr = net.JoinHostPort(addr, defaultPort)
		}
		if _, ok := seen[addr]; !ok {
			result = append(result, addr)
			seen[addr] = struct{}{}
		}
	}
	return result
}

// priceRefreshDuration converts the configured refresh seconds to a
// duration, with 0 meaning disabled.
func (c *config) priceRefreshDuration() time.Duration {
	if c.PriceRefresh <= 0 {
		return 0
	}
	return time.Duration(c.PriceRefresh) * time.Second
}
