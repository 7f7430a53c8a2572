package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/utils"

	flags "github.com/jessevdk/go-flags"
)

var (
	proxyctlHomeDir    = utils.AppDataDir("eosn-proxyctl", false)
	defaultConfigFile  = filepath.Join(proxyctlHomeDir, "proxyctl.conf")
	defaultRPCServer   = "localhost"
	defaultRPCPort     = "8668"
	defaultRPCCertFile = filepath.Join(proxyctlHomeDir, "rpc.cert")
)

// config defines the configuration options for proxyctl.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ConfigFile   string `short:"C" long:"configfile" description:"Path to configuration file"`
	ListCommands bool   `short:"l" long:"listcommands" description:"List all of the supported commands and exit"`
	NoTLS        bool   `long:"notls" description:"Disable TLS"`
	RPCServer    string `short:"s" long:"rpcserver" description:"RPC server to connect to"`
	RPCCert      string `short:"c" long:"rpccert" description:"RPC server certificate chain for validation"`
	RPCUser      string `short:"u" long:"rpcuser" description:"RPC username"`
	RPCPassword  string `short:"P" long:"rpcpass" default-mask:"-" description:"RPC password"`
	ShowVersion  bool   `short:"V" long:"version" description:"Display version information and exit"`
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(proxyctlHomeDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// normalizeAddress returns addr with the default port appended if there is
// not already a port specified.
func normalizeAddress(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return net.JoinHostPort(addr, defaultRPCPort)
	}
	return addr
}

func loadConfig() (*config, []string, error) {
	// Default config.
	cfg := config{
		ConfigFile: defaultConfigFile,
		RPCServer:  defaultRPCServer,
		RPCCert:    defaultRPCCertFile,
	}

	// Pre-parse the command line options to see if an alternative config
	// file, the version flag, or the list commands flag was specified. Any
	// errors aside from the help message error can be ignored here since
	// they will be caught by the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil, err
		}
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show options", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", chaincfg.BackendVersion)
		os.Exit(0)
	}
	if preCfg.ListCommands {
		listCommands()
		os.Exit(0)
	}

	// Load additional config from file.
	parser := flags.NewParser(&cfg, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %v\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, nil, err
	}

	cfg.RPCCert = cleanAndExpandPath(cfg.RPCCert)
	cfg.RPCServer = normalizeAddress(cfg.RPCServer)

	return &cfg, remainingArgs, nil
}
