package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/EOS-Nation/eosn-proxy/claimmgr"
	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/ledgerclient"
	"github.com/EOS-Nation/eosn-proxy/pricemgr"
	"github.com/EOS-Nation/eosn-proxy/proxyserver"
	"github.com/EOS-Nation/eosn-proxy/reservemgr"
	"github.com/EOS-Nation/eosn-proxy/rpcclient"
	"github.com/EOS-Nation/eosn-proxy/service"
	"github.com/EOS-Nation/eosn-proxy/stakingclient"
	"github.com/EOS-Nation/eosn-proxy/utils"

	"github.com/jrick/logrotate/rotator"
	"github.com/lmittmann/tint"
)

// logWriter implements an io.Writer that outputs to both standard output and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var (
	// logLevel is shared by every subsystem logger so the level can be
	// adjusted in one place.
	logLevel = new(slog.LevelVar)

	// logRotator is one of the logging outputs. It should be closed on
	// application shutdown.
	logRotator *rotator.Rotator

	backendLog = slog.New(tint.NewHandler(logWriter{}, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.StampMilli,
	}))

	mainLog = backendLog.With("subsys", "MAIN")
)

func init() {
	dal.UseLogger(backendLog.With("subsys", "DAL"))
	service.UseLogger(backendLog.With("subsys", "SRVC"))
	claimmgr.UseLogger(backendLog.With("subsys", "CLMG"))
	pricemgr.UseLogger(backendLog.With("subsys", "PRCE"))
	reservemgr.UseLogger(backendLog.With("subsys", "RESV"))
	rpcclient.UseLogger(backendLog.With("subsys", "RPCC"))
	ledgerclient.UseLogger(backendLog.With("subsys", "LDGR"))
	stakingclient.UseLogger(backendLog.With("subsys", "STKE"))
	proxyserver.UseLogger(backendLog.With("subsys", "RPCS"))
	utils.UseLogger(backendLog.With("subsys", "UTIL"))
}

// initLogRotator initializes the logging rotator to write logs to logFile and
// create roll files in the same directory. It must be called before the
// package-global log rotator variables are used.
func initLogRotator(logFile string) {
	logDir, _ := filepath.Split(logFile)
	err := os.MkdirAll(logDir, 0700)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		os.Exit(1)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create file rotator: %v\n", err)
		os.Exit(1)
	}

	logRotator = r
}

// setLogLevel sets the logging level of every subsystem to the supplied
// level. It returns false for an unrecognized level string.
func setLogLevel(level string) bool {
	switch level {
	case "debug":
		logLevel.Set(slog.LevelDebug)
	case "info":
		logLevel.Set(slog.LevelInfo)
	case "warn":
		logLevel.Set(slog.LevelWarn)
	case "error":
		logLevel.Set(slog.LevelError)
	default:
		return false
	}
	return true
}
