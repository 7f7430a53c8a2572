package proxyserver

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EOS-Nation/eosn-proxy/claimmgr"
	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/metrics"
	"github.com/EOS-Nation/eosn-proxy/pricemgr"
	"github.com/EOS-Nation/eosn-proxy/proxyjson"
	"github.com/EOS-Nation/eosn-proxy/utils"

	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

const (
	// rpcAuthTimeoutSeconds is the number of seconds a connection to the
	// RPC server is allowed to stay open without authenticating before it
	// is closed.
	rpcAuthTimeoutSeconds = 10
)

// Commands that are available to a limited user: the operations a voter or
// referral partner performs on their own record, plus the read-only queries.
// Sweeps, settings and registry administration stay admin-only.
var rpcLimited = map[string]struct{}{
	proxyjson.MethodSignup:       {},
	proxyjson.MethodUnsignup:     {},
	proxyjson.MethodClaim:        {},
	proxyjson.MethodSetPortfolio: {},
	proxyjson.MethodDelPortfolio: {},
	proxyjson.MethodSetReferral:  {},
	proxyjson.MethodDelReferral:  {},

	proxyjson.MethodGetInfo:      {},
	proxyjson.MethodGetVoter:     {},
	proxyjson.MethodGetSettings:  {},
	proxyjson.MethodGetRewards:   {},
	proxyjson.MethodGetReferrals: {},
	proxyjson.MethodGetProxies:   {},
	proxyjson.MethodGetPortfolio: {},
	proxyjson.MethodGetReceipts:  {},
	proxyjson.MethodGetLastClaim: {},
}

type commandHandler func(*ProxyServer, interface{}, <-chan struct{}) (interface{}, error)

// rpcHandlers maps RPC command strings to appropriate handler functions.
var rpcHandlers = map[string]commandHandler{
	proxyjson.MethodSignup:     handleSignup,
	proxyjson.MethodUnsignup:   handleUnsignup,
	proxyjson.MethodRefresh:    handleRefresh,
	proxyjson.MethodClaim:      handleClaim,
	proxyjson.MethodClaimAll:   handleClaimAll,
	proxyjson.MethodMigrate:    handleMigrate,
	proxyjson.MethodMigrateAll: handleMigrateAll,

	proxyjson.MethodSetRate:     handleSetRate,
	proxyjson.MethodSetInterval: handleSetInterval,
	proxyjson.MethodSetRent:     handleSetRent,
	proxyjson.MethodPause:       handlePause,
	proxyjson.MethodClean:       handleClean,

	proxyjson.MethodSetReward:    handleSetReward,
	proxyjson.MethodDelReward:    handleDelReward,
	proxyjson.MethodSetPrice:     handleSetPrice,
	proxyjson.MethodSetPrices:    handleSetPrices,
	proxyjson.MethodSetPortfolio: handleSetPortfolio,
	proxyjson.MethodDelPortfolio: handleDelPortfolio,

	proxyjson.MethodSetReferral: handleSetReferral,
	proxyjson.MethodDelReferral: handleDelReferral,
	proxyjson.MethodSetProxy:    handleSetProxy,

	proxyjson.MethodGetInfo:      handleGetInfo,
	proxyjson.MethodGetVoter:     handleGetVoter,
	proxyjson.MethodGetVoters:    handleGetVoters,
	proxyjson.MethodGetSettings:  handleGetSettings,
	proxyjson.MethodGetRewards:   handleGetRewards,
	proxyjson.MethodGetReferrals: handleGetReferrals,
	proxyjson.MethodGetProxies:   handleGetProxies,
	proxyjson.MethodGetPortfolio: handleGetPortfolio,
	proxyjson.MethodGetReceipts:  handleGetReceipts,
	proxyjson.MethodGetLastClaim: handleGetLastClaim,
}

// Config holds the runtime configuration of the RPC server.
type Config struct {
	Listeners        []net.Listener
	RPCUser          string
	RPCPass          string
	RPCLimitUser     string
	RPCLimitPass     string
	RPCMaxClients    int
	RPCMaxWebsockets int
	DisableTLS       bool
	EnableMetrics    bool
}

// ProxyServer serves the JSON-RPC command surface over HTTP POST and
// websockets. Admin credentials unlock the full command set; limit
// credentials reach only the voter-facing subset.
type ProxyServer struct {
	started  int32
	shutdown int32

	cfg      *Config
	db       *gorm.DB
	engine   *claimmgr.Engine
	priceMgr *pricemgr.PriceManager

	authsha      [sha256.Size]byte
	limitauthsha [sha256.Size]byte

	numClients   int32
	numWsClients int32
	startTime    int64
	wg           sync.WaitGroup
	quit         chan struct{}
}

// NewProxyServer returns a new instance of the ProxyServer struct.
func NewProxyServer(cfg *Config, db *gorm.DB, engine *claimmgr.Engine, priceMgr *pricemgr.PriceManager) *ProxyServer {
	svr := &ProxyServer{
		cfg:       cfg,
		db:        db,
		engine:    engine,
		priceMgr:  priceMgr,
		startTime: time.Now().Unix(),
		quit:      make(chan struct{}),
	}
	if cfg.RPCUser != "" && cfg.RPCPass != "" {
		login := cfg.RPCUser + ":" + cfg.RPCPass
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
		svr.authsha = sha256.Sum256([]byte(auth))
	}
	if cfg.RPCLimitUser != "" && cfg.RPCLimitPass != "" {
		login := cfg.RPCLimitUser + ":" + cfg.RPCLimitPass
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
		svr.limitauthsha = sha256.Sum256([]byte(auth))
	}
	return svr
}

// Start is used by the root server wiring to start the rpc listeners.
func (svr *ProxyServer) Start() {
	if atomic.AddInt32(&svr.started, 1) != 1 {
		return
	}

	log.Debug("starting proxy RPC server")
	rpcServeMux := http.NewServeMux()
	httpServer := &http.Server{
		Handler: rpcServeMux,

		// Timeout connections which don't complete the initial
		// handshake within the allowed timeframe.
		ReadTimeout: time.Second * rpcAuthTimeoutSeconds,
	}

	// Http endpoint.
	rpcServeMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Connection", "close")
		w.Header().Set("Content-Type", "application/json")
		r.Close = true

		if svr.limitConnections(w, r.RemoteAddr) {
			return
		}

		svr.incrementClients()
		defer svr.decrementClients()
		_, isAdmin, user, err := svr.checkAuth(r, true)
		if err != nil {
			jsonAuthFail(w)
			return
		}

		svr.jsonRPCRead(w, r, isAdmin, user)
	})

	// Websocket endpoint.
	rpcServeMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		authenticated, isAdmin, user, err := svr.checkAuth(r, true)
		if err != nil || !authenticated {
			jsonAuthFail(w)
			return
		}

		// Attempt to upgrade the connection to a websocket connection
		// using the default size for read/write buffers.
		ws, err := websocket.Upgrade(w, r, nil, 0, 0)
		if err != nil {
			if _, ok := err.(websocket.HandshakeError); !ok {
				log.Error("unexpected websocket error", "err", err)
			}
			http.Error(w, "400 Bad Request.", http.StatusBadRequest)
			return
		}
		svr.WebsocketHandler(ws, r.RemoteAddr, isAdmin, user)
	})

	if svr.cfg.EnableMetrics {
		rpcServeMux.Handle("/metrics", metrics.Handler())
	}

	for _, listener := range svr.cfg.Listeners {
		svr.wg.Add(1)
		go func(listener net.Listener) {
			tlsState := "on"
			if svr.cfg.DisableTLS {
				tlsState = "off"
			}
			log.Info("proxy RPC server listening", "addr", listener.Addr().String(), "tls", tlsState)
			httpServer.Serve(listener)
			log.Debug("proxy RPC listener done", "addr", listener.Addr().String())
			svr.wg.Done()
		}(listener)
	}
}

// Stop is used by the root server wiring to stop the rpc listeners.
func (svr *ProxyServer) Stop() error {
	if atomic.AddInt32(&svr.shutdown, 1) != 1 {
		log.Info("proxy RPC server is already in the process of shutting down")
		return nil
	}
	log.Warn("proxy RPC server shutting down")
	for _, listener := range svr.cfg.Listeners {
		err := listener.Close()
		if err != nil {
			log.Error("problem shutting down proxy RPC server", "err", err)
			return err
		}
	}
	close(svr.quit)
	svr.wg.Wait()
	log.Info("proxy RPC server shutdown complete")
	return nil
}

// limitConnections responds with a 503 service unavailable and returns true
// if adding another client would exceed the maximum allowed RPC clients.
//
// This function is safe for concurrent access.
func (svr *ProxyServer) limitConnections(w http.ResponseWriter, remoteAddr string) bool {
	if int(atomic.LoadInt32(&svr.numClients)+1) > svr.cfg.RPCMaxClients {
		log.Info("max RPC clients exceeded, disconnecting client",
			"max", svr.cfg.RPCMaxClients, "remote", remoteAddr)
		http.Error(w, "503 Too busy.  Try again later.",
			http.StatusServiceUnavailable)
		return true
	}
	return false
}

// incrementClients adds one to the number of connected RPC clients. Note
// this only applies to standard clients. Websocket clients have their own
// limits and are tracked separately.
//
// This function is safe for concurrent access.
func (svr *ProxyServer) incrementClients() {
	atomic.AddInt32(&svr.numClients, 1)
}

// decrementClients subtracts one from the number of connected RPC clients.
//
// This function is safe for concurrent access.
func (svr *ProxyServer) decrementClients() {
	atomic.AddInt32(&svr.numClients, -1)
}

// checkAuth checks the HTTP Basic authentication supplied by a client
// against the configured credentials. The check is time-constant.
//
// The first bool return value signifies auth success and the second whether
// the user is an admin (may change the state of the server) as opposed to a
// limited user. The string is the authenticated basic-auth username; for a
// limited credential provisioned per account it names the account the
// caller may act on.
func (svr *ProxyServer) checkAuth(r *http.Request, require bool) (bool, bool, string, error) {
	authhdr := r.Header["Authorization"]
	if len(authhdr) <= 0 {
		if require {
			log.Warn("RPC authentication failure", "remote", r.RemoteAddr)
			return false, false, "", errors.New("auth failure")
		}
		return false, false, "", nil
	}

	authsha := sha256.Sum256([]byte(authhdr[0]))

	// Check for limited auth first as in environments with limited users,
	// those are probably expected to have a higher volume of calls.
	limitcmp := subtle.ConstantTimeCompare(authsha[:], svr.limitauthsha[:])
	if limitcmp == 1 {
		user, _, _ := r.BasicAuth()
		return true, false, user, nil
	}

	cmp := subtle.ConstantTimeCompare(authsha[:], svr.authsha[:])
	if cmp == 1 {
		user, _, _ := r.BasicAuth()
		return true, true, user, nil
	}

	log.Warn("RPC authentication failure", "remote", r.RemoteAddr)
	return false, false, "", errors.New("auth failure")
}

// cmdAccount returns the account a command acts on, for the owner-scoped
// commands a limited user may issue against their own record.
func cmdAccount(cmd interface{}) (string, bool) {
	switch c := cmd.(type) {
	case *proxyjson.SignupCmd:
		return c.Owner, true
	case *proxyjson.UnsignupCmd:
		return c.Owner, true
	case *proxyjson.ClaimCmd:
		return c.Owner, true
	case *proxyjson.SetPortfolioCmd:
		return c.Account, true
	case *proxyjson.DelPortfolioCmd:
		return c.Account, true
	case *proxyjson.SetReferralCmd:
		return c.Name, true
	case *proxyjson.DelReferralCmd:
		return c.Name, true
	}
	return "", false
}

// checkCmdScope rejects an owner-scoped command from a limited user when it
// targets an account other than the authenticated one. Admin credentials
// act on any account.
func checkCmdScope(isAdmin bool, user string, cmd interface{}) error {
	if isAdmin {
		return nil
	}
	account, scoped := cmdAccount(cmd)
	if !scoped || account == user {
		return nil
	}
	return fmt.Errorf("%w: %q may not act on %q", errcode.ErrUnauthorized, user, account)
}

// jsonAuthFail sends a message back to the client if the http auth is
// rejected.
func jsonAuthFail(w http.ResponseWriter) {
	w.Header().Add("WWW-Authenticate", `Basic realm="eosn proxy"`)
	http.Error(w, "401 Unauthorized.", http.StatusUnauthorized)
}

// jsonRPCRead handles reading and responding to RPC messages arriving over
// plain HTTP POST.
func (svr *ProxyServer) jsonRPCRead(w http.ResponseWriter, r *http.Request, isAdmin bool, user string) {
	if atomic.LoadInt32(&svr.shutdown) != 0 {
		return
	}

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		errCode := http.StatusBadRequest
		http.Error(w, fmt.Sprintf("%d error reading JSON message: %v",
			errCode, err), errCode)
		return
	}

	var request proxyjson.Request
	if err := json.Unmarshal(body, &request); err != nil {
		jsonErr := proxyjson.NewRPCError(proxyjson.ErrRPCParse, "Failed to parse request: "+err.Error())
		reply, err := proxyjson.MarshalResponse(nil, nil, jsonErr)
		if err != nil {
			log.Error("failed to marshal parse failure reply", "err", err)
			return
		}
		w.Write(reply)
		return
	}

	var result interface{}
	var jsonErr error
	if !isAdmin {
		if _, ok := rpcLimited[request.Method]; !ok {
			jsonErr = proxyjson.ErrRPCUnauthorizedStd
		}
	}

	if jsonErr == nil {
		parsedCmd := parseCmd(&request)
		if parsedCmd.err != nil {
			jsonErr = parsedCmd.err
		} else if err := checkCmdScope(isAdmin, user, parsedCmd.cmd); err != nil {
			jsonErr = err
		} else {
			result, jsonErr = svr.standardCmdResult(parsedCmd, svr.quit)
		}
	}

	metrics.RPCRequests.WithLabelValues(request.Method).Inc()

	reply, err := createMarshalledReply(request.ID, result, jsonErr)
	if err != nil {
		log.Error("failed to marshal reply", "err", err)
		return
	}
	if _, err := w.Write(reply); err != nil {
		log.Error("failed to write reply", "err", err)
	}
}

// parsedRPCCmd represents a JSON-RPC request object that has been parsed
// into a known concrete command along with any error that might have
// happened while parsing it.
type parsedRPCCmd struct {
	id     interface{}
	method string
	cmd    interface{}
	err    *proxyjson.RPCError
}

// parseCmd parses a JSON-RPC request object into a known concrete command.
// The err field of the returned parsedRPCCmd struct will contain an RPC
// error that is suitable for use in replies if the command is invalid in
// some way such as an unregistered command or invalid parameters.
func parseCmd(request *proxyjson.Request) *parsedRPCCmd {
	var parsedCmd parsedRPCCmd
	parsedCmd.id = request.ID
	parsedCmd.method = request.Method

	cmd, err := proxyjson.UnmarshalCmd(request)
	if err != nil {
		if jerr, ok := err.(*proxyjson.RPCError); ok {
			parsedCmd.err = jerr
		} else {
			parsedCmd.err = proxyjson.NewRPCError(proxyjson.ErrRPCInvalidParams, err.Error())
		}
		return &parsedCmd
	}

	parsedCmd.cmd = cmd
	return &parsedCmd
}

// standardCmdResult runs the appropriate handler to reply to a parsed
// command. Any commands which are not recognized return an error suitable
// for use in replies.
func (svr *ProxyServer) standardCmdResult(cmd *parsedRPCCmd, closeChan <-chan struct{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic from handler", "method", cmd.method, "panic", r)
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)
			log.Error("stack trace", "stack", string(buf[:n]))
			_ = utils.DumpPanicInfo(fmt.Sprintf("%v", r) + "\n" + string(buf[:n]))
			result, err = nil, proxyjson.NewRPCError(proxyjson.ErrRPCInternal, "internal error")
		}
	}()

	handler, ok := rpcHandlers[cmd.method]
	if !ok {
		return nil, proxyjson.ErrRPCMethodNotFoundStd
	}
	return handler(svr, cmd.cmd, closeChan)
}

// createMarshalledReply returns a new marshalled JSON-RPC response given
// the passed parameters. It will automatically convert errors that are not
// of the type *proxyjson.RPCError to the appropriate type as needed.
func createMarshalledReply(id, result interface{}, replyErr error) ([]byte, error) {
	var jsonErr *proxyjson.RPCError
	if replyErr != nil {
		if jErr, ok := replyErr.(*proxyjson.RPCError); ok {
			jsonErr = jErr
		} else {
			jsonErr = rpcErrorFor(replyErr)
		}
	}
	return proxyjson.MarshalResponse(id, result, jsonErr)
}

// rpcErrorFor maps an engine error to its wire error code.
func rpcErrorFor(err error) *proxyjson.RPCError {
	var code proxyjson.RPCErrorCode
	switch {
	case errors.Is(err, errcode.ErrUnauthorized):
		code = proxyjson.ErrRPCUnauthorized
	case errors.Is(err, errcode.ErrNotFound):
		code = proxyjson.ErrRPCNotFound
	case errors.Is(err, errcode.ErrAlreadyExists):
		code = proxyjson.ErrRPCAlreadyExists
	case errors.Is(err, errcode.ErrInvalidArgument):
		code = proxyjson.ErrRPCInvalidArgument
	case errors.Is(err, errcode.ErrNotEligible):
		code = proxyjson.ErrRPCNotEligible
	case errors.Is(err, errcode.ErrReferentialIntegrity):
		code = proxyjson.ErrRPCReferentialIntegrity
	default:
		log.Error("internal RPC error", "err", err)
		return proxyjson.NewRPCError(proxyjson.ErrRPCInternal, "internal error")
	}
	return proxyjson.NewRPCError(code, err.Error())
}
