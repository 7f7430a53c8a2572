package rpcclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EOS-Nation/eosn-proxy/proxyjson"

	"github.com/gorilla/websocket"
)

var (
	// ErrClientShutdown is an error to describe the condition where the
	// client is either already shutdown, or in the process of shutting
	// down.
	ErrClientShutdown = errors.New("the client has been shutdown")

	// ErrClientDisconnect is an error to describe the condition where the
	// client has been disconnected from the RPC server.
	ErrClientDisconnect = errors.New("the client has been disconnected")

	// ErrResponseTimeout is returned when a response does not arrive
	// within the request timeout.
	ErrResponseTimeout = errors.New("rpc response timeout")
)

const (
	// sendBufferSize is the number of elements the websocket send channel
	// can queue before blocking.
	sendBufferSize = 50

	// connectionRetryInterval is the amount of time to wait in between
	// retries when automatically reconnecting to an RPC server.
	connectionRetryInterval = time.Second * 5

	// defaultResponseTimeout bounds how long a synchronous call waits for
	// its response.
	defaultResponseTimeout = time.Second * 10
)

// response is the raw bytes of a JSON-RPC result, or the error if the
// response error object was non-null.
type response struct {
	result []byte
	err    error
}

// jsonRequest holds information about a json request that is used to
// properly detect, interpret, and deliver a reply to it.
type jsonRequest struct {
	id             uint64
	method         string
	marshalledJSON []byte
	responseChan   chan *response
}

// ConnConfig describes the connection configuration parameters for the
// client.
type ConnConfig struct {
	// Host is the IP address and port of the RPC server you want to
	// connect to.
	Host string

	// Endpoint is the websocket endpoint on the RPC server.
	Endpoint string

	// User is the username to use to authenticate to the RPC server.
	User string

	// Pass is the passphrase to use to authenticate to the RPC server.
	Pass string

	// DisableTLS specifies whether transport layer security should be
	// disabled.
	DisableTLS bool

	// Certificates are the bytes for a PEM-encoded certificate chain used
	// for the TLS connection.
	Certificates []byte

	// DisableAutoReconnect specifies the client should not automatically
	// try to reconnect to the server when it has been disconnected.
	DisableAutoReconnect bool

	// DisableConnectOnNew specifies that a websocket client connection
	// should not be tried when creating the client. Instead, the client
	// is created and returned unconnected, and Connect must be called.
	DisableConnectOnNew bool

	// Alias names the remote end in log output.
	Alias string
}

// NotificationHandlers defines callback function pointers to invoke with
// notifications. All of the functions are optional.
type NotificationHandlers struct {
	// OnClientConnected is invoked when the client connects or reconnects
	// to the RPC server.
	OnClientConnected func()

	// OnNotification is invoked for every JSON-RPC notification (a
	// request without an id) received from the server.
	OnNotification func(method string, params json.RawMessage)
}

// Client represents a persistent websocket JSON-RPC client connection with
// automatic reconnect. Call sites build typed wrappers on top of sendCmd and
// receiveFuture.
type Client struct {
	id uint64 // atomic

	config *ConnConfig

	wsConn       *websocket.Conn
	disconnected bool
	mtx          sync.Mutex

	ntfnHandlers *NotificationHandlers

	requestLock sync.Mutex
	requestMap  map[uint64]*jsonRequest

	sendChan        chan []byte
	disconnectChan  chan struct{}
	connEstablished chan struct{}
	shutdown        chan struct{}
	wg              sync.WaitGroup
	started         bool
}

// New creates a new RPC client based on the provided connection
// configuration. The notification handlers parameter may be nil if you are
// not interested in receiving notifications.
func New(config *ConnConfig, ntfnHandlers *NotificationHandlers) (*Client, error) {
	client := &Client{
		config:          config,
		ntfnHandlers:    ntfnHandlers,
		requestMap:      make(map[uint64]*jsonRequest),
		sendChan:        make(chan []byte, sendBufferSize),
		disconnectChan:  make(chan struct{}),
		connEstablished: make(chan struct{}),
		shutdown:        make(chan struct{}),
	}
	if !config.DisableConnectOnNew {
		if err := client.Connect(0); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// NextID returns the next id to be used when sending a JSON-RPC message.
func (c *Client) NextID() uint64 {
	return atomic.AddUint64(&c.id, 1)
}

// Connect establishes the initial websocket connection. Up to tries
// attempts are made (0 means a single attempt) before giving up.
func (c *Client) Connect(tries int) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.started {
		return nil
	}

	var err error
	var backoff time.Duration
	for i := 0; i <= tries; i++ {
		var wsConn *websocket.Conn
		wsConn, err = dial(c.config)
		if err != nil {
			backoff = connectionRetryInterval * time.Duration(i+1)
			time.Sleep(backoff)
			continue
		}
		log.Info("established connection to RPC server", "alias", c.config.Alias, "host", c.config.Host)
		c.wsConn = wsConn
		c.started = true
		c.start()
		return nil
	}
	return err
}

// Disconnected returns whether the client is currently disconnected.
func (c *Client) Disconnected() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.disconnected
}

// Shutdown shuts down the client by disconnecting any connections associated
// with the client and, when automatic reconnect is enabled, preventing
// future attempts to reconnect.
func (c *Client) Shutdown() {
	select {
	case <-c.shutdown:
		return
	default:
	}
	log.Debug("shutting down RPC client", "alias", c.config.Alias, "host", c.config.Host)
	close(c.shutdown)

	c.requestLock.Lock()
	for id, req := range c.requestMap {
		req.responseChan <- &response{err: ErrClientShutdown}
		delete(c.requestMap, id)
	}
	c.requestLock.Unlock()

	c.mtx.Lock()
	if c.wsConn != nil {
		c.wsConn.Close()
	}
	c.disconnected = true
	c.mtx.Unlock()
}

// WaitForShutdown blocks until the client goroutines are stopped and the
// connection is closed.
func (c *Client) WaitForShutdown() {
	c.wg.Wait()
}

func (c *Client) start() {
	c.wg.Add(3)
	go c.wsInHandler()
	go c.wsOutHandler()
	go c.reconnectHandler()
	if c.ntfnHandlers != nil && c.ntfnHandlers.OnClientConnected != nil {
		go c.ntfnHandlers.OnClientConnected()
	}
}

// sendCmd marshals the command struct into a request for method and sends it
// to the server, returning a channel the reply is delivered on.
func (c *Client) sendCmd(method string, cmd interface{}) chan *response {
	responseChan := make(chan *response, 1)

	id := c.NextID()
	req, err := proxyjson.NewRequest(id, method, cmd)
	if err != nil {
		responseChan <- &response{err: err}
		return responseChan
	}
	marshalledJSON, err := json.Marshal(req)
	if err != nil {
		responseChan <- &response{err: err}
		return responseChan
	}

	jReq := &jsonRequest{
		id:             id,
		method:         method,
		marshalledJSON: marshalledJSON,
		responseChan:   responseChan,
	}

	select {
	case <-c.shutdown:
		responseChan <- &response{err: ErrClientShutdown}
		return responseChan
	default:
	}

	c.requestLock.Lock()
	c.requestMap[id] = jReq
	c.requestLock.Unlock()

	select {
	case c.sendChan <- marshalledJSON:
	case <-c.shutdown:
		c.removeRequest(id)
		responseChan <- &response{err: ErrClientShutdown}
	}
	return responseChan
}

// Call sends a command synchronously and decodes the JSON result into
// reply. A nil reply discards the result.
func (c *Client) Call(ctx context.Context, method string, cmd interface{}, reply interface{}) error {
	res, err := receiveFuture(ctx, c.sendCmd(method, cmd))
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	return json.Unmarshal(res, reply)
}

// receiveFuture receives from the passed futureResult channel to extract a
// reply or any errors. The examined errors include an error in the
// futureResult and the error in the reply from the server.
func receiveFuture(ctx context.Context, f chan *response) ([]byte, error) {
	timer := time.NewTimer(defaultResponseTimeout)
	defer timer.Stop()
	select {
	case r := <-f:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrResponseTimeout
	}
}

func (c *Client) removeRequest(id uint64) *jsonRequest {
	c.requestLock.Lock()
	defer c.requestLock.Unlock()
	req := c.requestMap[id]
	delete(c.requestMap, id)
	return req
}

// wsInHandler handles all incoming messages for the websocket connection. It
// must be run as a goroutine.
func (c *Client) wsInHandler() {
	defer c.wg.Done()
out:
	for {
		select {
		case <-c.shutdown:
			break out
		default:
		}

		_, msg, err := c.wsConn.ReadMessage()
		if err != nil {
			select {
			case <-c.shutdown:
			default:
				log.Error("websocket receive error", "alias", c.config.Alias, "err", err)
			}
			break out
		}
		c.handleMessage(msg)
	}

	c.markDisconnected()
	select {
	case c.disconnectChan <- struct{}{}:
	case <-c.shutdown:
	}
	log.Debug("RPC client input handler done", "host", c.config.Host)
}

// wsOutHandler handles all outgoing messages for the websocket connection.
// It must be run as a goroutine.
func (c *Client) wsOutHandler() {
	defer c.wg.Done()
out:
	for {
		select {
		case msg := <-c.sendChan:
			err := c.wsConn.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				break out
			}
		case <-c.shutdown:
			break out
		}
	}
	log.Debug("RPC client output handler done", "host", c.config.Host)
}

// reconnectHandler re-establishes a dropped connection and resends pending
// requests. It must be run as a goroutine and exits immediately when
// automatic reconnection is disabled.
func (c *Client) reconnectHandler() {
	defer c.wg.Done()
	if c.config.DisableAutoReconnect {
		return
	}
out:
	for {
		select {
		case <-c.disconnectChan:
		case <-c.shutdown:
			break out
		}

		for {
			select {
			case <-c.shutdown:
				break out
			default:
			}

			wsConn, err := dial(c.config)
			if err != nil {
				log.Warn("failed to reconnect, retrying", "host", c.config.Host, "err", err)
				time.Sleep(connectionRetryInterval)
				continue
			}

			log.Info("reestablished connection to RPC server", "alias", c.config.Alias, "host", c.config.Host)
			c.mtx.Lock()
			c.wsConn = wsConn
			c.disconnected = false
			c.mtx.Unlock()

			c.resendPending()

			c.wg.Add(2)
			go c.wsInHandler()
			go c.wsOutHandler()
			if c.ntfnHandlers != nil && c.ntfnHandlers.OnClientConnected != nil {
				go c.ntfnHandlers.OnClientConnected()
			}
			break
		}
	}
	log.Debug("RPC client reconnect handler done", "host", c.config.Host)
}

func (c *Client) markDisconnected() {
	c.mtx.Lock()
	c.disconnected = true
	c.mtx.Unlock()
}

func (c *Client) resendPending() {
	c.requestLock.Lock()
	pending := make([]*jsonRequest, 0, len(c.requestMap))
	for _, req := range c.requestMap {
		pending = append(pending, req)
	}
	c.requestLock.Unlock()

	for _, req := range pending {
		select {
		case c.sendChan <- req.marshalledJSON:
		case <-c.shutdown:
			return
		}
	}
}

// handleMessage routes an incoming message to the pending request it
// answers, or to the notification handler when it carries no id.
func (c *Client) handleMessage(msg []byte) {
	var in struct {
		ID     *uint64             `json:"id"`
		Method string              `json:"method"`
		Params json.RawMessage     `json:"params"`
		Result json.RawMessage     `json:"result"`
		Error  *proxyjson.RPCError `json:"error"`
	}
	if err := json.Unmarshal(msg, &in); err != nil {
		log.Warn("remote server sent an invalid message", "alias", c.config.Alias, "err", err)
		return
	}

	// Requests with no id are notifications.
	if in.ID == nil {
		if in.Method == "" {
			return
		}
		if c.ntfnHandlers != nil && c.ntfnHandlers.OnNotification != nil {
			c.ntfnHandlers.OnNotification(in.Method, in.Params)
		}
		return
	}

	req := c.removeRequest(*in.ID)
	if req == nil {
		log.Warn("received unexpected reply", "alias", c.config.Alias, "id", *in.ID)
		return
	}
	if in.Error != nil {
		req.responseChan <- &response{err: in.Error}
		return
	}
	req.responseChan <- &response{result: in.Result}
}

// dial opens a websocket connection using the passed connection
// configuration details.
func dial(config *ConnConfig) (*websocket.Conn, error) {
	// Connect to websocket.
	var tlsConfig *tls.Config
	var scheme = "ws"
	if !config.DisableTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		if len(config.Certificates) > 0 {
			pool := x509.NewCertPool()
			pool.AppendCertsFromPEM(config.Certificates)
			tlsConfig.RootCAs = pool
		}
		scheme = "wss"
	}

	dialer := websocket.Dialer{
		TLSClientConfig:  tlsConfig,
		HandshakeTimeout: 10 * time.Second,
		NetDialContext: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).DialContext,
	}

	// The RPC server requires basic authorization, so create a custom
	// request header with the Authorization header set.
	login := config.User + ":" + config.Pass
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(login))
	requestHeader := make(http.Header)
	requestHeader.Add("Authorization", auth)

	url := fmt.Sprintf("%s://%s/%s", scheme, config.Host, config.Endpoint)
	wsConn, resp, err := dialer.Dial(url, requestHeader)
	if err != nil {
		if err != websocket.ErrBadHandshake || resp == nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("authentication failure: %s", resp.Status)
		}
		return nil, fmt.Errorf("the server responded with a non-websocket handshake: %s", resp.Status)
	}
	return wsConn, nil
}
