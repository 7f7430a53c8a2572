package proxyserver

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EOS-Nation/eosn-proxy/metrics"
	"github.com/EOS-Nation/eosn-proxy/proxyjson"

	"github.com/gorilla/websocket"
)

// timeZeroVal is simply the zero value for a time.Time and is used to avoid
// creating multiple instances.
var timeZeroVal time.Time

// websocketSendBufferSize is the number of elements the send channel can
// queue before blocking. Note that this only applies to requests handled
// directly in the websocket client input handler or the async handler since
// notifications have their own queuing mechanism independent of the send
// channel buffer.
const websocketSendBufferSize = 50

// wsClient provides an abstraction for handling a websocket client. The
// overall data flow is split into 2 goroutines: the input handler reads and
// serves commands, the output handler drains the send channel to the
// connection.
type wsClient struct {
	sync.Mutex

	server *ProxyServer
	conn   *websocket.Conn

	disconnected bool
	addr         string
	isAdmin      bool
	user         string

	sendChan chan []byte
	quit     chan struct{}
	wg       sync.WaitGroup
}

func newWebsocketClient(server *ProxyServer, conn *websocket.Conn, remoteAddr string,
	isAdmin bool, user string) *wsClient {

	return &wsClient{
		server:   server,
		conn:     conn,
		addr:     remoteAddr,
		isAdmin:  isAdmin,
		user:     user,
		sendChan: make(chan []byte, websocketSendBufferSize),
		quit:     make(chan struct{}),
	}
}

// WebsocketHandler handles a new websocket client by creating a new
// wsClient, starting it, and blocking until the connection closes. Since it
// blocks, it must be run in a separate goroutine.
func (svr *ProxyServer) WebsocketHandler(conn *websocket.Conn, remoteAddr string, isAdmin bool, user string) {
	// Clear the read deadline that was set before the websocket hijacked
	// the connection.
	conn.SetReadDeadline(timeZeroVal)

	log.Info("new websocket client", "remote", remoteAddr, "admin", isAdmin)
	if int(atomic.LoadInt32(&svr.numWsClients)+1) > svr.cfg.RPCMaxWebsockets {
		log.Info("max websocket clients exceeded, disconnecting client",
			"max", svr.cfg.RPCMaxWebsockets, "remote", remoteAddr)
		conn.Close()
		return
	}
	atomic.AddInt32(&svr.numWsClients, 1)
	defer atomic.AddInt32(&svr.numWsClients, -1)

	client := newWebsocketClient(svr, conn, remoteAddr, isAdmin, user)
	client.Start()
	client.WaitForShutdown()
	log.Info("disconnected websocket client", "remote", remoteAddr)
}

// Start begins processing input and output messages.
func (c *wsClient) Start() {
	log.Debug("starting websocket client", "remote", c.addr)
	c.wg.Add(2)
	go c.inHandler()
	go c.outHandler()
}

// WaitForShutdown blocks until the websocket client goroutines are stopped
// and the connection is closed.
func (c *wsClient) WaitForShutdown() {
	c.wg.Wait()
}

// Disconnect disconnects the websocket client.
func (c *wsClient) Disconnect() {
	c.Lock()
	defer c.Unlock()

	if c.disconnected {
		return
	}

	log.Debug("disconnecting websocket client", "remote", c.addr)
	close(c.quit)
	c.conn.Close()
	c.disconnected = true
}

// inHandler handles all incoming messages for the websocket connection. It
// must be run as a goroutine.
func (c *wsClient) inHandler() {
out:
	for {
		select {
		case <-c.quit:
			break out
		default:
		}

		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if err != io.ErrUnexpectedEOF && !errors.Is(err, net.ErrClosed) &&
				!websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket receive error", "remote", c.addr, "err", err)
			}
			break out
		}

		var request proxyjson.Request
		if err := json.Unmarshal(msg, &request); err != nil {
			jsonErr := proxyjson.NewRPCError(proxyjson.ErrRPCParse,
				"Failed to parse request: "+err.Error())
			reply, err := proxyjson.MarshalResponse(nil, nil, jsonErr)
			if err != nil {
				log.Error("failed to marshal parse failure reply", "err", err)
				continue
			}
			c.SendMessage(reply)
			continue
		}

		c.serveRequest(&request)
	}

	// Ensure the connection is closed.
	c.Disconnect()
	c.wg.Done()
	log.Debug("websocket client input handler done", "remote", c.addr)
}

func (c *wsClient) serveRequest(request *proxyjson.Request) {
	var result interface{}
	var jsonErr error

	if !c.isAdmin {
		if _, ok := rpcLimited[request.Method]; !ok {
			jsonErr = proxyjson.ErrRPCUnauthorizedStd
		}
	}

	if jsonErr == nil {
		parsedCmd := parseCmd(request)
		if parsedCmd.err != nil {
			jsonErr = parsedCmd.err
		} else if err := checkCmdScope(c.isAdmin, c.user, parsedCmd.cmd); err != nil {
			jsonErr = err
		} else {
			result, jsonErr = c.server.standardCmdResult(parsedCmd, c.quit)
		}
	}

	metrics.RPCRequests.WithLabelValues(request.Method).Inc()

	reply, err := createMarshalledReply(request.ID, result, jsonErr)
	if err != nil {
		log.Error("failed to marshal reply", "remote", c.addr, "err", err)
		return
	}
	c.SendMessage(reply)
}

// SendMessage sends the passed json to the websocket client. It is backed
// by a buffered channel, so it will not block until the send channel is
// full.
func (c *wsClient) SendMessage(marshalledJSON []byte) {
	select {
	case c.sendChan <- marshalledJSON:
	case <-c.quit:
	}
}

// outHandler handles all outgoing messages for the websocket connection. It
// must be run as a goroutine.
func (c *wsClient) outHandler() {
out:
	for {
		select {
		case msg := <-c.sendChan:
			err := c.conn.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				c.Disconnect()
				break out
			}
		case <-c.quit:
			break out
		}
	}
	c.wg.Done()
	log.Debug("websocket client output handler done", "remote", c.addr)
}
