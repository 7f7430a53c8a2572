package ledgerclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/model"
	"github.com/EOS-Nation/eosn-proxy/rpcclient"
)

// NotificationType represents the type of a notification message.
type NotificationType int

// NotificationCallback is used for a caller to provide a callback for
// notifications about various events.
type NotificationCallback func(*Notification)

const (
	// NTTransferReceived fires when the ledger reports an inbound transfer
	// to the system account. Data is *model.IncomingTransfer.
	NTTransferReceived NotificationType = iota

	// NTClientConnected fires when the connection to the ledger is opened
	// or reestablished. Data is nil.
	NTClientConnected
)

// notificationTypeStrings is a map of notification types back to their
// constant names for pretty printing.
var notificationTypeStrings = map[NotificationType]string{
	NTTransferReceived: "NTTransferReceived",
	NTClientConnected:  "NTClientConnected",
}

// String returns the NotificationType in human-readable form.
func (n NotificationType) String() string {
	if s, ok := notificationTypeStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Notification Type (%d)", int(n))
}

// Notification defines a notification that is sent to subscribers via the
// callback function provided during the call to Subscribe.
type Notification struct {
	Type NotificationType
	Data interface{}
}

type transferCmd struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Symbol   string `json:"symbol"`
	Contract string `json:"contract"`
	Amount   int64  `json:"amount"`
	Memo     string `json:"memo"`
}

type balanceCmd struct {
	Account  string `json:"account"`
	Symbol   string `json:"symbol"`
	Contract string `json:"contract"`
}

type balanceResult struct {
	Amount int64 `json:"amount"`
}

type transferNtfn struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Symbol   string `json:"symbol"`
	Contract string `json:"contract"`
	Amount   int64  `json:"amount"`
	Memo     string `json:"memo"`
}

// RPCClient represents a persistent client connection to the ledger RPC
// server. It executes outbound reward transfers and surfaces inbound
// transfer notifications.
type RPCClient struct {
	*rpcclient.Client
	connConfig *rpcclient.ConnConfig

	reconnectAttempts int

	notificationsLock sync.RWMutex
	notifications     []NotificationCallback
}

// NewRPCClient creates a client connection to the ledger described by the
// connect string. The connection is not established immediately; use the
// Start method.
func NewRPCClient(connect, user, pass string, certs []byte, disableTLS bool,
	reconnectAttempts int) (*RPCClient, error) {

	if reconnectAttempts < 0 {
		return nil, fmt.Errorf("reconnectAttempts must be positive")
	}

	client := &RPCClient{
		connConfig: &rpcclient.ConnConfig{
			Host:                connect,
			Endpoint:            "ws",
			User:                user,
			Pass:                pass,
			Certificates:        certs,
			DisableConnectOnNew: true,
			DisableTLS:          disableTLS,
			Alias:               "Ledger",
		},
		reconnectAttempts: reconnectAttempts,
	}
	ntfnCallbacks := &rpcclient.NotificationHandlers{
		OnClientConnected: client.onClientConnect,
		OnNotification:    client.onNotification,
	}
	rpcClient, err := rpcclient.New(client.connConfig, ntfnCallbacks)
	if err != nil {
		return nil, err
	}
	client.Client = rpcClient
	return client, nil
}

// BackEnd returns the name of the driver.
func (c *RPCClient) BackEnd() string {
	return "ledger"
}

// Start attempts to establish the client connection.
func (c *RPCClient) Start() error {
	return c.Connect(c.reconnectAttempts)
}

// Stop disconnects the client and signals the shutdown of all goroutines.
func (c *RPCClient) Stop() {
	c.Shutdown()
	c.WaitForShutdown()
}

// Subscribe registers a callback to be executed when various events take
// place.
func (c *RPCClient) Subscribe(callback NotificationCallback) {
	c.notificationsLock.Lock()
	c.notifications = append(c.notifications, callback)
	c.notificationsLock.Unlock()
}

func (c *RPCClient) sendNotification(typ NotificationType, data interface{}) {
	n := Notification{Type: typ, Data: data}
	c.notificationsLock.RLock()
	for _, callback := range c.notifications {
		callback(&n)
	}
	c.notificationsLock.RUnlock()
}

func (c *RPCClient) onClientConnect() {
	log.Debug("connected to ledger RPC server", "host", c.connConfig.Host)
	c.sendNotification(NTClientConnected, nil)
}

func (c *RPCClient) onNotification(method string, params json.RawMessage) {
	switch method {
	case "transfer":
		var ntfn transferNtfn
		if err := json.Unmarshal(params, &ntfn); err != nil {
			log.Warn("invalid transfer notification", "err", err)
			return
		}
		if ntfn.To != chaincfg.ActiveNetParams.SystemAccount {
			return
		}
		c.sendNotification(NTTransferReceived, &model.IncomingTransfer{
			From:     ntfn.From,
			To:       ntfn.To,
			Symbol:   ntfn.Symbol,
			Contract: ntfn.Contract,
			Amount:   ntfn.Amount,
			Memo:     ntfn.Memo,
		})
	default:
		log.Debug("ignoring ledger notification", "method", method)
	}
}

// Transfer executes an outbound transfer from the system account.
func (c *RPCClient) Transfer(ctx context.Context, payout *model.Payout) error {
	cmd := &transferCmd{
		From:     chaincfg.ActiveNetParams.SystemAccount,
		To:       payout.To,
		Symbol:   payout.Symbol,
		Contract: payout.Contract,
		Amount:   payout.Amount,
		Memo:     payout.Memo,
	}
	if err := c.Call(ctx, "transfer", cmd, nil); err != nil {
		return err
	}
	log.Debug("transfer submitted", "to", payout.To, "symbol", payout.Symbol, "amount", payout.Amount)
	return nil
}

// Balance returns the system account balance of an asset.
func (c *RPCClient) Balance(ctx context.Context, symbol, contract string) (int64, error) {
	cmd := &balanceCmd{
		Account:  chaincfg.ActiveNetParams.SystemAccount,
		Symbol:   symbol,
		Contract: contract,
	}
	var res balanceResult
	if err := c.Call(ctx, "get_balance", cmd, &res); err != nil {
		return 0, err
	}
	return res.Amount, nil
}
