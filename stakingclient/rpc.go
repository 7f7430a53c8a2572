package stakingclient

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/EOS-Nation/eosn-proxy/model"
	"github.com/EOS-Nation/eosn-proxy/rpcclient"
)

// NotificationType represents the type of a notification message.
type NotificationType int

// NotificationCallback is used for a caller to provide a callback for
// notifications about various events.
type NotificationCallback func(*Notification)

const (
	// NTDelegationChanged fires when an account's delegated weight to the
	// proxy changes. Data is *model.DelegationChange.
	NTDelegationChanged NotificationType = iota

	// NTClientConnected fires when the connection to the staking registry
	// is opened or reestablished. Data is nil.
	NTClientConnected
)

var notificationTypeStrings = map[NotificationType]string{
	NTDelegationChanged: "NTDelegationChanged",
	NTClientConnected:   "NTClientConnected",
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

type ownerCmd struct {
	Owner string `json:"owner"`
}

type stakeResult struct {
	Staked int64 `json:"staked"`
}

type proxyResult struct {
	Proxy string `json:"proxy"`
}

type amountCmd struct {
	Amount int64 `json:"amount"`
}

type rentedResult struct {
	Amount int64 `json:"amount"`
}

type delegationNtfn struct {
	Account string `json:"account"`
	Delta   int64  `json:"delta"`
}

// RPCClient represents a persistent client connection to the staking
// registry RPC server. It answers delegation queries and places or redeems
// reserve in the rental market.
type RPCClient struct {
	*rpcclient.Client
	connConfig *rpcclient.ConnConfig

	reconnectAttempts int

	notificationsLock sync.RWMutex
	notifications     []NotificationCallback
}

// NewRPCClient creates a client connection to the staking registry described
// by the connect string. The connection is not established immediately; use
// the Start method.
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
			Alias:               "Staking",
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
	return "staking"
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
	log.Debug("connected to staking RPC server", "host", c.connConfig.Host)
	c.sendNotification(NTClientConnected, nil)
}

func (c *RPCClient) onNotification(method string, params json.RawMessage) {
	switch method {
	case "delegation_changed":
		var ntfn delegationNtfn
		if err := json.Unmarshal(params, &ntfn); err != nil {
			log.Warn("invalid delegation notification", "err", err)
			return
		}
		c.sendNotification(NTDelegationChanged, &model.DelegationChange{
			Account: ntfn.Account,
			Delta:   ntfn.Delta,
		})
	default:
		log.Debug("ignoring staking notification", "method", method)
	}
}

// CurrentStake returns the delegated weight of owner in base asset units.
func (c *RPCClient) CurrentStake(ctx context.Context, owner string) (int64, error) {
	var res stakeResult
	if err := c.Call(ctx, "get_stake", &ownerCmd{Owner: owner}, &res); err != nil {
		return 0, err
	}
	return res.Staked, nil
}

// CurrentProxy returns the proxy account owner currently delegates to, or
// an empty string when the owner delegates directly.
func (c *RPCClient) CurrentProxy(ctx context.Context, owner string) (string, error) {
	var res proxyResult
	if err := c.Call(ctx, "get_proxy", &ownerCmd{Owner: owner}, &res); err != nil {
		return "", err
	}
	return res.Proxy, nil
}

// Rent places amount base asset units into the rental market.
func (c *RPCClient) Rent(ctx context.Context, amount int64) error {
	return c.Call(ctx, "rent", &amountCmd{Amount: amount}, nil)
}

// Redeem withdraws amount base asset units from the rental market.
func (c *RPCClient) Redeem(ctx context.Context, amount int64) error {
	return c.Call(ctx, "redeem", &amountCmd{Amount: amount}, nil)
}

// RentedBalance returns the base asset units currently placed in the rental
// market.
func (c *RPCClient) RentedBalance(ctx context.Context) (int64, error) {
	var res rentedResult
	if err := c.Call(ctx, "get_rented", nil, &res); err != nil {
		return 0, err
	}
	return res.Amount, nil
}
