package reservemgr

import (
	"context"
	"sync"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/ledgerclient"
	"github.com/EOS-Nation/eosn-proxy/metrics"
	"github.com/EOS-Nation/eosn-proxy/model"
)

// Balancer answers balance queries against the ledger.
type Balancer interface {
	Balance(ctx context.Context, symbol, contract string) (int64, error)
}

// RentalMarket places and withdraws base asset reserve.
type RentalMarket interface {
	Rent(ctx context.Context, amount int64) error
	Redeem(ctx context.Context, amount int64) error
	RentedBalance(ctx context.Context) (int64, error)
}

// ReserveManager keeps the system account's idle base asset balance inside
// a float band: anything above the float is placed in the rental market to
// earn the rent rate, and shortfalls are redeemed back so payouts never
// bounce. Rebalancing is triggered by inbound transfer notifications from
// the ledger.
type ReserveManager struct {
	ledger Balancer
	market RentalMarket

	// reserveFloat is the base asset amount kept liquid for payouts.
	reserveFloat int64
	// reserveTarget caps how much may be placed in the market in total.
	reserveTarget int64

	rebalanceLock sync.Mutex
}

func NewReserveManager(ledger Balancer, market RentalMarket, reserveFloat, reserveTarget int64) *ReserveManager {
	return &ReserveManager{
		ledger:        ledger,
		market:        market,
		reserveFloat:  reserveFloat,
		reserveTarget: reserveTarget,
	}
}

// HandleLedgerNotification handles notifications from the ledger client.
func (m *ReserveManager) HandleLedgerNotification(notification *ledgerclient.Notification) {
	switch notification.Type {

	case ledgerclient.NTTransferReceived:
		transfer, ok := notification.Data.(*model.IncomingTransfer)
		if !ok {
			log.Error("reserve manager accepted notification is not a transfer")
			break
		}
		if transfer == nil {
			log.Error("received transfer notification is nil")
			break
		}
		log.Info("inbound transfer received", "from", transfer.From,
			"symbol", transfer.Symbol, "amount", transfer.Amount, "memo", transfer.Memo)
		if transfer.Symbol != chaincfg.ActiveNetParams.BaseSymbol {
			break
		}
		if err := m.Rebalance(context.Background()); err != nil {
			log.Error("rebalance after inbound transfer failed", "err", err)
		}

	case ledgerclient.NTClientConnected:
		// A reconnect may have missed transfers; rebalance from scratch.
		if err := m.Rebalance(context.Background()); err != nil {
			log.Error("rebalance after reconnect failed", "err", err)
		}
	}
}

// Rebalance moves base asset between the liquid balance and the rental
// market until the liquid balance sits at the configured float.
func (m *ReserveManager) Rebalance(ctx context.Context) error {
	m.rebalanceLock.Lock()
	defer m.rebalanceLock.Unlock()

	params := chaincfg.ActiveNetParams
	balance, err := m.ledger.Balance(ctx, params.BaseSymbol, params.BaseContract)
	if err != nil {
		return err
	}
	rented, err := m.market.RentedBalance(ctx)
	if err != nil {
		return err
	}

	switch {
	case balance > m.reserveFloat:
		excess := balance - m.reserveFloat
		if m.reserveTarget > 0 && rented+excess > m.reserveTarget {
			excess = m.reserveTarget - rented
		}
		if excess <= 0 {
			break
		}
		if err := m.market.Rent(ctx, excess); err != nil {
			return err
		}
		rented += excess
		log.Info("placed excess reserve in rental market", "amount", excess, "rented", rented)

	case balance < m.reserveFloat:
		shortfall := m.reserveFloat - balance
		if shortfall > rented {
			shortfall = rented
		}
		if shortfall <= 0 {
			break
		}
		if err := m.market.Redeem(ctx, shortfall); err != nil {
			return err
		}
		rented -= shortfall
		log.Info("redeemed reserve from rental market", "amount", shortfall, "rented", rented)
	}

	metrics.ReserveRented.Set(float64(rented))
	return nil
}
