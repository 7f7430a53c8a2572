package pricemgr

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/metrics"
	"github.com/EOS-Nation/eosn-proxy/pricefeed"
	"github.com/EOS-Nation/eosn-proxy/service"

	lru "github.com/hashicorp/golang-lru"
	"gorm.io/gorm"
)

const quoteCacheSize = 128

// PriceManager keeps the reward asset registry in sync with an external
// price feed. A failed refresh keeps the last stored prices; the registry
// never goes blank because a market endpoint had a bad minute.
type PriceManager struct {
	db      *gorm.DB
	feed    pricefeed.Feed
	refresh time.Duration

	// lastGood caches the most recent accepted quote per symbol, so that
	// repeat quotes skip the database write.
	lastGood *lru.Cache

	wg       sync.WaitGroup
	shutdown int32
	quit     chan struct{}
}

func NewPriceManager(db *gorm.DB, feed pricefeed.Feed, refresh time.Duration) *PriceManager {
	cache, _ := lru.New(quoteCacheSize)
	return &PriceManager{
		db:       db,
		feed:     feed,
		refresh:  refresh,
		lastGood: cache,
		quit:     make(chan struct{}),
	}
}

// Start launches the periodic refresh loop. It does nothing when the
// manager has no feed.
func (m *PriceManager) Start() {
	if m.feed == nil || m.refresh <= 0 {
		log.Info("price refresh disabled")
		return
	}
	m.wg.Add(1)
	go m.refreshLoop()
}

// Stop signals the refresh loop to exit and waits for it.
func (m *PriceManager) Stop() {
	if atomic.AddInt32(&m.shutdown, 1) != 1 {
		return
	}
	close(m.quit)
	m.wg.Wait()
}

func (m *PriceManager) refreshLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.refresh)
	defer ticker.Stop()

	// First refresh happens right away so a restart does not serve day-old
	// prices for a full interval.
	m.RefreshOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			m.RefreshOnce(context.Background())
		case <-m.quit:
			return
		}
	}
}

// RefreshOnce fetches quotes for every registered reward asset except the
// base asset and stores the changed ones.
func (m *PriceManager) RefreshOnce(ctx context.Context) {
	rewardService := service.GetRewardService()

	assets, err := rewardService.GetAssets(ctx, m.db)
	if err != nil {
		metrics.PriceRefreshErrors.Inc()
		log.Error("price refresh: unable to list reward assets", "err", err)
		return
	}

	baseSymbol := chaincfg.ActiveNetParams.BaseSymbol
	symbols := make([]string, 0, len(assets))
	for _, asset := range assets {
		if asset.Symbol == baseSymbol {
			continue
		}
		symbols = append(symbols, asset.Symbol)
	}
	if len(symbols) == 0 {
		return
	}

	quotes, err := m.feed.FetchPrices(ctx, symbols)
	if err != nil {
		metrics.PriceRefreshErrors.Inc()
		log.Warn("price refresh failed, keeping last stored prices", "err", err)
		return
	}

	updated := 0
	for _, sym := range symbols {
		price, ok := quotes[sym]
		if !ok {
			log.Debug("feed has no quote, keeping last stored price", "symbol", sym)
			continue
		}
		if cached, ok := m.lastGood.Get(sym); ok && cached.(int64) == price {
			continue
		}
		if err := rewardService.UpdatePrice(ctx, m.db, sym, price); err != nil {
			log.Error("price refresh: unable to store price", "symbol", sym, "err", err)
			continue
		}
		m.lastGood.Add(sym, price)
		updated++
	}

	metrics.PriceRefreshes.Inc()
	log.Debug("price refresh round finished", "symbols", len(symbols), "updated", updated)
}

// LastQuote returns the most recent accepted quote for a symbol, if any.
func (m *PriceManager) LastQuote(symbol string) (int64, bool) {
	v, ok := m.lastGood.Get(symbol)
	if !ok {
		return 0, false
	}
	return v.(int64), true
}

// Invalidate drops the cached quote for a symbol so the next refresh writes
// it unconditionally. Called after manual price overrides.
func (m *PriceManager) Invalidate(symbol string) {
	m.lastGood.Remove(symbol)
}
