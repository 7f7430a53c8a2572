package pricemgr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EOS-Nation/eosn-proxy/dal"
	"github.com/EOS-Nation/eosn-proxy/pricefeed"
	"github.com/EOS-Nation/eosn-proxy/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type failingFeed struct{}

func (failingFeed) FetchPrices(context.Context, []string) (map[string]int64, error) {
	return nil, errors.New("feed unavailable")
}

func priceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dal.InitTestDB()
	require.NoError(t, err)
	ctx := context.Background()
	s := service.GetRewardService()
	require.NoError(t, s.RegisterAsset(ctx, db, "EOS", "eosio.token", 10000))
	require.NoError(t, s.RegisterAsset(ctx, db, "USDT", "tethertether", 20000))
	require.NoError(t, s.RegisterAsset(ctx, db, "PBTC", "btc.ptokens", 30000))
	return db
}

func TestPriceManagerRefreshOnce(t *testing.T) {
	db := priceTestDB(t)
	ctx := context.Background()

	feed := pricefeed.NewStaticFeed(map[string]int64{"USDT": 22000, "PBTC": 31000, "EOS": 99999})
	m := NewPriceManager(db, feed, time.Minute)
	m.RefreshOnce(ctx)

	s := service.GetRewardService()
	usdt, err := s.GetAsset(ctx, db, "USDT")
	require.NoError(t, err)
	assert.Equal(t, int64(22000), usdt.Price)

	// The base asset is pinned at par and never refreshed from the feed.
	eos, err := s.GetAsset(ctx, db, "EOS")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), eos.Price)

	quote, ok := m.LastQuote("USDT")
	assert.True(t, ok)
	assert.Equal(t, int64(22000), quote)
}

func TestPriceManagerKeepsLastPriceOnFeedFailure(t *testing.T) {
	db := priceTestDB(t)
	ctx := context.Background()

	m := NewPriceManager(db, failingFeed{}, time.Minute)
	m.RefreshOnce(ctx)

	usdt, err := service.GetRewardService().GetAsset(ctx, db, "USDT")
	require.NoError(t, err)
	assert.Equal(t, int64(20000), usdt.Price)
}

func TestPriceManagerPartialQuotes(t *testing.T) {
	db := priceTestDB(t)
	ctx := context.Background()

	// The feed knows USDT but not PBTC; PBTC keeps its stored price.
	feed := pricefeed.NewStaticFeed(map[string]int64{"USDT": 21000})
	m := NewPriceManager(db, feed, time.Minute)
	m.RefreshOnce(ctx)

	s := service.GetRewardService()
	usdt, err := s.GetAsset(ctx, db, "USDT")
	require.NoError(t, err)
	assert.Equal(t, int64(21000), usdt.Price)
	pbtc, err := s.GetAsset(ctx, db, "PBTC")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), pbtc.Price)
}

func TestPriceManagerInvalidate(t *testing.T) {
	db := priceTestDB(t)
	ctx := context.Background()

	feed := pricefeed.NewStaticFeed(map[string]int64{"USDT": 21000})
	m := NewPriceManager(db, feed, time.Minute)
	m.RefreshOnce(ctx)

	// A manual override would be clobbered only after the cache entry is
	// dropped; a repeat quote alone skips the write.
	s := service.GetRewardService()
	require.NoError(t, s.UpdatePrice(ctx, db, "USDT", 50000))
	m.RefreshOnce(ctx)
	usdt, err := s.GetAsset(ctx, db, "USDT")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), usdt.Price)

	m.Invalidate("USDT")
	m.RefreshOnce(ctx)
	usdt, err = s.GetAsset(ctx, db, "USDT")
	require.NoError(t, err)
	assert.Equal(t, int64(21000), usdt.Price)
}

func TestStaticFeedDropsNonPositiveQuotes(t *testing.T) {
	feed := pricefeed.NewStaticFeed(map[string]int64{"USDT": 0, "PBTC": -5})
	quotes, err := feed.FetchPrices(context.Background(), []string{"USDT", "PBTC"})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}
