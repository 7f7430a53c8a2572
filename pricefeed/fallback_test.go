package pricefeed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type errorFeed struct{}

func (errorFeed) FetchPrices(context.Context, []string) (map[string]int64, error) {
	return nil, errors.New("unreachable")
}

func TestFallbackFeedFillsMissingSymbols(t *testing.T) {
	exchange := NewStaticFeed(map[string]int64{"USDT": 9900})
	oracle := NewStaticFeed(map[string]int64{"USDT": 10100, "PBTC": 30000})

	feed := NewFallbackFeed(exchange, oracle)
	quotes, err := feed.FetchPrices(context.Background(), []string{"USDT", "PBTC"})
	require.NoError(t, err)

	// The exchange quote wins; the oracle only fills what it missed.
	assert.Equal(t, int64(9900), quotes["USDT"])
	assert.Equal(t, int64(30000), quotes["PBTC"])
}

func TestFallbackFeedDegradesToOracle(t *testing.T) {
	oracle := NewStaticFeed(map[string]int64{"PBTC": 30000})
	feed := NewFallbackFeed(errorFeed{}, oracle)

	quotes, err := feed.FetchPrices(context.Background(), []string{"PBTC"})
	require.NoError(t, err)
	assert.Equal(t, int64(30000), quotes["PBTC"])
}

func TestFallbackFeedFailsWhenAllFeedsFail(t *testing.T) {
	feed := NewFallbackFeed(errorFeed{}, errorFeed{})
	_, err := feed.FetchPrices(context.Background(), []string{"PBTC"})
	assert.Error(t, err)
}
