package claimmgr

import (
	"testing"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBase = &do.RewardAssetInfo{Symbol: "EOS", Contract: "eosio.token", Price: 10000}

func testAssets(extra ...*do.RewardAssetInfo) map[string]*do.RewardAssetInfo {
	assets := map[string]*do.RewardAssetInfo{testBase.Symbol: testBase}
	for _, a := range extra {
		assets[a.Symbol] = a
	}
	return assets
}

func TestSplitAllocationEmptyPortfolio(t *testing.T) {
	payouts := splitAllocation(657, nil, testAssets(), testBase)
	require.Len(t, payouts, 1)
	assert.Equal(t, "EOS", payouts[0].Symbol)
	assert.Equal(t, int64(657), payouts[0].Amount)
}

func TestSplitAllocationExact(t *testing.T) {
	usdt := &do.RewardAssetInfo{Symbol: "USDT", Contract: "tethertether", Price: 10000}
	pbtc := &do.RewardAssetInfo{Symbol: "PBTC", Contract: "btc.ptokens", Price: 10000}
	entries := []model.PortfolioEntry{
		{Symbol: "USDT", Percent: 6000},
		{Symbol: "PBTC", Percent: 4000},
	}

	payouts := splitAllocation(1000, entries, testAssets(usdt, pbtc), testBase)
	require.Len(t, payouts, 2)
	assert.Equal(t, int64(600), payouts[0].Amount)
	assert.Equal(t, int64(400), payouts[1].Amount)
}

func TestSplitAllocationResidueToBase(t *testing.T) {
	usdt := &do.RewardAssetInfo{Symbol: "USDT", Contract: "tethertether", Price: 10000}
	entries := []model.PortfolioEntry{
		{Symbol: "USDT", Percent: 3333},
	}

	payouts := splitAllocation(1000, entries, testAssets(usdt), testBase)
	require.Len(t, payouts, 2)
	assert.Equal(t, "USDT", payouts[0].Symbol)
	assert.Equal(t, int64(333), payouts[0].Amount)
	assert.Equal(t, "EOS", payouts[1].Symbol)
	assert.Equal(t, int64(667), payouts[1].Amount)
}

func TestSplitAllocationResidueMergesIntoBaseEntry(t *testing.T) {
	usdt := &do.RewardAssetInfo{Symbol: "USDT", Contract: "tethertether", Price: 10000}
	entries := []model.PortfolioEntry{
		{Symbol: "EOS", Percent: 5000},
		{Symbol: "USDT", Percent: 3000},
	}

	// 500 base + 300 USDT, the 200 unallocated merges into the base entry.
	payouts := splitAllocation(1000, entries, testAssets(usdt), testBase)
	require.Len(t, payouts, 2)
	assert.Equal(t, "EOS", payouts[0].Symbol)
	assert.Equal(t, int64(700), payouts[0].Amount)
	assert.Equal(t, "USDT", payouts[1].Symbol)
	assert.Equal(t, int64(300), payouts[1].Amount)
}

func TestSplitAllocationUnresolvableSymbolFallsToBase(t *testing.T) {
	entries := []model.PortfolioEntry{
		{Symbol: "GONE", Percent: 10000},
	}

	payouts := splitAllocation(1000, entries, testAssets(), testBase)
	require.Len(t, payouts, 1)
	assert.Equal(t, "EOS", payouts[0].Symbol)
	assert.Equal(t, int64(1000), payouts[0].Amount)
}

func TestSplitAllocationPriceConversion(t *testing.T) {
	pbtc := &do.RewardAssetInfo{Symbol: "PBTC", Contract: "btc.ptokens", Price: 20000}
	entries := []model.PortfolioEntry{
		{Symbol: "PBTC", Percent: 5000},
	}

	// 500 base at 2 base per unit buys 250 units; 500 residue in base.
	payouts := splitAllocation(1000, entries, testAssets(pbtc), testBase)
	require.Len(t, payouts, 2)
	assert.Equal(t, "PBTC", payouts[0].Symbol)
	assert.Equal(t, int64(250), payouts[0].Amount)
	assert.Equal(t, int64(500), payouts[1].Amount)
}

func TestSplitAllocationDustShareRefundsInBase(t *testing.T) {
	pbtc := &do.RewardAssetInfo{Symbol: "PBTC", Contract: "btc.ptokens", Price: 1000000}
	entries := []model.PortfolioEntry{
		{Symbol: "PBTC", Percent: 100},
	}

	// The 1% share of 10 floors to 0 units of PBTC; everything stays base.
	payouts := splitAllocation(10, entries, testAssets(pbtc), testBase)
	require.Len(t, payouts, 1)
	assert.Equal(t, "EOS", payouts[0].Symbol)
	assert.Equal(t, int64(10), payouts[0].Amount)
}

func TestSplitAllocationConversionDustToBase(t *testing.T) {
	pbtc := &do.RewardAssetInfo{Symbol: "PBTC", Contract: "btc.ptokens", Price: 30000}
	entries := []model.PortfolioEntry{
		{Symbol: "PBTC", Percent: 10000},
	}

	// 1000 base at 3 base per unit buys 333 units worth 999; the conversion
	// dust of 1 comes back as a base payout.
	payouts := splitAllocation(1000, entries, testAssets(pbtc), testBase)
	require.Len(t, payouts, 2)
	assert.Equal(t, "PBTC", payouts[0].Symbol)
	assert.Equal(t, int64(333), payouts[0].Amount)
	assert.Equal(t, "EOS", payouts[1].Symbol)
	assert.Equal(t, int64(1), payouts[1].Amount)
}

func TestSplitAllocationExactInBaseEquivalent(t *testing.T) {
	usdt := &do.RewardAssetInfo{Symbol: "USDT", Contract: "tethertether", Price: 7300}
	pbtc := &do.RewardAssetInfo{Symbol: "PBTC", Contract: "btc.ptokens", Price: 30000}
	entries := []model.PortfolioEntry{
		{Symbol: "USDT", Percent: 4500},
		{Symbol: "PBTC", Percent: 4500},
	}

	// Neither price divides its share evenly; every unit of dust must land
	// in the base payout so nothing leaks.
	payouts := splitAllocation(657, entries, testAssets(usdt, pbtc), testBase)
	total := int64(0)
	for _, p := range payouts {
		if p.Symbol == testBase.Symbol {
			total += p.Amount
			continue
		}
		price := testAssets(usdt, pbtc)[p.Symbol].Price
		total += baseValue(p.Amount, price)
	}
	assert.Equal(t, int64(657), total)
}

func TestSplitAllocationNothingToSplit(t *testing.T) {
	assert.Nil(t, splitAllocation(0, nil, testAssets(), testBase))
}
