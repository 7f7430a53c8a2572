package pricefeed

import "context"

// StaticFeed serves a fixed quote table. Used when prices are pinned by
// configuration instead of fetched from a market.
type StaticFeed struct {
	quotes map[string]int64
}

func NewStaticFeed(quotes map[string]int64) *StaticFeed {
	return &StaticFeed{quotes: quotes}
}

// FetchPrices implements the Feed interface.
func (f *StaticFeed) FetchPrices(_ context.Context, symbols []string) (map[string]int64, error) {
	res := make(map[string]int64, len(symbols))
	for _, sym := range symbols {
		if price, ok := f.quotes[sym]; ok && price > 0 {
			res[sym] = price
		}
	}
	return res, nil
}
