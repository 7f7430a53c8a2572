// Package pricefeed fetches reward asset quotes from an external market
// data source. Quotes are expressed in base asset units per asset unit,
// scaled by constdef.PriceScale.
package pricefeed

import "context"

// Quote is one observed price.
type Quote struct {
	Symbol string
	// Price is in base asset units per asset unit, scaled by
	// constdef.PriceScale. Always > 0 for a valid quote.
	Price int64
}

// Feed supplies current quotes for reward assets.
type Feed interface {
	// FetchPrices returns a quote for every requested symbol it can
	// resolve. Missing symbols are simply absent from the result; the
	// error is reserved for transport level failures.
	FetchPrices(ctx context.Context, symbols []string) (map[string]int64, error)
}
