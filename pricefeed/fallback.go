package pricefeed

import (
	"context"
	"errors"
)

// FallbackFeed chains collaborators, typically a general purpose exchange
// first and an oracle second. Quotes from an earlier feed win; later feeds
// only fill symbols the earlier ones could not resolve. The fetch fails
// only when every queried feed fails, so a single unreachable collaborator
// degrades to the next one instead of aborting the refresh.
type FallbackFeed struct {
	feeds []Feed
}

func NewFallbackFeed(feeds ...Feed) *FallbackFeed {
	return &FallbackFeed{feeds: feeds}
}

// FetchPrices implements the Feed interface.
func (f *FallbackFeed) FetchPrices(ctx context.Context, symbols []string) (map[string]int64, error) {
	quotes := make(map[string]int64, len(symbols))
	var errs []error
	fetched := false
	for _, feed := range f.feeds {
		missing := make([]string, 0, len(symbols))
		for _, sym := range symbols {
			if _, ok := quotes[sym]; !ok {
				missing = append(missing, sym)
			}
		}
		if len(missing) == 0 {
			break
		}
		res, err := feed.FetchPrices(ctx, missing)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fetched = true
		for sym, price := range res {
			if price > 0 {
				quotes[sym] = price
			}
		}
	}
	if !fetched && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return quotes, nil
}
