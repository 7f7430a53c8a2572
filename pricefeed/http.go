package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// HTTPFeed fetches quotes from a JSON market data endpoint. The endpoint is
// expected to answer GET <base>?symbols=SYM1,SYM2 with a body of the form
//
//	{"prices": [{"symbol": "USDT", "price": 41200}, ...]}
type HTTPFeed struct {
	endpoint string
	client   *http.Client
}

// NewHTTPFeed creates a feed against the given endpoint URL.
func NewHTTPFeed(endpoint string) *HTTPFeed {
	return &HTTPFeed{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

type priceBody struct {
	Prices []struct {
		Symbol string `json:"symbol"`
		Price  int64  `json:"price"`
	} `json:"prices"`
}

// FetchPrices implements the Feed interface.
func (f *HTTPFeed) FetchPrices(ctx context.Context, symbols []string) (map[string]int64, error) {
	if len(symbols) == 0 {
		return map[string]int64{}, nil
	}

	u, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("symbols", strings.Join(symbols, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price endpoint returned %s", resp.Status)
	}

	var body priceBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	quotes := make(map[string]int64, len(body.Prices))
	for _, p := range body.Prices {
		if p.Price <= 0 {
			continue
		}
		quotes[p.Symbol] = p.Price
	}
	return quotes, nil
}
