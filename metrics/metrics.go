package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	VoterSignups = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eosnproxy",
		Name:      "voter_signups_total",
		Help:      "Number of voters registered since start.",
	})

	ClaimsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eosnproxy",
		Name:      "claims_settled_total",
		Help:      "Number of claims settled since start.",
	})

	RewardsEntitled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eosnproxy",
		Name:      "rewards_entitled_units_total",
		Help:      "Base asset units entitled by settled claims.",
	})

	TransferFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eosnproxy",
		Name:      "transfer_failures_total",
		Help:      "Number of payout transfers that failed and need replay.",
	})

	PriceRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eosnproxy",
		Name:      "price_refreshes_total",
		Help:      "Number of completed price feed refresh rounds.",
	})

	PriceRefreshErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eosnproxy",
		Name:      "price_refresh_errors_total",
		Help:      "Number of price feed refresh failures.",
	})

	ReserveRented = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "eosnproxy",
		Name:      "reserve_rented_units",
		Help:      "Base asset units currently placed in the rental market.",
	})

	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eosnproxy",
		Name:      "rpc_requests_total",
		Help:      "Number of RPC commands handled, by method.",
	}, []string{"method"})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
