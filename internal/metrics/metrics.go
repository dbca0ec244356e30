// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DealsCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campusmarket_deals_cache_hits_total",
		Help: "Deal fetches served from the in-process cache.",
	})

	// DealsTier counts which provider tier answered a fetch, or failed.
	DealsTier = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campusmarket_deals_tier_total",
		Help: "Deal fetches by provider tier and outcome.",
	}, []string{"tier", "outcome"})

	RetailerCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "campusmarket_retailer_calls_total",
		Help: "Retailer adapter invocations by retailer and source.",
	}, []string{"retailer", "source"})

	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "campusmarket_messages_sent_total",
		Help: "Direct messages appended to the store.",
	})
)

func init() {
	prometheus.MustRegister(DealsCacheHits)
	prometheus.MustRegister(DealsTier)
	prometheus.MustRegister(RetailerCalls)
	prometheus.MustRegister(MessagesSent)
}
