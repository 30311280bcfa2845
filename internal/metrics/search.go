package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search engine client Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esmodel",
			Name:      "engine_requests_total",
			Help:      "Total number of search engine requests",
		},
		[]string{"backend", "operation", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "esmodel",
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend", "operation"},
	)

	SearchHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esmodel",
			Name:      "engine_hits_returned_total",
			Help:      "Total number of hits returned by the search engine",
		},
		[]string{"backend", "operation"},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers Prometheus search engine metrics.
// Safe to call from several goroutines; only the first call registers.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchRequestDuration)
		prometheus.MustRegister(SearchHitsTotal)
	})
}
