// Package metrics exposes Prometheus collectors for the pageinfo service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.005, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "route"},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pageinfo_cache_lookups_total",
			Help: "Total number of cache lookups, labeled by result (hit, miss, error).",
		},
		[]string{"result"},
	)

	cacheErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pageinfo_cache_errors_total",
			Help: "Total number of failed cache operations, labeled by operation.",
		},
		[]string{"operation"},
	)

	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pageinfo_analyses_total",
			Help: "Total number of page analyses, labeled by result status.",
		},
		[]string{"status"},
	)

	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pageinfo_fetches_total",
			Help: "Total number of page fetches, labeled by outcome.",
		},
		[]string{"status"},
	)

	fetchBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pageinfo_fetch_bytes_total",
			Help: "Total number of body bytes fetched.",
		},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveCacheLookup counts one lookup with the given outcome.
func ObserveCacheLookup(result string) {
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveCacheError counts a failed cache operation ("get", "set", "ping").
func ObserveCacheError(operation string) {
	cacheErrorsTotal.WithLabelValues(operation).Inc()
}

// ObserveAnalysis counts a finished analysis by result status.
func ObserveAnalysis(status string) {
	analysesTotal.WithLabelValues(status).Inc()
}

// ObserveFetch records a page fetch outcome and its body size. Target hosts
// come from clients, so they are never used as label values.
func ObserveFetch(status string, bytesFetched int) {
	fetchesTotal.WithLabelValues(status).Inc()
	if bytesFetched > 0 {
		fetchBytesTotal.Add(float64(bytesFetched))
	}
}
