// Package metrics provides Prometheus metrics for the Oracle service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oracle"

// Custom registry to avoid the default Go collector noise.
var registry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry

var (
	httpRequests = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})

	httpRequestDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by endpoint.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	queriesByIntent = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "queries_total",
		Help:      "Answered queries by classified intent.",
	}, []string{"intent"})

	queryDuration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "query_duration_seconds",
		Help:      "End-to-end query synthesis latency.",
		Buckets:   prometheus.DefBuckets,
	})

	generativeFallbacks = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "meeting_prep_fallbacks_total",
		Help:      "Meeting prep requests answered by the deterministic fallback.",
	})

	generativeSuccesses = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "meeting_prep_generative_total",
		Help:      "Meeting prep requests answered by the generative model.",
	})
)

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(endpoint, method, status string, duration time.Duration) {
	httpRequests.WithLabelValues(endpoint, method, status).Inc()
	httpRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordQuery records one answered oracle query.
func RecordQuery(intent string, duration time.Duration) {
	queriesByIntent.WithLabelValues(intent).Inc()
	queryDuration.Observe(duration.Seconds())
}

// RecordMeetingPrep records which synthesis path served a meeting prep
// request.
func RecordMeetingPrep(generative bool) {
	if generative {
		generativeSuccesses.Inc()
	} else {
		generativeFallbacks.Inc()
	}
}

// Handler exposes the metrics registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
