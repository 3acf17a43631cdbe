package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Media-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmovid",
			Subsystem: "media_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cosmovid",
			Subsystem: "media_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Resolution outcomes per platform
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmovid",
			Subsystem: "media_api",
			Name:      "resolutions_total",
			Help:      "Total resolve attempts",
		},
		[]string{"platform", "status"},
	)

	// Result cache lookups
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmovid",
			Subsystem: "media_api",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups",
		},
		[]string{"platform", "outcome"},
	)

	// Extractor subprocess duration
	ExtractorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cosmovid",
			Subsystem: "media_api",
			Name:      "extractor_duration_seconds",
			Help:      "External extractor invocation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45},
		},
		[]string{"mode"},
	)

	// Proxy streaming counters
	ProxyStreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmovid",
			Subsystem: "media_api",
			Name:      "proxy_streams_total",
			Help:      "Total proxied downloads",
		},
		[]string{"strategy", "status"},
	)

	// Proxy bytes streamed to clients
	ProxyBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cosmovid",
			Subsystem: "media_api",
			Name:      "proxy_bytes_total",
			Help:      "Total bytes streamed to clients",
		},
		[]string{"strategy"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordResolution records one resolve attempt outcome
func RecordResolution(platform, status string) {
	ResolutionsTotal.WithLabelValues(platform, status).Inc()
}

// RecordCacheLookup records a result cache hit or miss
func RecordCacheLookup(platform string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheLookupsTotal.WithLabelValues(platform, outcome).Inc()
}

// RecordExtraction records an extractor invocation
func RecordExtraction(mode string, durationSec float64) {
	ExtractorDuration.WithLabelValues(mode).Observe(durationSec)
}

// RecordProxyStream records a proxied download attempt
func RecordProxyStream(strategy, status string, bytes int64) {
	ProxyStreamsTotal.WithLabelValues(strategy, status).Inc()
	if bytes > 0 {
		ProxyBytesTotal.WithLabelValues(strategy).Add(float64(bytes))
	}
}
