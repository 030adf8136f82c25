// Package metrics provides Prometheus metrics for the converter service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for conversion metrics.
const (
	SourceUpload = "upload"
	SourceURL    = "url"

	OutcomeOK              = "ok"
	OutcomeParseError      = "parse_error"
	OutcomeValidationError = "validation_error"
	OutcomeFetchError      = "fetch_error"
	OutcomeError           = "error"
)

// defaultDurationBuckets covers conversion and request latencies in
// milliseconds, from sub-millisecond parses to slow remote fetches.
var defaultDurationBuckets = []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Manager manages all Prometheus metrics for the converter service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Conversion metrics
	conversions        *prometheus.CounterVec
	conversionDuration prometheus.Histogram
	documentBytes      prometheus.Histogram

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry()

// Initialize global metrics.
func init() {
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "othersupport",
		subsystem:        "converter",
		histogramBuckets: defaultDurationBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.conversions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "conversions_total",
			Help:      "Total number of conversions by input source and outcome",
		},
		[]string{"source", "outcome"},
	)

	m.conversionDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "conversion_duration_milliseconds",
		Help:      "Histogram of end-to-end conversion duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.documentBytes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "document_bytes",
		Help:      "Histogram of input document sizes in bytes",
		Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 8),
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"route", "method", "status_code"},
	)
}

// RecordConversion increments the conversion counter for a source and outcome.
func (m *Manager) RecordConversion(source, outcome string) {
	m.conversions.WithLabelValues(source, outcome).Inc()
}

// RecordConversionDuration records end-to-end conversion duration in milliseconds.
func (m *Manager) RecordConversionDuration(latencyMs float64) {
	m.conversionDuration.Observe(latencyMs)
}

// RecordDocumentBytes records the size of an input document.
func (m *Manager) RecordDocumentBytes(n int64) {
	m.documentBytes.Observe(float64(n))
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Manager) RecordHTTPRequest(route, method, statusCode string) {
	m.httpRequests.WithLabelValues(route, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func (m *Manager) RecordHTTPRequestDuration(route, method, statusCode string, durationMs float64) {
	m.httpRequestDuration.WithLabelValues(route, method, statusCode).Observe(durationMs)
}

// RecordConversion increments the global conversion counter.
func RecordConversion(source, outcome string) {
	globalManager.RecordConversion(source, outcome)
}

// RecordConversionDuration records conversion duration on the global manager.
func RecordConversionDuration(latencyMs float64) {
	globalManager.RecordConversionDuration(latencyMs)
}

// RecordDocumentBytes records an input document size on the global manager.
func RecordDocumentBytes(n int64) {
	globalManager.RecordDocumentBytes(n)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(route, method, statusCode string) {
	globalManager.RecordHTTPRequest(route, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration on the global manager.
func RecordHTTPRequestDuration(route, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(route, method, statusCode, durationMs)
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
