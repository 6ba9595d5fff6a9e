// Package metrics exposes the application's Prometheus instrumentation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all the application metrics.
type Metrics struct {
	// HTTP request metrics
	HTTPRequestTotal    *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Document store operation metrics
	StoreOperationTotal *prometheus.CounterVec

	// Workflow transition metrics
	WorkflowTransitionTotal *prometheus.CounterVec

	// Event publishing metrics
	EventPublishTotal *prometheus.CounterVec

	// Render attempts per renderer in the viewer fallback chain
	RenderAttemptTotal *prometheus.CounterVec
}

var (
	globalMetrics *Metrics
	metricsMutex  sync.Mutex
)

// New returns the process-wide Metrics instance, creating and registering it
// on first use.
func New() *Metrics {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	if globalMetrics != nil {
		return globalMetrics
	}

	m := &Metrics{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillsign_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quillsign_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),

		StoreOperationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillsign_store_operations_total",
			Help: "Total number of document store operations",
		}, []string{"operation", "status"}),

		WorkflowTransitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillsign_workflow_transitions_total",
			Help: "Total number of signing workflow transitions",
		}, []string{"operation", "status"}),

		EventPublishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillsign_event_publish_total",
			Help: "Total number of event publish operations",
		}, []string{"event_kind", "status"}),

		RenderAttemptTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quillsign_render_attempts_total",
			Help: "Total number of render attempts per renderer",
		}, []string{"renderer", "status"}),
	}

	registerMetrics(m)
	globalMetrics = m
	return m
}

func registerMetrics(m *Metrics) {
	registerOrGet(m.HTTPRequestTotal)
	registerOrGet(m.HTTPRequestDuration)
	registerOrGet(m.StoreOperationTotal)
	registerOrGet(m.WorkflowTransitionTotal)
	registerOrGet(m.EventPublishTotal)
	registerOrGet(m.RenderAttemptTotal)
}

// registerOrGet tries to register a metric, returning the existing collector
// when one with the same descriptor is already registered.
func registerOrGet(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return c
}
