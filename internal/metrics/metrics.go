package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the tracking service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Tracking metrics
	TrackingEventsTotal *prometheus.CounterVec
	RateLimitedTotal    *prometheus.CounterVec

	// Store metrics
	StoreOperationDuration *prometheus.HistogramVec
	StoreErrorsTotal       *prometheus.CounterVec

	// Retention metrics
	RetentionPrunedTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analytics_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		TrackingEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_tracking_events_total",
				Help: "Tracking requests by event type and outcome",
			},
			[]string{"type", "outcome"},
		),
		RateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_rate_limited_total",
				Help: "Requests rejected by a rate limiter",
			},
			[]string{"endpoint"},
		),
		StoreOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analytics_store_operation_duration_seconds",
				Help:    "Document store operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation", "backend"},
		),
		StoreErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_store_errors_total",
				Help: "Document store operation failures",
			},
			[]string{"operation", "backend"},
		),
		RetentionPrunedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analytics_retention_pruned_total",
				Help: "Entries removed by the retention sweep",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TrackingEventsTotal,
		m.RateLimitedTotal,
		m.StoreOperationDuration,
		m.StoreErrorsTotal,
		m.RetentionPrunedTotal,
	)

	return m
}

func (m *Metrics) ObserveHTTP(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) TrackingOutcome(eventType, outcome string) {
	if m == nil {
		return
	}
	m.TrackingEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) RateLimited(endpoint string) {
	if m == nil {
		return
	}
	m.RateLimitedTotal.WithLabelValues(endpoint).Inc()
}

// ObserveStore records the duration of one store call and counts it as an
// error when err is non-nil.
func (m *Metrics) ObserveStore(operation, backend string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreOperationDuration.WithLabelValues(operation, backend).Observe(d.Seconds())
	if err != nil {
		m.StoreErrorsTotal.WithLabelValues(operation, backend).Inc()
	}
}

func (m *Metrics) Pruned(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RetentionPrunedTotal.WithLabelValues(kind).Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
