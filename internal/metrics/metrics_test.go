package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.ObserveHTTP("POST", "/tracking", "200", 10*time.Millisecond)
	m.TrackingOutcome("pageview", "tracked")
	m.RateLimited("ingest")
	m.ObserveStore("load", "redis", time.Millisecond, nil)
	m.Pruned("days", 1)

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 6)
}

func TestTrackingOutcome(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TrackingOutcome("pageview", "tracked")
	m.TrackingOutcome("pageview", "tracked")
	m.TrackingOutcome("session", "bot")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TrackingEventsTotal.WithLabelValues("pageview", "tracked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrackingEventsTotal.WithLabelValues("session", "bot")))
}

func TestObserveStore_CountsErrors(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStore("save", "postgres", time.Millisecond, nil)
	m.ObserveStore("save", "postgres", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("save", "postgres")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StoreOperationDuration))
}

func TestPruned_IgnoresZero(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Pruned("pageViews", 0)
	m.Pruned("pageViews", 3)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RetentionPrunedTotal.WithLabelValues("pageViews")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", "200", time.Millisecond)
		m.TrackingOutcome("pageview", "tracked")
		m.RateLimited("stats")
		m.ObserveStore("load", "s3", time.Millisecond, errors.New("x"))
		m.Pruned("days", 2)
	})
}

func TestHandler_ExposesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	m.RateLimited("stats")

	rec := httptest.NewRecorder()
	Handler(registry).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `analytics_rate_limited_total{endpoint="stats"} 1`)
}
