package telemetry

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveRequest("list", "ok", 0.2)
	m.ObserveRequest("list", "ok", 0.1)
	m.ObserveRequest("summarize", "error", 1.5)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("list", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("summarize", "error")))
}

func TestBackendFailuresAndRejections(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.BackendFailures.WithLabelValues("qdrant-main").Inc()
	m.RateLimitRejections.Inc()
	m.RateLimitRejections.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendFailures.WithLabelValues("qdrant-main")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.RateLimitRejections))
}

func TestHandlerServesScrape(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveRequest("list", "ok", 0.05)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "nlweb_requests_total")
}
