// Package telemetry holds the Prometheus instrumentation for the query
// service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors recorded by the pipeline and the HTTP
// surface. All collectors are safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	BackendFailures     *prometheus.CounterVec
	RateLimitRejections prometheus.Counter
	StreamsActive       prometheus.Gauge
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlweb",
			Name:      "requests_total",
			Help:      "Query requests handled, by mode and outcome.",
		}, []string{"mode", "outcome"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nlweb",
			Name:      "request_duration_seconds",
			Help:      "End-to-end request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		BackendFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nlweb",
			Name:      "backend_failures_total",
			Help:      "Backend query failures, by endpoint id.",
		}, []string{"backend"}),
		RateLimitRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nlweb",
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		StreamsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nlweb",
			Name:      "streams_active",
			Help:      "SSE streams currently open.",
		}),
	}
}

// Handler serves the scrape endpoint for this metrics set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished request.
func (m *Metrics) ObserveRequest(mode, outcome string, seconds float64) {
	m.RequestsTotal.WithLabelValues(mode, outcome).Inc()
	m.RequestDuration.WithLabelValues(mode).Observe(seconds)
}
