// Package metrics exposes Prometheus instrumentation for report runs
// and upstream API calls.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus instruments.
type Metrics struct {
	registry *prometheus.Registry

	ReportRuns     *prometheus.CounterVec
	ReportDuration *prometheus.HistogramVec
	UpstreamCalls  *prometheus.CounterVec
}

// New creates the metrics registry and instruments.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ReportRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dartwatch_report_runs_total",
			Help: "Report pipeline runs by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ReportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dartwatch_report_duration_seconds",
			Help:    "Report pipeline run duration.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"kind"}),
		UpstreamCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dartwatch_upstream_calls_total",
			Help: "DART API calls by endpoint and status.",
		}, []string{"endpoint", "status"}),
	}
}

// UpstreamCall implements the DART client's call observer.
func (m *Metrics) UpstreamCall(endpoint, status string) {
	m.UpstreamCalls.WithLabelValues(endpoint, status).Inc()
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
