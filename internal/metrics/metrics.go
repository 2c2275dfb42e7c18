// Package metrics provides Prometheus instrumentation for the solver
// service: solve outcomes by reason code and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for one service instance. Collectors are
// registered on a private registry rather than the global default so tests
// can create instances freely.
type Metrics struct {
	registry *prometheus.Registry

	solveResults  *prometheus.CounterVec
	solveDuration prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		solveResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "counterweight_solve_results_total",
				Help: "Total number of solve calls by outcome reason",
			},
			[]string{"reason"},
		),
		solveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "counterweight_solve_duration_seconds",
				Help:    "Solve call duration in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
			},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
	}
}

// Handler returns the exposition endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSolve records one solve call outcome. Nil-safe so callers can run
// without metrics wired.
func (m *Metrics) RecordSolve(reason string, duration time.Duration) {
	if m == nil {
		return
	}
	m.solveResults.WithLabelValues(reason).Inc()
	m.solveDuration.Observe(duration.Seconds())
}

// RecordRequest records one completed HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, path, code).Inc()
	m.httpDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// Registry exposes the underlying registry, primarily for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
