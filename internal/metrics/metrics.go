// Package metrics holds the Prometheus collectors for HTTP traffic and coupon operations.
//
// Collectors are registered on a private registry rather than the global default so that
// tests and multiple app instances in one process do not collide.
//
// Label cardinality is bounded:
//   - method: HTTP verb
//   - path:   the registered fiber route (e.g. /api/coupons/:id<int>), never the raw URL
//   - status: numeric status code as a string
//   - operation / outcome: fixed sets emitted by the coupon service
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector exported by the service.
type Metrics struct {
	registry *prometheus.Registry

	httpReqs     *prometheus.CounterVec
	httpLat      *prometheus.HistogramVec
	httpInflight prometheus.Gauge
	couponOps    *prometheus.CounterVec
}

// New creates the collectors on a fresh registry, including Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpReqs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		// status is left out to keep histogram cardinality low.
		httpLat: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		httpInflight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_inflight",
				Help: "Current number of in-flight HTTP requests.",
			},
		),
		couponOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coupon_operations_total",
				Help: "Coupon operations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOperation counts one coupon operation outcome.
func (m *Metrics) ObserveOperation(operation, outcome string) {
	m.couponOps.WithLabelValues(operation, outcome).Inc()
}

// RequestStarted marks a request as in flight.
func (m *Metrics) RequestStarted() {
	m.httpInflight.Inc()
}

// RequestFinished records a completed request.
func (m *Metrics) RequestFinished(method, path, status string, seconds float64) {
	m.httpInflight.Dec()
	m.httpReqs.WithLabelValues(method, path, status).Inc()
	m.httpLat.WithLabelValues(method, path).Observe(seconds)
}
