package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus instruments. Each Metrics value
// carries its own registry so servers can be constructed independently.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     *prometheus.CounterVec
	interpretDuration prometheus.Histogram
	interpretOutcomes *prometheus.CounterVec
}

// NewMetrics builds and registers the instruments.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "querytalk_http_requests_total",
			Help: "HTTP requests served, by route and status.",
		}, []string{"route", "status"}),
		interpretDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "querytalk_interpret_duration_seconds",
			Help:    "End-to-end interpretation latency, including execution.",
			Buckets: prometheus.DefBuckets,
		}),
		interpretOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "querytalk_interpret_total",
			Help: "Interpretation attempts, by outcome.",
		}, []string{"outcome"}),
	}
}

// Registry exposes the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveInterpret records one interpretation attempt.
func (m *Metrics) ObserveInterpret(d time.Duration, ok bool) {
	m.interpretDuration.Observe(d.Seconds())
	outcome := "rejected"
	if ok {
		outcome = "ok"
	}
	m.interpretOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, status string) {
	m.requestsTotal.WithLabelValues(route, status).Inc()
}
