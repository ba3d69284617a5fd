package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts backend calls per logical resource operation rather than per
// URL, keeping label cardinality bounded.
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "backend_client",
		Name:      "requests_total",
		Help:      "Total number of backend API requests.",
	}, []string{"resource", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "backend_client",
		Name:      "request_duration_ms",
		Help:      "Backend API request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"resource"})

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(requests, latency)
	return &Metrics{Requests: requests, Latency: latency}
}

func (m *Metrics) observe(resource, status string, elapsedMS float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(resource, status).Inc()
	m.Latency.WithLabelValues(resource).Observe(elapsedMS)
}
