package fetch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for outbound source requests.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics constructs the fetch collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agritech_fetch_requests_total",
			Help: "Requests issued to external data sources by outcome.",
		},
		[]string{"source", "outcome"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agritech_fetch_duration_seconds",
			Help:    "Latency of requests to external data sources.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	if reg != nil {
		reg.MustRegister(requests, duration)
	}
	return &Metrics{RequestsTotal: requests, RequestDuration: duration}
}

// Observe records one finished request.
func (m *Metrics) Observe(source, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(source, outcome).Inc()
	m.RequestDuration.WithLabelValues(source).Observe(d.Seconds())
}
