package proxy

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the proxy server.
type Metrics struct {
	RequestsTotal *prometheus.CounterVec
	CacheHits     *prometheus.CounterVec
}

// NewMetrics constructs the proxy collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agritech_proxy_requests_total",
			Help: "Proxy requests by route and response status.",
		},
		[]string{"route", "status"},
	)
	hits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agritech_proxy_cache_hits_total",
			Help: "Proxy responses served from the response cache.",
		},
		[]string{"route"},
	)
	if reg != nil {
		reg.MustRegister(requests, hits)
	}
	return &Metrics{RequestsTotal: requests, CacheHits: hits}
}

func (m *Metrics) observeRequest(route string, status int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) observeHit(route string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(route).Inc()
}
