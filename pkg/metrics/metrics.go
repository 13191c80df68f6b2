// Package metrics exposes Prometheus instruments for the proxy and
// quote pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the instruments the handlers and services record.
type Metrics struct {
	registry *prometheus.Registry

	ProxyRequests     *prometheus.CounterVec
	ProxyRejected     *prometheus.CounterVec
	QuoteRequests     *prometheus.CounterVec
	DraftOrderLatency *prometheus.HistogramVec
	RegionDecisions   *prometheus.CounterVec
}

// New builds an isolated registry with all pipeline instruments
// registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ProxyRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_requests_total",
			Help: "App proxy requests by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		ProxyRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_rejected_total",
			Help: "App proxy requests rejected before the handler ran.",
		}, []string{"reason"}),
		QuoteRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quote_requests_total",
			Help: "Quote intake outcomes.",
		}, []string{"outcome"}),
		DraftOrderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "draft_order_submit_seconds",
			Help:    "Latency of draftOrderCreate calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		RegionDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "region_decisions_total",
			Help: "Region routing decisions by reason.",
		}, []string{"reason", "show_quote"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
