// Package metrics provides prometheus collectors for the proxy and the edge guard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors, registered on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	ProxyRequests  *prometheus.CounterVec
	ProxyDuration  *prometheus.HistogramVec
	GuardRedirects *prometheus.CounterVec
	CacheHits      *prometheus.CounterVec
}

// New makes and registers all collectors, including go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ProxyRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screengate_proxy_requests_total",
			Help: "Total number of proxied API requests by route and response status",
		}, []string{"route", "status"}),
		ProxyDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screengate_proxy_duration_seconds",
			Help:    "Duration of proxied API requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route"}),
		GuardRedirects: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screengate_guard_redirects_total",
			Help: "Total number of edge guard redirects by target",
		}, []string{"target"}),
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "screengate_proxy_cache_hits_total",
			Help: "Total number of proxied requests served from the response cache",
		}, []string{"route"}),
	}
}

// ProxyRequest records a finished proxied request.
func (m *Metrics) ProxyRequest(route string, status int, duration time.Duration) {
	m.ProxyRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.ProxyDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// CacheHit records a response served from cache.
func (m *Metrics) CacheHit(route string) {
	m.CacheHits.WithLabelValues(route).Inc()
}

// GuardRedirect records an edge guard redirect, target is "login" or "landing".
func (m *Metrics) GuardRedirect(target string) {
	m.GuardRedirects.WithLabelValues(target).Inc()
}

// Handler returns the http handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
