package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inflight prometheus.Gauge
}

var (
	httpMetricsOnce sync.Once
	httpRegistry    *httpMetrics
)

// HTTP returns the lazily-initialised gateway HTTP metrics registry.
func HTTP() *httpMetrics {
	httpMetricsOnce.Do(func() {
		httpRegistry = &httpMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "tokenforge",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total gateway requests segmented by route, method and status.",
			}, []string{"route", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "tokenforge",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution of gateway handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route", "method"}),
			inflight: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "tokenforge",
				Subsystem: "gateway",
				Name:      "requests_inflight",
				Help:      "Number of gateway requests currently being served.",
			}),
		}
		prometheus.MustRegister(
			httpRegistry.requests,
			httpRegistry.latency,
			httpRegistry.inflight,
		)
	})
	return httpRegistry
}

// Observe records one served request.
func (m *httpMetrics) Observe(route, method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, status).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// TrackInflight adjusts the in-flight gauge by delta.
func (m *httpMetrics) TrackInflight(delta float64) {
	if m == nil {
		return
	}
	m.inflight.Add(delta)
}
