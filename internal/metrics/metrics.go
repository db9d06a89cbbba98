// Package metrics provides Prometheus instrumentation for the Meridian
// back-office.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequests counts requests by method, route pattern and status.
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration *prometheus.HistogramVec

	// AuthEvents counts authentication events by action and outcome.
	AuthEvents *prometheus.CounterVec

	// SessionsActive gauges the number of live sessions.
	SessionsActive prometheus.Gauge

	// CSRFRejections counts requests rejected by CSRF verification.
	CSRFRejections prometheus.Counter

	// ProductDeletes counts product deletions by mode (soft or hard).
	ProductDeletes *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meridian",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "meridian",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		AuthEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meridian",
			Name:      "auth_events_total",
			Help:      "Authentication events by action and outcome.",
		}, []string{"action", "outcome"}),
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "meridian",
			Name:      "sessions_active",
			Help:      "Number of live sessions.",
		}),
		CSRFRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "meridian",
			Name:      "csrf_rejections_total",
			Help:      "Requests rejected by CSRF verification.",
		}),
		ProductDeletes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meridian",
			Name:      "product_deletes_total",
			Help:      "Product deletions by mode.",
		}, []string{"mode"}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordAuthEvent records one authentication event.
func (m *Metrics) RecordAuthEvent(action string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.AuthEvents.WithLabelValues(action, outcome).Inc()
}
