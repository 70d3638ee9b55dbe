// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	Interactions     *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	MediaPurgeErrors prometheus.Counter
	RateLimited      prometheus.Counter
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Interactions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_interactions_total",
			Help: "Favorite, unfavorite, flag and view events.",
		}, []string{"kind"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ads_lifecycle_transitions_total",
			Help: "Ad lifecycle transitions.",
		}, []string{"transition"}),
		MediaPurgeErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "ads_media_purge_failures_total",
			Help: "Remote media objects that could not be destroyed after a hard delete.",
		}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Interaction(kind string) {
	if m != nil {
		m.Interactions.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Transition(name string) {
	if m != nil {
		m.Transitions.WithLabelValues(name).Inc()
	}
}

// TransitionN records n transitions at once (batch expiry).
func (m *Metrics) TransitionN(name string, n int64) {
	if m != nil && n > 0 {
		m.Transitions.WithLabelValues(name).Add(float64(n))
	}
}

func (m *Metrics) PurgeFailed() {
	if m != nil {
		m.MediaPurgeErrors.Inc()
	}
}
