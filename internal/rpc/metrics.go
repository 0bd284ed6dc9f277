package rpc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type serverMetrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	streamEvents *prometheus.CounterVec
}

// newServerMetrics builds a private registry so tests can run several
// servers side by side. droppedReminders is sampled lazily.
func newServerMetrics(droppedReminders func() float64) *serverMetrics {
	registry := prometheus.NewRegistry()
	m := &serverMetrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasklistd_rpc_requests_total",
			Help: "RPC requests by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tasklistd_rpc_request_duration_seconds",
			Help:    "RPC request latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		streamEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tasklistd_stream_events_total",
			Help: "Events written to streaming consumers by method.",
		}, []string{"method"}),
	}
	registry.MustRegister(m.requests, m.duration, m.streamEvents)
	if droppedReminders != nil {
		registry.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "tasklistd_reminder_events_dropped_total",
			Help: "Reminder events dropped on slow consumers.",
		}, droppedReminders))
	}
	return m
}

func (m *serverMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
