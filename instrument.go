package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeOK      = "ok"
	outcomeUnknown = "unknown_command"
)

// bridgeMetrics instruments command invocations. It lives on its own
// registry so tests can build as many as they like.
type bridgeMetrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newBridgeMetrics() *bridgeMetrics {
	m := &bridgeMetrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sysmon_command_invocations_total",
				Help: "Total number of bridge command invocations",
			},
			[]string{"command", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sysmon_command_duration_seconds",
				Help:    "Time spent refreshing and reading counters per command",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}
	m.registry.MustRegister(m.invocations, m.duration)
	return m
}

func (m *bridgeMetrics) observe(command, outcome string, took time.Duration) {
	if outcome == outcomeUnknown {
		// Keep label cardinality bounded; arbitrary names come from clients.
		command = "other"
	}
	m.invocations.WithLabelValues(command, outcome).Inc()
	if outcome == outcomeOK {
		m.duration.WithLabelValues(command).Observe(took.Seconds())
	}
}

func (m *bridgeMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
