// Package metrics exposes Prometheus instrumentation for the bind flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	bindAttempts *prometheus.CounterVec
	bindDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		bindAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lanewise_bind_attempts_total",
			Help: "Bind attempts by outcome.",
		}, []string{"outcome"}),
		bindDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lanewise_bind_duration_seconds",
			Help:    "End-to-end bind latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) RecordAttempt(outcome string) {
	if m == nil {
		return
	}
	m.bindAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveBindDuration(seconds float64) {
	if m == nil {
		return
	}
	m.bindDuration.Observe(seconds)
}
