// Package metrics exposes Prometheus instrumentation for vehicle lookups.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	degraded       *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lanewise_lookup_cache_hits_total",
			Help: "Lookup cache hits by source.",
		}, []string{"source"}),
		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lanewise_lookup_cache_misses_total",
			Help: "Lookup cache misses by source.",
		}, []string{"source"}),
		degraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lanewise_lookup_degraded_total",
			Help: "Lookups that degraded to neutral defaults, by source.",
		}, []string{"source"}),
		lookupDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lanewise_lookup_duration_seconds",
			Help:    "Provider lookup latency by source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
	}
}

func (m *Metrics) RecordCacheHit(source string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordCacheMiss(source string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordDegraded(source string) {
	if m == nil {
		return
	}
	m.degraded.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveLookupDuration(source string, seconds float64) {
	if m == nil {
		return
	}
	m.lookupDuration.WithLabelValues(source).Observe(seconds)
}
