package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the rating module.
type Metrics struct {
	// Calculation latency by garaging state.
	CalculationDuration *prometheus.HistogramVec

	// Defaulted factor occurrences by factor name. A rising rate means a
	// lookup collaborator is degraded or the rating tables have gaps.
	DefaultedFactors *prometheus.CounterVec
}

// New creates and registers all rating metrics.
func New() *Metrics {
	return &Metrics{
		CalculationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lanewise_rating_calculation_duration_seconds",
			Help:    "Duration of premium calculations by state",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		}, []string{"state"}),

		DefaultedFactors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lanewise_rating_defaulted_factors_total",
			Help: "Total neutral-fallback factors used, by factor name",
		}, []string{"factor"}),
	}
}

// ObserveCalculation records one completed premium calculation.
func (m *Metrics) ObserveCalculation(state string, d time.Duration) {
	if m != nil {
		m.CalculationDuration.WithLabelValues(state).Observe(d.Seconds())
	}
}

// IncrementDefaultedFactor records a neutral fallback for the named factor.
func (m *Metrics) IncrementDefaultedFactor(factor string) {
	if m != nil {
		m.DefaultedFactors.WithLabelValues(factor).Inc()
	}
}
