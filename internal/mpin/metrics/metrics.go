package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for MPIN evaluation. It never records the
// MPIN itself, only verdicts and reasons.
type Metrics struct {
	// Verdicts by strength
	Verdicts *prometheus.CounterVec

	// Detected reasons, one increment per reason per evaluation
	Reasons *prometheus.CounterVec

	// Single evaluation latency
	EvaluateLatency prometheus.Histogram

	// Candidates per batch request
	BatchSize prometheus.Histogram
}

// New creates the evaluation metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pinguard_mpin_verdicts_total",
			Help: "Total MPIN evaluations by verdict",
		}, []string{"verdict"}),

		Reasons: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pinguard_mpin_reasons_total",
			Help: "Total reasons reported by MPIN evaluations",
		}, []string{"reason"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pinguard_mpin_evaluate_duration_seconds",
			Help:    "Duration of a single MPIN evaluation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pinguard_mpin_batch_size",
			Help:    "Number of candidates per batch evaluation",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		}),
	}
}

// ObserveEvaluation records a verdict, its reasons and the evaluation duration.
func (m *Metrics) ObserveEvaluation(verdict string, reasons []string, d time.Duration) {
	if m == nil {
		return
	}
	m.Verdicts.WithLabelValues(verdict).Inc()
	for _, r := range reasons {
		m.Reasons.WithLabelValues(r).Inc()
	}
	m.EvaluateLatency.Observe(d.Seconds())
}

// ObserveBatchSize records the number of candidates in a batch.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}
