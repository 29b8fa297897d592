package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records rate limit decisions. A nil *Metrics is a no-op.
type Metrics struct {
	Allowed     *prometheus.CounterVec
	Denied      *prometheus.CounterVec
	StoreErrors *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Allowed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pinguard_ratelimit_allowed_total",
			Help: "Total number of requests allowed by the rate limiter",
		}, []string{"class"}),
		Denied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pinguard_ratelimit_denied_total",
			Help: "Total number of requests rejected with 429",
		}, []string{"class"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pinguard_ratelimit_store_errors_total",
			Help: "Total number of bucket store failures; requests are let through",
		}, []string{"class"}),
	}
}

func (m *Metrics) IncrementAllowed(class string) {
	if m == nil {
		return
	}
	m.Allowed.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementDenied(class string) {
	if m == nil {
		return
	}
	m.Denied.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementStoreErrors(class string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(class).Inc()
}
