package identity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts how each outgoing request got its identity.
type Metrics struct {
	Injections  *prometheus.CounterVec
	Unavailable prometheus.Counter
}

// NewMetrics registers the injector metrics with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Injections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewapp_identity_injections_total",
			Help: "Outgoing requests stamped with an identity, by source (cache, wait, anonymous)",
		}, []string{"source"}),
		Unavailable: factory.NewCounter(prometheus.CounterOpts{
			Name: "reviewapp_identity_unavailable_total",
			Help: "Requests sent anonymously because no identity arrived within the wait timeout",
		}),
	}
}

func (m *Metrics) observe(source string) {
	if m == nil {
		return
	}
	m.Injections.WithLabelValues(source).Inc()
	if source == SourceAnonymous {
		m.Unavailable.Inc()
	}
}
