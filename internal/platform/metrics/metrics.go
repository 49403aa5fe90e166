package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the adapter-surface Prometheus metrics.
type Metrics struct {
	NavigationOps    *prometheus.CounterVec
	DeepLinkFailures prometheus.Counter
	ThemeTransitions *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. A nil reg yields
// unregistered collectors, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NavigationOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewapp_navigation_operations_total",
			Help: "Navigation stack mutations by operation",
		}, []string{"op"}),
		DeepLinkFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "reviewapp_deep_link_decode_failures_total",
			Help: "Deep links that failed to decode and fell back to the root route",
		}),
		ThemeTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewapp_theme_transitions_total",
			Help: "Theme mode transitions by resulting mode",
		}, []string{"mode"}),
	}
}

// IncrementNavigation counts a push, pop, reset or open.
func (m *Metrics) IncrementNavigation(op string) {
	m.NavigationOps.WithLabelValues(op).Inc()
}

// IncrementDeepLinkFailures counts a deep link that was redirected to root.
func (m *Metrics) IncrementDeepLinkFailures() {
	m.DeepLinkFailures.Inc()
}

// IncrementThemeTransition counts a theme change to mode.
func (m *Metrics) IncrementThemeTransition(mode string) {
	m.ThemeTransitions.WithLabelValues(mode).Inc()
}

// Handler exposes the registry gathered by g over HTTP.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
