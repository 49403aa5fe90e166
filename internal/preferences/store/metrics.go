package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	opDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reviewapp_preference_store_duration_ms",
		Help:    "Latency of preference store operations in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 100},
	}, []string{"backend", "op"})

	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewapp_preference_store_failures_total",
		Help: "Preference store operations that failed with a storage error",
	}, []string{"backend", "op"})

	fallbackActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reviewapp_preference_store_fallback_active",
		Help: "1 while the preference store serves from the in-memory fallback",
	})
)

func observe(backend, op string, start time.Time, err error) {
	opDurationMs.WithLabelValues(backend, op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	if err != nil {
		failuresTotal.WithLabelValues(backend, op).Inc()
	}
}
