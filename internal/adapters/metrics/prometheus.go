// Package metrics implements the metrics port with Prometheus collectors and
// serves them on a small ops HTTP server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/example/dicebot/internal/ports/secondary"
)

const namespace = "dicebot"

// PrometheusMetrics implements secondary.Metrics.
type PrometheusMetrics struct {
	clicks     *prometheus.CounterVec
	steps      *prometheus.HistogramVec
	stepErrors *prometheus.CounterVec
	reaped     *prometheus.CounterVec
	delays     prometheus.Histogram
	purged     prometheus.Counter
}

// NewPrometheusMetrics registers the collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		clicks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      "Button clicks handled, by command kind and outcome.",
		}, []string{"kind", "outcome"}),
		steps: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Duration of click orchestration steps.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"step"}),
		stepErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_failures_total",
			Help:      "Failed click orchestration steps.",
		}, []string{"step"}),
		reaped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reap_decisions_total",
			Help:      "Reap decisions for stale button messages, by action.",
		}, []string{"action"}),
		delays: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replacement_delay_seconds",
			Help:      "Time replacement messages waited for the minimum interval.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		purged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tombstones_purged_total",
			Help:      "Tombstoned message records purged.",
		}),
	}
}

func (m *PrometheusMetrics) ClickHandled(kind, outcome string) {
	m.clicks.WithLabelValues(kind, outcome).Inc()
}

func (m *PrometheusMetrics) StepObserved(step string, d time.Duration, failed bool) {
	m.steps.WithLabelValues(step).Observe(d.Seconds())
	if failed {
		m.stepErrors.WithLabelValues(step).Inc()
	}
}

func (m *PrometheusMetrics) MessagesReaped(action string, n int) {
	m.reaped.WithLabelValues(action).Add(float64(n))
}

func (m *PrometheusMetrics) ThrottleDelayed(d time.Duration) {
	m.delays.Observe(d.Seconds())
}

func (m *PrometheusMetrics) TombstonesPurged(n int64) {
	m.purged.Add(float64(n))
}

// Nop discards all metrics. Used by one-shot commands.
type Nop struct{}

func (Nop) ClickHandled(string, string) {}
func (Nop) StepObserved(string, time.Duration, bool) {}
func (Nop) MessagesReaped(string, int) {}
func (Nop) ThrottleDelayed(time.Duration) {}
func (Nop) TombstonesPurged(int64) {}

var (
	_ secondary.Metrics = (*PrometheusMetrics)(nil)
	_ secondary.Metrics = Nop{}
)
