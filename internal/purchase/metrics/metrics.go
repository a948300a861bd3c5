// Package metrics provides Prometheus metrics for the purchase pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains purchase pipeline metrics.
type Metrics struct {
	// Completed runs by outcome (success, failed)
	RunsTotal *prometheus.CounterVec

	// Step failures by step name
	StepFailuresTotal *prometheus.CounterVec

	// End-to-end run duration
	RunDurationSeconds prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
// Construct once per process; a nil *Metrics is a no-op recorder.
func New() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "airspace_purchase_runs_total",
			Help: "Total purchase pipeline runs by outcome",
		}, []string{"outcome"}),

		StepFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "airspace_purchase_step_failures_total",
			Help: "Total purchase step failures by step",
		}, []string{"step"}),

		RunDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "airspace_purchase_run_duration_seconds",
			Help:    "End-to-end purchase pipeline duration",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}

// RecordRun records one finished run.
func (m *Metrics) RecordRun(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDurationSeconds.Observe(seconds)
}

// RecordStepFailure records a failure of the named step.
func (m *Metrics) RecordStepFailure(step string) {
	if m == nil {
		return
	}
	m.StepFailuresTotal.WithLabelValues(step).Inc()
}
