// Package metrics provides Prometheus metrics for credential operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all credential service metrics.
type Metrics struct {
	// Operation counters labeled by backend (remote, local), operation and outcome
	OperationsTotal *prometheus.CounterVec

	// Issuer API latency by operation
	BackendDurationSeconds *prometheus.HistogramVec

	// Fallback issuance after a failed remote write
	FallbackIssuesTotal prometheus.Counter
}

// New creates a Metrics instance registered on the default registry.
// Construct once per process; services treat a nil *Metrics as disabled.
func New() *Metrics {
	return &Metrics{
		OperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "airspace_credential_operations_total",
			Help: "Total credential operations by backend, operation and outcome",
		}, []string{"backend", "operation", "outcome"}),

		BackendDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "airspace_credential_backend_duration_seconds",
			Help:    "Duration of credential backend calls by operation",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),

		FallbackIssuesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "airspace_credential_fallback_issues_total",
			Help: "Total credentials issued by the local backend after a remote failure",
		}),
	}
}

// RecordOperation records one credential operation outcome.
func (m *Metrics) RecordOperation(backend, operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.OperationsTotal.WithLabelValues(backend, operation, outcome).Inc()
}

// ObserveBackendDuration records the duration of one backend call.
func (m *Metrics) ObserveBackendDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.BackendDurationSeconds.WithLabelValues(operation).Observe(seconds)
}

// RecordFallbackIssue records a local issuance performed after a remote failure.
func (m *Metrics) RecordFallbackIssue() {
	if m == nil {
		return
	}
	m.FallbackIssuesTotal.Inc()
}
