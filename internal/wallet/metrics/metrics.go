// Package metrics provides Prometheus metrics for wallet sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains wallet session metrics.
type Metrics struct {
	// Connect attempts by outcome (connected, rejected, timeout, failed)
	ConnectsTotal *prometheus.CounterVec

	// First-time wallet connections
	NewWalletsTotal prometheus.Counter

	// Handshake latency
	ConnectDurationSeconds prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
// Construct once per process; a nil *Metrics is a no-op recorder.
func New() *Metrics {
	return &Metrics{
		ConnectsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "airspace_wallet_connects_total",
			Help: "Total wallet connect attempts by outcome",
		}, []string{"outcome"}),

		NewWalletsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "airspace_wallet_new_wallets_total",
			Help: "Total first-time wallet connections",
		}),

		ConnectDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "airspace_wallet_connect_duration_seconds",
			Help:    "Duration of wallet connect handshakes",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// RecordConnect records one connect attempt outcome.
func (m *Metrics) RecordConnect(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.ConnectsTotal.WithLabelValues(outcome).Inc()
	m.ConnectDurationSeconds.Observe(seconds)
}

// RecordNewWallet records a first-time wallet connection.
func (m *Metrics) RecordNewWallet() {
	if m == nil {
		return
	}
	m.NewWalletsTotal.Inc()
}
