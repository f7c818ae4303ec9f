// Package metrics defines the Prometheus collectors of the trash manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Trash contains Prometheus metrics for the trash manager.
type Trash struct {
	// Lifecycle operations
	operations *prometheus.CounterVec
	vetoes     prometheus.Counter

	// Purge sweeps
	purged        prometheus.Counter
	purgeRuns     *prometheus.CounterVec
	purgeDuration prometheus.Histogram
}

// NewTrash creates the trash collectors and registers them with reg. A nil
// reg registers with the default Prometheus registry.
func NewTrash(reg prometheus.Registerer) *Trash {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Trash{
		operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recyclebin_operations_total",
				Help: "Total number of throw and restore operations",
			},
			[]string{"operation", "result"},
		),

		vetoes: f.NewCounter(
			prometheus.CounterOpts{
				Name: "recyclebin_throw_vetoes_total",
				Help: "Total number of throws cancelled by a pre-throw hook",
			},
		),

		purged: f.NewCounter(
			prometheus.CounterOpts{
				Name: "recyclebin_purged_items_total",
				Help: "Total number of items permanently deleted by purge sweeps",
			},
		),

		purgeRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recyclebin_purge_runs_total",
				Help: "Total number of purge sweeps",
			},
			[]string{"result"},
		),

		purgeDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recyclebin_purge_duration_seconds",
				Help:    "Duration of purge sweeps in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
			},
		),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordThrow records a throw attempt.
func (m *Trash) RecordThrow(err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues("throw", result(err)).Inc()
}

// RecordRestore records a restore attempt.
func (m *Trash) RecordRestore(err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues("restore", result(err)).Inc()
}

// RecordVeto records a throw cancelled by a hook.
func (m *Trash) RecordVeto() {
	if m == nil {
		return
	}
	m.vetoes.Inc()
}

// RecordPurge records a finished sweep that deleted count items.
func (m *Trash) RecordPurge(count int, seconds float64, err error) {
	if m == nil {
		return
	}
	m.purged.Add(float64(count))
	m.purgeRuns.WithLabelValues(result(err)).Inc()
	m.purgeDuration.Observe(seconds)
}
