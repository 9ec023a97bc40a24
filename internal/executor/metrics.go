// Package executor implements the Stage Executor (C5): a bounded worker
// pool that drives one pipeline stage's per-item LLM calls with
// per-item timeouts, cross-provider fallback, and progress reporting.
package executor

import "github.com/prometheus/client_golang/prometheus"

// Metrics mirror the teacher's observability.metrics.go CounterVec/
// HistogramVec style, relabeled for the per-item stage-execution domain.
var (
	itemsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_items_processed_total",
			Help: "Total number of items processed by a pipeline stage, by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)
	itemDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stage_item_duration_seconds",
			Help:    "Per-item processing duration in seconds, by stage",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)
	fallbackUsedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stage_fallback_used_total",
			Help: "Total number of items that fell back to the secondary provider",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(itemsProcessedTotal)
	prometheus.MustRegister(itemDuration)
	prometheus.MustRegister(fallbackUsedTotal)
}
