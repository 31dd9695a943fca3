package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initParallelMetrics() {
	r.ParallelTasksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphalgo_parallel_tasks_total",
			Help: "Total number of partition tasks executed",
		},
		[]string{"phase"},
	)

	r.ParallelTaskDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphalgo_parallel_task_duration_seconds",
			Help:    "Duration of a parallel phase across all partitions",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		},
		[]string{"phase"},
	)

	r.StaleProposalsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "graphalgo_local_moving_stale_proposals_total",
			Help: "Total number of parallel move proposals re-evaluated because their neighborhood changed",
		},
	)
}
