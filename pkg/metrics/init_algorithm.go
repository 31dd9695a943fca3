package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAlgorithmMetrics() {
	r.AlgorithmRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphalgo_algorithm_runs_total",
			Help: "Total number of algorithm runs",
		},
		[]string{"algorithm", "mode", "status"},
	)

	r.AlgorithmDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphalgo_algorithm_duration_seconds",
			Help:    "Algorithm computation duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600},
		},
		[]string{"algorithm"},
	)

	r.AlgorithmNodesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphalgo_algorithm_nodes_processed_total",
			Help: "Total number of nodes processed by algorithm runs",
		},
		[]string{"algorithm"},
	)

	r.AlgorithmRunsInFlight = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphalgo_algorithm_runs_in_flight",
			Help: "Number of algorithm runs currently executing",
		},
		[]string{"algorithm"},
	)

	r.CommunityCount = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphalgo_community_count",
			Help: "Number of communities or components found by the last run",
		},
		[]string{"algorithm"},
	)

	r.LouvainLevels = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphalgo_louvain_levels",
			Help:    "Number of hierarchy levels recorded per Louvain run",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 7, 10},
		},
	)

	r.LouvainModularity = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphalgo_modularity",
			Help: "Final modularity of the last Louvain run",
		},
	)

	r.LocalMovingIterations = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphalgo_local_moving_iterations",
			Help:    "Sweeps executed per local-moving phase",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		},
	)

	r.AlgorithmAbortedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphalgo_algorithm_aborted_total",
			Help: "Total number of runs stopped by cancellation",
		},
		[]string{"algorithm"},
	)

	r.WrittenPropertiesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphalgo_node_properties_written_total",
			Help: "Total number of node property values written or mutated",
		},
		[]string{"algorithm", "mode"},
	)
}
