// Package metrics exposes Prometheus instrumentation for algorithm runs.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Algorithm run metrics
	AlgorithmRunsTotal     *prometheus.CounterVec
	AlgorithmDuration      *prometheus.HistogramVec
	AlgorithmNodesTotal    *prometheus.CounterVec
	AlgorithmRunsInFlight  *prometheus.GaugeVec
	CommunityCount         *prometheus.GaugeVec
	LouvainLevels          prometheus.Histogram
	LouvainModularity      prometheus.Gauge
	LocalMovingIterations  prometheus.Histogram
	AlgorithmAbortedTotal  *prometheus.CounterVec
	WrittenPropertiesTotal *prometheus.CounterVec

	// Parallel execution metrics
	ParallelTasksTotal   *prometheus.CounterVec
	ParallelTaskDuration *prometheus.HistogramVec
	StaleProposalsTotal  prometheus.Counter

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	started  time.Time
	mu       sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		started:  time.Now(),
	}

	r.initAlgorithmMetrics()
	r.initParallelMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
