package metrics

import (
	"runtime"
	"time"
)

// Run status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusAborted = "aborted"
)

// RunStarted marks an algorithm run as in flight. The returned function
// must be called when the run ends.
func (r *Registry) RunStarted(algorithm string) func() {
	if r == nil {
		return func() {}
	}
	g := r.AlgorithmRunsInFlight.WithLabelValues(algorithm)
	g.Inc()
	return g.Dec
}

// RecordRun records a finished algorithm run.
func (r *Registry) RecordRun(algorithm, mode, status string, duration time.Duration, nodeCount int64) {
	if r == nil {
		return
	}
	r.AlgorithmRunsTotal.WithLabelValues(algorithm, mode, status).Inc()
	r.AlgorithmDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	r.AlgorithmNodesTotal.WithLabelValues(algorithm).Add(float64(nodeCount))
	if status == StatusAborted {
		r.AlgorithmAbortedTotal.WithLabelValues(algorithm).Inc()
	}
}

// RecordCommunities records the community or component count of a run.
func (r *Registry) RecordCommunities(algorithm string, count int64) {
	if r == nil {
		return
	}
	r.CommunityCount.WithLabelValues(algorithm).Set(float64(count))
}

// RecordLouvain records the hierarchy outcome of a Louvain run.
func (r *Registry) RecordLouvain(levels int, modularity float64) {
	if r == nil {
		return
	}
	r.LouvainLevels.Observe(float64(levels))
	r.LouvainModularity.Set(modularity)
}

// RecordLocalMoving records the sweeps of one local-moving phase and how
// many parallel proposals had to be re-evaluated at commit time.
func (r *Registry) RecordLocalMoving(iterations int, staleProposals int64) {
	if r == nil {
		return
	}
	r.LocalMovingIterations.Observe(float64(iterations))
	r.StaleProposalsTotal.Add(float64(staleProposals))
}

// RecordParallelPhase records a barrier-joined phase of tasks.
func (r *Registry) RecordParallelPhase(phase string, tasks int, duration time.Duration) {
	if r == nil {
		return
	}
	r.ParallelTasksTotal.WithLabelValues(phase).Add(float64(tasks))
	r.ParallelTaskDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordWrittenProperties records node property values emitted by a run.
func (r *Registry) RecordWrittenProperties(algorithm, mode string, count int64) {
	if r == nil {
		return
	}
	r.WrittenPropertiesTotal.WithLabelValues(algorithm, mode).Add(float64(count))
}

// UpdateSystemMetrics samples runtime statistics.
func (r *Registry) UpdateSystemMetrics() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.UptimeSeconds.Set(time.Since(r.started).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
