package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r.AlgorithmRunsTotal == nil || r.LouvainLevels == nil || r.ParallelTasksTotal == nil {
		t.Error("Registry metrics not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordRun(t *testing.T) {
	r := NewRegistry()

	r.RecordRun("louvain", "stream", StatusSuccess, 20*time.Millisecond, 15)
	r.RecordRun("louvain", "stream", StatusSuccess, 30*time.Millisecond, 15)
	r.RecordRun("louvain", "stats", StatusAborted, time.Millisecond, 15)

	if got := counterValue(t, r.AlgorithmRunsTotal.WithLabelValues("louvain", "stream", StatusSuccess)); got != 2 {
		t.Errorf("stream success runs = %v, want 2", got)
	}
	if got := counterValue(t, r.AlgorithmAbortedTotal.WithLabelValues("louvain")); got != 1 {
		t.Errorf("aborted runs = %v, want 1", got)
	}
	if got := counterValue(t, r.AlgorithmNodesTotal.WithLabelValues("louvain")); got != 45 {
		t.Errorf("nodes processed = %v, want 45", got)
	}

	histogram, err := r.AlgorithmDuration.GetMetricWithLabelValues("louvain")
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	var metric dto.Metric
	if err := histogram.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("Sample count = %v, want 3", metric.Histogram.GetSampleCount())
	}
}

func TestRunStarted(t *testing.T) {
	r := NewRegistry()
	done := r.RunStarted("wcc")
	if got := gaugeValue(t, r.AlgorithmRunsInFlight.WithLabelValues("wcc")); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	done()
	if got := gaugeValue(t, r.AlgorithmRunsInFlight.WithLabelValues("wcc")); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
}

func TestRecordLouvainAndCommunities(t *testing.T) {
	r := NewRegistry()
	r.RecordLouvain(2, 0.3816)
	r.RecordCommunities("louvain", 3)
	r.RecordLocalMoving(4, 7)

	if got := gaugeValue(t, r.LouvainModularity); got != 0.3816 {
		t.Errorf("modularity = %v, want 0.3816", got)
	}
	if got := gaugeValue(t, r.CommunityCount.WithLabelValues("louvain")); got != 3 {
		t.Errorf("community count = %v, want 3", got)
	}
	if got := counterValue(t, r.StaleProposalsTotal); got != 7 {
		t.Errorf("stale proposals = %v, want 7", got)
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.RecordRun("wcc", "stream", StatusSuccess, time.Second, 1)
	r.RecordCommunities("wcc", 1)
	r.RecordLouvain(1, 0.1)
	r.RecordLocalMoving(1, 0)
	r.RecordParallelPhase("link", 1, time.Millisecond)
	r.RecordWrittenProperties("wcc", "write", 1)
	r.UpdateSystemMetrics()
	r.RunStarted("wcc")()
}

func TestSystemMetrics(t *testing.T) {
	r := NewRegistry()
	r.UpdateSystemMetrics()

	if got := gaugeValue(t, r.GoRoutines); got < 1 {
		t.Errorf("goroutines = %v, want >= 1", got)
	}
	if got := gaugeValue(t, r.MemorySysBytes); got <= 0 {
		t.Errorf("memory sys = %v, want > 0", got)
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.RecordParallelPhase("local_moving", 1, time.Microsecond)
			}
		}()
	}
	wg.Wait()

	if got := counterValue(t, r.ParallelTasksTotal.WithLabelValues("local_moving")); got != 1000 {
		t.Errorf("Counter = %v, want 1000", got)
	}
}

func TestMetricNaming(t *testing.T) {
	r := NewRegistry()
	r.RecordRun("wcc", "stream", StatusSuccess, time.Millisecond, 1)

	metrics, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(metrics) == 0 {
		t.Fatal("No metrics registered")
	}

	names := make(map[string]bool)
	for _, m := range metrics {
		name := m.GetName()
		names[name] = true
		if !strings.HasPrefix(name, "graphalgo_") {
			t.Errorf("Metric %s does not have graphalgo_ prefix", name)
		}
	}
	for _, expected := range []string{"graphalgo_algorithm_runs_total", "graphalgo_uptime_seconds", "graphalgo_modularity"} {
		if !names[expected] {
			t.Errorf("Expected metric %s not found", expected)
		}
	}
}

func BenchmarkRecordRun(b *testing.B) {
	r := NewRegistry()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.RecordRun("louvain", "stream", StatusSuccess, time.Millisecond, 100)
	}
}
