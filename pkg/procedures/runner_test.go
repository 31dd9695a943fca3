package procedures

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/dd0wney/cluso-graphalgo/pkg/algorithms"
	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/metrics"
)

const testGraph = "cliques"

// cliqueStore holds two 4-cliques {0..3} and {4..7} joined by 0-4, plus
// the isolated node 8. Every relationship has weight 1.
func cliqueStore(t *testing.T) *graph.GraphStore {
	t.Helper()
	store := graph.NewGraphStore(9)
	add := func(s, t2 int64) {
		require.NoError(t, store.AddRelationship(s, t2, map[string]float64{"weight": 1}))
	}
	for _, base := range []int64{0, 4} {
		for i := base; i < base+4; i++ {
			for j := i + 1; j < base+4; j++ {
				add(i, j)
			}
		}
	}
	add(0, 4)
	return store
}

type testRunner struct {
	*Runner
	store    *graph.GraphStore
	spans    *tracetest.SpanRecorder
	registry *metrics.Registry
}

func newTestRunner(t *testing.T) *testRunner {
	t.Helper()
	catalog := graph.NewCatalog()
	store := cliqueStore(t)
	require.NoError(t, catalog.Set(testGraph, store))

	spans := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	registry := metrics.NewRegistry()
	runner := NewRunner(catalog)
	runner.Logger = logging.NewNopLogger()
	runner.Metrics = registry
	runner.Tracer = provider.Tracer("procedures-test")
	return &testRunner{Runner: runner, store: store, spans: spans, registry: registry}
}

func louvainRequest(mode Mode) LouvainRequest {
	cfg := algorithms.DefaultLouvainConfig()
	cfg.Concurrency = 1
	return LouvainRequest{Request: Request{GraphName: testGraph, Mode: mode}, Config: cfg}
}

func wccRequest(mode Mode) WccRequest {
	cfg := algorithms.DefaultWccConfig()
	cfg.Concurrency = 1
	return WccRequest{Request: Request{GraphName: testGraph, Mode: mode}, Config: cfg}
}

func metricValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Counter != nil {
		return out.Counter.GetValue()
	}
	return out.Gauge.GetValue()
}

func spanAttribute(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func TestRunner_LouvainStream(t *testing.T) {
	r := newTestRunner(t)

	result, err := r.Louvain(context.Background(), louvainRequest(ModeStream))
	require.NoError(t, err)
	require.Len(t, result.Rows, 9)

	ids := make([]int64, 9)
	for i, row := range result.Rows {
		assert.Equal(t, int64(i), row.NodeID)
		assert.Nil(t, row.IntermediateCommunityIDs)
		ids[i] = row.CommunityID
	}
	for node := 1; node < 4; node++ {
		assert.Equal(t, ids[0], ids[node], "node %d joins the first clique", node)
	}
	for node := 5; node < 8; node++ {
		assert.Equal(t, ids[4], ids[node], "node %d joins the second clique", node)
	}
	assert.NotEqual(t, ids[0], ids[4])
	assert.NotEqual(t, ids[0], ids[8])
	assert.NotEqual(t, ids[4], ids[8])

	s := result.Summary
	assert.Equal(t, int64(3), s.CommunityCount)
	assert.Equal(t, int64(9), s.NodeCount)
	assert.Greater(t, s.Modularity, 0.0)
	assert.Len(t, s.Modularities, s.Levels)
	require.NotNil(t, s.CommunityDistribution)
	assert.Equal(t, int64(1), s.CommunityDistribution.Min)
	assert.Equal(t, int64(4), s.CommunityDistribution.Max)
	_, err = uuid.Parse(s.JobID)
	assert.NoError(t, err, "job id is a uuid")

	spans := r.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "graphalgo.louvain", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	jobID, ok := spanAttribute(spans[0], "graphalgo.job_id")
	assert.True(t, ok)
	assert.Equal(t, s.JobID, jobID)

	assert.Equal(t, 1.0, metricValue(t, r.registry.AlgorithmRunsTotal.WithLabelValues("louvain", "stream", metrics.StatusSuccess)))
	assert.Equal(t, 0.0, metricValue(t, r.registry.AlgorithmRunsInFlight.WithLabelValues("louvain")))
}

func TestRunner_LouvainIntermediateCommunities(t *testing.T) {
	r := newTestRunner(t)
	req := louvainRequest(ModeStream)
	req.Config.IncludeIntermediateCommunities = true

	result, err := r.Louvain(context.Background(), req)
	require.NoError(t, err)
	for _, row := range result.Rows {
		require.Len(t, row.IntermediateCommunityIDs, result.Summary.Levels)
		assert.Equal(t, row.CommunityID, row.IntermediateCommunityIDs[len(row.IntermediateCommunityIDs)-1])
	}
}

func TestRunner_Stats(t *testing.T) {
	r := newTestRunner(t)

	result, err := r.WCC(context.Background(), wccRequest(ModeStats))
	require.NoError(t, err)
	assert.Nil(t, result.Rows)
	assert.Equal(t, int64(2), result.Summary.CommunityCount)
	assert.Equal(t, int64(0), result.Summary.PropertiesWritten)
	require.NotNil(t, result.Summary.CommunityDistribution)
	assert.Equal(t, int64(8), result.Summary.CommunityDistribution.Max)
	assert.InDelta(t, 4.5, result.Summary.CommunityDistribution.Mean, 1e-9)
}

func TestRunner_Mutate(t *testing.T) {
	r := newTestRunner(t)
	req := wccRequest(ModeMutate)
	req.WriteProperty = "component"

	result, err := r.WCC(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(9), result.Summary.PropertiesWritten)

	component, err := r.store.NodeProperty("component")
	require.NoError(t, err)
	for node := int64(0); node < 8; node++ {
		id, ok := component.Value(node)
		require.True(t, ok)
		assert.Equal(t, int64(0), id)
	}
	id, _ := component.Value(8)
	assert.Equal(t, int64(8), id)
	assert.Equal(t, 9.0, metricValue(t, r.registry.WrittenPropertiesTotal.WithLabelValues("wcc", "mutate")))

	// the mutated property can seed the next run
	seeded := wccRequest(ModeStream)
	seeded.Config.SeedProperty = "component"
	result, err = r.WCC(context.Background(), seeded)
	require.NoError(t, err)
	assert.Equal(t, int64(8), result.Rows[8].CommunityID)

	_, err = r.WCC(context.Background(), req)
	assert.ErrorIs(t, err, algorithms.ErrInvalidConfig, "mutating an existing property")
}

func TestRunner_SeededWcc(t *testing.T) {
	r := newTestRunner(t)
	seeds := graph.NewNodeProperty(9)
	seeds.Set(4, 42)
	require.NoError(t, r.store.SetNodeProperty("seed", seeds))

	req := wccRequest(ModeStream)
	req.Config.SeedProperty = "seed"
	result, err := r.WCC(context.Background(), req)
	require.NoError(t, err)

	for node := 0; node < 8; node++ {
		assert.Equal(t, int64(42), result.Rows[node].CommunityID, "node %d", node)
	}
	assert.NotEqual(t, int64(42), result.Rows[8].CommunityID)
}

func TestRunner_Write(t *testing.T) {
	r := newTestRunner(t)
	var buf bytes.Buffer
	r.Exporter = NewWriterExporter(&buf, false)

	req := wccRequest(ModeWrite)
	req.WriteProperty = "component"
	result, err := r.WCC(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(9), result.Summary.PropertiesWritten)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "nodeId,component", lines[0])
	assert.Equal(t, "0,0", lines[1])
	assert.Equal(t, "8,8", lines[9])
}

func TestRunner_WriteCompressed(t *testing.T) {
	r := newTestRunner(t)
	var buf bytes.Buffer
	r.Exporter = NewWriterExporter(&buf, true)

	req := louvainRequest(ModeWrite)
	req.WriteProperty = "community"
	req.Config.IncludeIntermediateCommunities = true
	_, err := r.Louvain(context.Background(), req)
	require.NoError(t, err)

	plain, err := io.ReadAll(snappy.NewReader(&buf))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(plain)), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "nodeId,community,intermediateCommunityIds", lines[0])
}

func TestRunner_WriteWithoutExporter(t *testing.T) {
	r := newTestRunner(t)
	req := wccRequest(ModeWrite)
	req.WriteProperty = "component"

	_, err := r.WCC(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoExporter)
	assert.Equal(t, 1.0, metricValue(t, r.registry.AlgorithmRunsTotal.WithLabelValues("wcc", "write", metrics.StatusError)))
}

func TestRunner_ConfigErrors(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"unknown graph", func() error {
			req := wccRequest(ModeStream)
			req.GraphName = "nope"
			_, err := r.WCC(ctx, req)
			return err
		}},
		{"write without property", func() error {
			_, err := r.WCC(ctx, wccRequest(ModeWrite))
			return err
		}},
		{"threshold without weight", func() error {
			req := wccRequest(ModeStream)
			threshold := 0.5
			req.Config.Threshold = &threshold
			_, err := r.WCC(ctx, req)
			return err
		}},
		{"seed with consecutive ids", func() error {
			req := louvainRequest(ModeStream)
			req.Config.SeedProperty = "seed"
			req.Config.ConsecutiveIDs = true
			_, err := r.Louvain(ctx, req)
			return err
		}},
		{"unknown orientation", func() error {
			req := louvainRequest(ModeStream)
			req.Orientation = "SIDEWAYS"
			_, err := r.Louvain(ctx, req)
			return err
		}},
		{"pagerank mutate", func() error {
			cfg := algorithms.DefaultPageRankConfig()
			_, err := r.PageRank(ctx, PageRankRequest{Request: Request{GraphName: testGraph, Mode: ModeMutate, WriteProperty: "rank"}, Config: cfg})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), algorithms.ErrInvalidConfig)
		})
	}
}

func TestRunner_MissingProperties(t *testing.T) {
	r := newTestRunner(t)

	weighted := louvainRequest(ModeStream)
	weighted.Config.RelationshipWeightProperty = "cost"
	_, err := r.Louvain(context.Background(), weighted)
	require.ErrorIs(t, err, algorithms.ErrInvalidConfig)
	assert.ErrorIs(t, err, graph.ErrPropertyNotFound)
	assert.Contains(t, err.Error(), "cost")

	seeded := louvainRequest(ModeStream)
	seeded.Config.SeedProperty = "community"
	_, err = r.Louvain(context.Background(), seeded)
	require.ErrorIs(t, err, algorithms.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "community")
}

func TestRunner_Cancelled(t *testing.T) {
	r := newTestRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Louvain(ctx, louvainRequest(ModeStream))
	require.Error(t, err)
	assert.True(t, errors.Is(err, algorithms.ErrAborted) || errors.Is(err, context.Canceled), "got %v", err)

	spans := r.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, 1.0, metricValue(t, r.registry.AlgorithmRunsTotal.WithLabelValues("louvain", "stream", metrics.StatusAborted)))
}

func TestRunner_LabelPropagation(t *testing.T) {
	r := newTestRunner(t)
	cfg := algorithms.DefaultLabelPropagationConfig()
	cfg.ConsecutiveIDs = true

	result, err := r.LabelPropagation(context.Background(), LabelPropagationRequest{
		Request: Request{GraphName: testGraph, Mode: ModeStream},
		Config:  cfg,
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 9)
	assert.Equal(t, result.Rows[1].CommunityID, result.Rows[2].CommunityID)
	assert.Equal(t, result.Rows[5].CommunityID, result.Rows[6].CommunityID)
	assert.True(t, result.Summary.DidConverge)
}

func TestRunner_PageRank(t *testing.T) {
	r := newTestRunner(t)
	var buf bytes.Buffer
	r.Exporter = NewWriterExporter(&buf, false)
	cfg := algorithms.DefaultPageRankConfig()
	cfg.Concurrency = 1

	streamed, err := r.PageRank(context.Background(), PageRankRequest{
		Request: Request{GraphName: testGraph, Mode: ModeStream, Orientation: "UNDIRECTED"},
		Config:  cfg,
	})
	require.NoError(t, err)
	require.Len(t, streamed.Scores, 9)
	// the bridge endpoints collect the most rank
	assert.Greater(t, streamed.Scores[0].Score, streamed.Scores[1].Score)
	assert.Nil(t, streamed.Rows)

	written, err := r.PageRank(context.Background(), PageRankRequest{
		Request: Request{GraphName: testGraph, Mode: ModeWrite, WriteProperty: "rank"},
		Config:  cfg,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), written.Summary.PropertiesWritten)
	assert.True(t, strings.HasPrefix(buf.String(), "nodeId,rank\n"))
}
