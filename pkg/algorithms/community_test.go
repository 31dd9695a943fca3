package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
)

// twoTriangles returns A-B-C and D-E-F joined by B-E.
func twoTriangles(t *testing.T) *graph.CSRGraph {
	t.Helper()
	return buildUndirected(t, 6, unitEdges(
		[2]int64{0, 1}, [2]int64{1, 2}, [2]int64{0, 2},
		[2]int64{3, 4}, [2]int64{4, 5}, [2]int64{3, 5},
		[2]int64{1, 4},
	), false)
}

// TestLabelPropagation_SingleNode tests label propagation with single node
func TestLabelPropagation_SingleNode(t *testing.T) {
	result, err := LabelPropagation(context.Background(), buildDirected(t, 1, nil), DefaultLabelPropagationConfig(), nil)
	if err != nil {
		t.Fatalf("LabelPropagation failed: %v", err)
	}
	if len(result.Communities) != 1 {
		t.Errorf("Expected 1 community, got %d", len(result.Communities))
	}
	if result.Communities[0].Size != 1 {
		t.Errorf("Expected community size 1, got %d", result.Communities[0].Size)
	}
	if !result.DidConverge {
		t.Error("Expected a lone node to converge")
	}
}

// TestLabelPropagation_FullyConnected tests fully connected graph
func TestLabelPropagation_FullyConnected(t *testing.T) {
	var pairs [][2]int64
	for i := int64(0); i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			pairs = append(pairs, [2]int64{i, j})
		}
	}
	g := buildUndirected(t, 4, unitEdges(pairs...), false)

	result, err := LabelPropagation(context.Background(), g, DefaultLabelPropagationConfig(), nil)
	if err != nil {
		t.Fatalf("LabelPropagation failed: %v", err)
	}
	if len(result.Communities) != 1 {
		t.Errorf("Expected 1 community for fully connected graph, got %d", len(result.Communities))
	}
	if result.Communities[0].Size != 4 {
		t.Errorf("Expected community size 4, got %d", result.Communities[0].Size)
	}
}

// TestLabelPropagation_TwoClusters tests graph with clear community structure
func TestLabelPropagation_TwoClusters(t *testing.T) {
	result, err := LabelPropagation(context.Background(), twoTriangles(t), DefaultLabelPropagationConfig(), nil)
	if err != nil {
		t.Fatalf("LabelPropagation failed: %v", err)
	}

	want := []int64{1, 1, 1, 4, 4, 4}
	if !equalInt64s(result.NodeCommunity, want) {
		t.Errorf("Expected labels %v, got %v", want, result.NodeCommunity)
	}
	if result.Iterations != 2 || !result.DidConverge {
		t.Errorf("Expected convergence after 2 iterations, got %d (converged %v)", result.Iterations, result.DidConverge)
	}
	if result.Modularity <= 0 {
		t.Errorf("Expected positive modularity, got %f", result.Modularity)
	}
}

// TestLabelPropagation_Weights tests that heavier relationships win votes
func TestLabelPropagation_Weights(t *testing.T) {
	edges := []testEdge{{0, 1, 1.0}, {1, 2, 5.0}}

	weighted, err := LabelPropagation(context.Background(), buildUndirected(t, 3, edges, true), DefaultLabelPropagationConfig(), nil)
	if err != nil {
		t.Fatalf("LabelPropagation failed: %v", err)
	}
	if !equalInt64s(weighted.NodeCommunity, []int64{2, 2, 2}) {
		t.Errorf("Expected the heavy side to win, got %v", weighted.NodeCommunity)
	}

	unweighted, err := LabelPropagation(context.Background(), buildUndirected(t, 3, edges, false), DefaultLabelPropagationConfig(), nil)
	if err != nil {
		t.Fatalf("LabelPropagation failed: %v", err)
	}
	if !equalInt64s(unweighted.NodeCommunity, []int64{1, 1, 1}) {
		t.Errorf("Expected ties to keep the current label, got %v", unweighted.NodeCommunity)
	}
}

// TestLabelPropagation_Seeded tests that seeded labels carry into the result
func TestLabelPropagation_Seeded(t *testing.T) {
	seeds := graph.NewNodeProperty(6)
	for node := int64(3); node < 6; node++ {
		seeds.Set(node, 42)
	}

	result, err := LabelPropagation(context.Background(), twoTriangles(t), DefaultLabelPropagationConfig(), seeds)
	if err != nil {
		t.Fatalf("LabelPropagation failed: %v", err)
	}
	for node := 3; node < 6; node++ {
		if result.NodeCommunity[node] != 42 {
			t.Errorf("Node %d: expected seeded community 42, got %d", node, result.NodeCommunity[node])
		}
	}
	// unseeded labels start above the largest seed
	if result.NodeCommunity[0] <= 42 {
		t.Errorf("Expected a fresh id above 42, got %d", result.NodeCommunity[0])
	}
}

// TestLabelPropagation_ConsecutiveIDs tests dense community ids
func TestLabelPropagation_ConsecutiveIDs(t *testing.T) {
	cfg := DefaultLabelPropagationConfig()
	cfg.ConsecutiveIDs = true

	result, err := LabelPropagation(context.Background(), twoTriangles(t), cfg, nil)
	if err != nil {
		t.Fatalf("LabelPropagation failed: %v", err)
	}
	if !equalInt64s(result.NodeCommunity, []int64{0, 0, 0, 1, 1, 1}) {
		t.Errorf("Expected consecutive ids, got %v", result.NodeCommunity)
	}

	if _, err := LabelPropagation(context.Background(), twoTriangles(t), cfg, graph.NewNodeProperty(6)); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for seeds with consecutive ids, got %v", err)
	}
}

// TestLabelPropagation_MaxIterations tests the iteration cap
func TestLabelPropagation_MaxIterations(t *testing.T) {
	cfg := DefaultLabelPropagationConfig()
	cfg.MaxIterations = 1

	result, err := LabelPropagation(context.Background(), twoTriangles(t), cfg, nil)
	if err != nil {
		t.Fatalf("LabelPropagation failed: %v", err)
	}
	if result.Iterations != 1 || result.DidConverge {
		t.Errorf("Expected one unconverged iteration, got %d (converged %v)", result.Iterations, result.DidConverge)
	}
}

// TestLabelPropagation_Cancelled tests context cancellation
func TestLabelPropagation_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LabelPropagation(ctx, twoTriangles(t), DefaultLabelPropagationConfig(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// TestClusteringCoefficient_EmptyGraph tests clustering coefficient on empty graph
func TestClusteringCoefficient_EmptyGraph(t *testing.T) {
	avg, err := AverageClusteringCoefficient(context.Background(), buildDirected(t, 0, nil))
	if err != nil {
		t.Fatalf("AverageClusteringCoefficient failed: %v", err)
	}
	if avg != 0.0 {
		t.Errorf("Expected 0 for empty graph, got %f", avg)
	}
}

// TestClusteringCoefficient_TriangleWithTail tests local and average coefficients
func TestClusteringCoefficient_TriangleWithTail(t *testing.T) {
	g := buildUndirected(t, 4, unitEdges([2]int64{0, 1}, [2]int64{1, 2}, [2]int64{2, 0}, [2]int64{2, 3}), false)

	local, err := LocalClusteringCoefficient(context.Background(), g)
	if err != nil {
		t.Fatalf("LocalClusteringCoefficient failed: %v", err)
	}
	want := []float64{1, 1, 1.0 / 3.0, 0}
	for node, w := range want {
		if math.Abs(local[node]-w) > 0.001 {
			t.Errorf("Node %d: expected coefficient %f, got %f", node, w, local[node])
		}
	}

	avg, err := AverageClusteringCoefficient(context.Background(), g)
	if err != nil {
		t.Fatalf("AverageClusteringCoefficient failed: %v", err)
	}
	if math.Abs(avg-(7.0/3.0)/4.0) > 0.001 {
		t.Errorf("Expected average coefficient %f, got %f", (7.0/3.0)/4.0, avg)
	}
}
