package algorithms

import (
	"sort"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
)

type testEdge struct {
	source, target int64
	weight         float64
}

// buildUndirected builds an undirected CSR graph. Weights are stored only
// when weighted is set.
func buildUndirected(t *testing.T, nodeCount int64, edges []testEdge, weighted bool) *graph.CSRGraph {
	t.Helper()
	b := graph.NewBuilder(nodeCount, graph.BuilderOptions{Orientation: graph.Undirected, Weighted: weighted})
	for _, e := range edges {
		w := e.weight
		if w == 0 {
			w = 1.0
		}
		if err := b.AddWeightedRelationship(e.source, e.target, w); err != nil {
			t.Fatalf("Failed to add relationship %d-%d: %v", e.source, e.target, err)
		}
	}
	return b.Build()
}

// buildDirected builds a natural-orientation, unweighted CSR graph.
func buildDirected(t *testing.T, nodeCount int64, edges [][2]int64) *graph.CSRGraph {
	t.Helper()
	b := graph.NewBuilder(nodeCount, graph.BuilderOptions{Orientation: graph.Natural})
	for _, e := range edges {
		if err := b.AddRelationship(e[0], e[1]); err != nil {
			t.Fatalf("Failed to add relationship %d->%d: %v", e[0], e[1], err)
		}
	}
	return b.Build()
}

func unitEdges(pairs ...[2]int64) []testEdge {
	edges := make([]testEdge, len(pairs))
	for i, p := range pairs {
		edges[i] = testEdge{source: p[0], target: p[1], weight: 1.0}
	}
	return edges
}

// scenarioNames labels the nodes of the fifteen-node community graph.
var scenarioNames = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "x"}

// communityGraph returns the fifteen-node graph with three dense regions.
// When weighted, the e-f relationship weighs 0.01.
func communityGraph(t *testing.T, weighted bool) *graph.CSRGraph {
	t.Helper()
	index := make(map[string]int64, len(scenarioNames))
	for i, name := range scenarioNames {
		index[name] = int64(i)
	}
	pairs := "a-b a-d a-f b-d b-x b-g b-e c-x c-f d-k e-x e-f e-h f-g g-h h-i h-j i-k j-k j-m j-n k-m k-l l-n m-n"
	var edges []testEdge
	for _, pair := range strings.Fields(pairs) {
		ends := strings.Split(pair, "-")
		w := 1.0
		if weighted && pair == "e-f" {
			w = 0.01
		}
		edges = append(edges, testEdge{source: index[ends[0]], target: index[ends[1]], weight: w})
	}
	return buildUndirected(t, int64(len(scenarioNames)), edges, weighted)
}

// twoCliques returns two 4-cliques joined by a bridge plus one isolated
// node (index 8).
func twoCliques(t *testing.T) *graph.CSRGraph {
	t.Helper()
	return buildUndirected(t, 9, unitEdges(
		[2]int64{0, 1}, [2]int64{0, 2}, [2]int64{0, 3}, [2]int64{1, 2}, [2]int64{1, 3}, [2]int64{2, 3},
		[2]int64{3, 4},
		[2]int64{4, 5}, [2]int64{4, 6}, [2]int64{4, 7}, [2]int64{5, 6}, [2]int64{5, 7}, [2]int64{6, 7},
	), false)
}

// groupsOf renders a community assignment as sorted groups of node names,
// independent of the ids used.
func groupsOf(ids []int64, names []string) [][]string {
	byID := make(map[int64][]string)
	for node, id := range ids {
		name := names[node]
		byID[id] = append(byID[id], name)
	}
	groups := make([][]string, 0, len(byID))
	for _, members := range byID {
		sort.Strings(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

func nodeNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	return names
}

func splitGroups(spec string) [][]string {
	var groups [][]string
	for _, g := range strings.Split(spec, " ") {
		members := strings.Split(g, ",")
		sort.Strings(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

func sameGroups(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.Join(a[i], ",") != strings.Join(b[i], ",") {
			return false
		}
	}
	return true
}
