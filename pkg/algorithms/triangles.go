package algorithms

import (
	"context"
	"slices"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
)

// TriangleCountResult holds triangle counting results including per-node counts,
// global count, clustering coefficients, and top nodes by triangle participation.
type TriangleCountResult struct {
	PerNode                []int64
	GlobalCount            int64
	ClusteringCoefficients []float64
	TopNodes               []RankedNode
}

// CountTriangles counts triangles, treating every relationship as
// undirected. For each node u it checks the pairs (v, w) of u's neighbors;
// every triangle is counted once per participating node, so GlobalCount is
// sum(PerNode) / 3. Clustering coefficients are computed in the same pass.
func CountTriangles(ctx context.Context, g graph.Graph) (*TriangleCountResult, error) {
	n := g.NodeCount()

	// Undirected neighbor sets, sorted, without self-loops
	neighbors := make([][]int64, n)
	for node := int64(0); node < n; node++ {
		g.ForEachRelationship(node, unitWeight, func(s, t int64, _ float64) bool {
			if s != t {
				neighbors[s] = append(neighbors[s], t)
				neighbors[t] = append(neighbors[t], s)
			}
			return true
		})
	}
	for node := range neighbors {
		slices.Sort(neighbors[node])
		neighbors[node] = slices.Compact(neighbors[node])
	}

	perNode := make([]int64, n)
	coefficients := make([]float64, n)
	total := int64(0)
	for u := int64(0); u < n; u++ {
		if u%RunCheckNodeCount == 0 {
			if err := checkAborted(ctx); err != nil {
				return nil, err
			}
		}
		adj := neighbors[u]
		count := int64(0)
		for i := 0; i < len(adj); i++ {
			for j := i + 1; j < len(adj); j++ {
				if _, found := slices.BinarySearch(neighbors[adj[i]], adj[j]); found {
					count++
				}
			}
		}
		perNode[u] = count
		total += count

		if k := int64(len(adj)); k >= 2 {
			coefficients[u] = float64(count) / float64(k*(k-1)/2)
		}
	}

	floatScores := make([]float64, n)
	for node, c := range perNode {
		floatScores[node] = float64(c)
	}

	return &TriangleCountResult{
		PerNode:                perNode,
		GlobalCount:            total / 3,
		ClusteringCoefficients: coefficients,
		TopNodes:               findTopNodes(floatScores, 10),
	}, nil
}
