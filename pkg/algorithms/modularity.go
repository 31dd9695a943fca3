package algorithms

import (
	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
)

// unitWeight is the weight of every relationship of an unweighted graph.
const unitWeight = 1.0

// weightedDegrees returns the weighted degree of every node and their sum,
// which is twice the total relationship weight of an undirected graph.
func weightedDegrees(g graph.Graph) ([]float64, float64) {
	n := g.NodeCount()
	k := make([]float64, n)
	m2 := 0.0
	for node := int64(0); node < n; node++ {
		sum := 0.0
		g.ForEachRelationship(node, unitWeight, func(_, _ int64, w float64) bool {
			sum += w
			return true
		})
		k[node] = sum
		m2 += sum
	}
	return k, m2
}

// denseModularity computes Q for labels in [0, NodeCount()).
//
//	Q = sum over c of in(c)/2m - (tot(c)/2m)^2
//
// where in(c) sums the adjacency weights with both ends in c and tot(c)
// sums the weighted degrees of the members of c.
func denseModularity(g graph.Graph, communities []int64, k []float64, m2 float64) float64 {
	if m2 == 0 {
		return 0
	}
	n := g.NodeCount()
	in := make([]float64, n)
	tot := make([]float64, n)
	for node := int64(0); node < n; node++ {
		c := communities[node]
		tot[c] += k[node]
		g.ForEachRelationship(node, unitWeight, func(_, t int64, w float64) bool {
			if communities[t] == c {
				in[c] += w
			}
			return true
		})
	}
	q := 0.0
	for c := range tot {
		if tot[c] == 0 && in[c] == 0 {
			continue
		}
		share := tot[c] / m2
		q += in[c]/m2 - share*share
	}
	return q
}

// Modularity returns the modularity of an arbitrary labelling of g's nodes.
// Graphs without relationships have modularity 0.
func Modularity(g graph.Graph, communities []int64) float64 {
	k, m2 := weightedDegrees(g)
	dense, _ := compactIDs(communities)
	return denseModularity(g, dense, k, m2)
}
