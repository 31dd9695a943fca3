package algorithms

import (
	"context"
	"slices"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
)

// aggregatedGraph is a level graph collapsed so that every community is
// one node.
type aggregatedGraph struct {
	graph *graph.CSRGraph
	// labels maps an aggregated node to the community label it replaces.
	labels []int64
	// index maps a community label of the input graph to its aggregated
	// node, or -1 for labels that are not in use.
	index []int64
}

// aggregate builds the community graph of g. Aggregated nodes are numbered
// by first appearance of their community in node order. The weight between
// two aggregated nodes is the sum of all adjacency weights between their
// members; adjacency inside a community becomes a self-loop.
func aggregate(ctx context.Context, g graph.Graph, communities []int64) (*aggregatedGraph, error) {
	n := g.NodeCount()
	index := make([]int64, n)
	for i := range index {
		index[i] = -1
	}
	labels := make([]int64, 0)
	for _, c := range communities {
		if index[c] < 0 {
			index[c] = int64(len(labels))
			labels = append(labels, c)
		}
	}

	acc := make([]map[int64]float64, len(labels))
	for node := int64(0); node < n; node++ {
		if node%RunCheckNodeCount == 0 {
			if err := checkAborted(ctx); err != nil {
				return nil, err
			}
		}
		source := index[communities[node]]
		if acc[source] == nil {
			acc[source] = make(map[int64]float64)
		}
		row := acc[source]
		g.ForEachRelationship(node, unitWeight, func(_, t int64, w float64) bool {
			row[index[communities[t]]] += w
			return true
		})
	}

	offsets := make([]int64, len(labels)+1)
	targets := make([]int64, 0)
	weights := make([]float64, 0)
	for source, row := range acc {
		keys := make([]int64, 0, len(row))
		for t := range row {
			keys = append(keys, t)
		}
		slices.Sort(keys)
		for _, t := range keys {
			targets = append(targets, t)
			weights = append(weights, row[t])
		}
		offsets[source+1] = int64(len(targets))
	}

	return &aggregatedGraph{
		graph:  graph.NewCSRGraph(offsets, targets, weights),
		labels: labels,
		index:  index,
	}, nil
}
