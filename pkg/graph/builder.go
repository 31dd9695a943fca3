package graph

import (
	"math"
	"sort"
)

// BuilderOptions configures how relationships are laid out in the CSR.
type BuilderOptions struct {
	Orientation Orientation
	Aggregation Aggregation
	// Weighted stores relationship weights. Unweighted builders ignore the
	// weight argument of AddWeightedRelationship.
	Weighted bool
}

// Builder accumulates relationships and produces an immutable CSRGraph.
// A Builder is not safe for concurrent use.
type Builder struct {
	nodeCount int64
	opts      BuilderOptions
	sources   []int64
	targets   []int64
	weights   []float64
}

// NewBuilder creates a builder for nodes [0, nodeCount).
func NewBuilder(nodeCount int64, opts BuilderOptions) *Builder {
	return &Builder{nodeCount: nodeCount, opts: opts}
}

// AddRelationship adds an unweighted relationship. Weighted builders record
// weight 1.0.
func (b *Builder) AddRelationship(source, target int64) error {
	return b.AddWeightedRelationship(source, target, 1.0)
}

// AddWeightedRelationship adds a relationship with the given weight.
func (b *Builder) AddWeightedRelationship(source, target int64, weight float64) error {
	if source < 0 || source >= b.nodeCount {
		return NodeOutOfRangeError("addRelationship", source, b.nodeCount)
	}
	if target < 0 || target >= b.nodeCount {
		return NodeOutOfRangeError("addRelationship", target, b.nodeCount)
	}
	if b.opts.Weighted && (math.IsNaN(weight) || math.IsInf(weight, 0)) {
		return NewError("addRelationship").Relationship().Cause(ErrInvalidWeight).Err()
	}
	b.sources = append(b.sources, source)
	b.targets = append(b.targets, target)
	if b.opts.Weighted {
		b.weights = append(b.weights, weight)
	}
	return nil
}

type adjacencyEntry struct {
	target int64
	weight float64
}

// Build lays out the accumulated relationships. The builder can be reused
// afterwards, but the returned graph does not observe later additions.
func (b *Builder) Build() *CSRGraph {
	degrees := make([]int64, b.nodeCount+1)
	b.forEachDirected(func(s, _ int64, _ float64) {
		degrees[s+1]++
	})
	for i := int64(1); i <= b.nodeCount; i++ {
		degrees[i] += degrees[i-1]
	}

	total := degrees[b.nodeCount]
	entries := make([]adjacencyEntry, total)
	cursor := make([]int64, b.nodeCount)
	copy(cursor, degrees[:b.nodeCount])
	b.forEachDirected(func(s, t int64, w float64) {
		entries[cursor[s]] = adjacencyEntry{target: t, weight: w}
		cursor[s]++
	})

	offsets := make([]int64, b.nodeCount+1)
	targets := make([]int64, 0, total)
	var weights []float64
	if b.opts.Weighted {
		weights = make([]float64, 0, total)
	}

	for node := int64(0); node < b.nodeCount; node++ {
		adj := entries[degrees[node]:degrees[node+1]]
		sort.SliceStable(adj, func(i, j int) bool { return adj[i].target < adj[j].target })
		for i, e := range adj {
			if b.opts.Aggregation != AggregationNone && i > 0 && adj[i-1].target == e.target {
				if weights != nil {
					last := len(weights) - 1
					weights[last] = b.opts.Aggregation.merge(weights[last], e.weight)
				}
				continue
			}
			targets = append(targets, e.target)
			if weights != nil {
				weights = append(weights, e.weight)
			}
		}
		offsets[node+1] = int64(len(targets))
	}

	return NewCSRGraph(offsets, targets, weights)
}

// forEachDirected expands stored relationships according to the orientation.
// An undirected self-loop is exposed once.
func (b *Builder) forEachDirected(fn func(s, t int64, w float64)) {
	for i := range b.sources {
		s, t := b.sources[i], b.targets[i]
		w := 1.0
		if b.weights != nil {
			w = b.weights[i]
		}
		switch b.opts.Orientation {
		case Natural:
			fn(s, t, w)
		case Reverse:
			fn(t, s, w)
		case Undirected:
			fn(s, t, w)
			if s != t {
				fn(t, s, w)
			}
		}
	}
}
