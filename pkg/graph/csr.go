package graph

// CSRGraph stores adjacency in compressed sparse row form. Offsets has
// NodeCount()+1 entries; the adjacency of node i lives in
// targets[offsets[i]:offsets[i+1]] and is ordered by target.
type CSRGraph struct {
	offsets []int64
	targets []int64
	weights []float64
}

// NewCSRGraph wraps prebuilt CSR arrays. Weights may be nil for an
// unweighted graph; otherwise it must have the same length as targets.
// Each adjacency list must already be ordered by target.
func NewCSRGraph(offsets, targets []int64, weights []float64) *CSRGraph {
	if len(offsets) == 0 {
		offsets = []int64{0}
	}
	return &CSRGraph{offsets: offsets, targets: targets, weights: weights}
}

// NodeCount returns the number of nodes.
func (g *CSRGraph) NodeCount() int64 {
	return int64(len(g.offsets) - 1)
}

// RelationshipCount returns the number of adjacency entries.
func (g *CSRGraph) RelationshipCount() int64 {
	return int64(len(g.targets))
}

// Degree returns the number of adjacency entries of node.
func (g *CSRGraph) Degree(node int64) int {
	return int(g.offsets[node+1] - g.offsets[node])
}

// HasRelationshipProperty reports whether weights are stored.
func (g *CSRGraph) HasRelationshipProperty() bool {
	return g.weights != nil
}

// ForEachRelationship visits the adjacency of node in target order.
func (g *CSRGraph) ForEachRelationship(node int64, fallbackWeight float64, fn RelationshipConsumer) {
	start, end := g.offsets[node], g.offsets[node+1]
	for i := start; i < end; i++ {
		w := fallbackWeight
		if g.weights != nil {
			w = g.weights[i]
		}
		if !fn(node, g.targets[i], w) {
			return
		}
	}
}
