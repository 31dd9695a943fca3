package graph

import (
	"math"
	"sort"
	"sync"
)

// NodeProperty holds one optional int64 value per node.
type NodeProperty struct {
	values  []int64
	present []bool
}

// NewNodeProperty creates an empty property for nodeCount nodes.
func NewNodeProperty(nodeCount int64) *NodeProperty {
	return &NodeProperty{
		values:  make([]int64, nodeCount),
		present: make([]bool, nodeCount),
	}
}

// NodePropertyFromSlice creates a property where every node has a value.
func NodePropertyFromSlice(values []int64) *NodeProperty {
	p := NewNodeProperty(int64(len(values)))
	copy(p.values, values)
	for i := range p.present {
		p.present[i] = true
	}
	return p
}

// NodeCount returns the number of nodes the property covers.
func (p *NodeProperty) NodeCount() int64 {
	return int64(len(p.values))
}

// Set assigns a value to node.
func (p *NodeProperty) Set(node, value int64) {
	p.values[node] = value
	p.present[node] = true
}

// Value returns the value of node and whether it is present.
func (p *NodeProperty) Value(node int64) (int64, bool) {
	if node < 0 || node >= int64(len(p.values)) || !p.present[node] {
		return 0, false
	}
	return p.values[node], true
}

// MaxValue returns the largest present value.
func (p *NodeProperty) MaxValue() (int64, bool) {
	var (
		max   int64
		found bool
	)
	for i, ok := range p.present {
		if ok && (!found || p.values[i] > max) {
			max = p.values[i]
			found = true
		}
	}
	return max, found
}

// ProjectionConfig selects how a GraphStore is turned into a Graph.
type ProjectionConfig struct {
	Orientation Orientation
	Aggregation Aggregation
	// RelationshipProperty names the weight property; empty projects an
	// unweighted graph.
	RelationshipProperty string
	// DefaultWeight replaces missing weight values.
	DefaultWeight float64
}

// DefaultProjectionConfig returns an undirected, unweighted projection.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{
		Orientation:   Undirected,
		Aggregation:   AggregationNone,
		DefaultWeight: 1.0,
	}
}

// GraphStore keeps relationships and named node/relationship properties.
// It is safe for concurrent use.
type GraphStore struct {
	mu        sync.RWMutex
	nodeCount int64
	sources   []int64
	targets   []int64
	relProps  map[string][]float64
	nodeProps map[string]*NodeProperty
}

// NewGraphStore creates an empty store with nodeCount nodes.
func NewGraphStore(nodeCount int64) *GraphStore {
	return &GraphStore{
		nodeCount: nodeCount,
		relProps:  make(map[string][]float64),
		nodeProps: make(map[string]*NodeProperty),
	}
}

// NodeCount returns the number of nodes.
func (s *GraphStore) NodeCount() int64 {
	return s.nodeCount
}

// RelationshipCount returns the number of stored relationships.
func (s *GraphStore) RelationshipCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.sources))
}

// AddRelationship stores a relationship with optional properties. Properties
// not given for this relationship are recorded as missing.
func (s *GraphStore) AddRelationship(source, target int64, properties map[string]float64) error {
	if source < 0 || source >= s.nodeCount {
		return NodeOutOfRangeError("addRelationship", source, s.nodeCount)
	}
	if target < 0 || target >= s.nodeCount {
		return NodeOutOfRangeError("addRelationship", target, s.nodeCount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.sources)
	s.sources = append(s.sources, source)
	s.targets = append(s.targets, target)

	for name, values := range s.relProps {
		v, ok := properties[name]
		if !ok {
			v = math.NaN()
		}
		s.relProps[name] = append(values, v)
	}
	for name, v := range properties {
		if _, ok := s.relProps[name]; ok {
			continue
		}
		values := make([]float64, idx+1)
		for i := 0; i < idx; i++ {
			values[i] = math.NaN()
		}
		values[idx] = v
		s.relProps[name] = values
	}
	return nil
}

// RelationshipPropertyKeys lists the relationship property names, sorted.
func (s *GraphStore) RelationshipPropertyKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.relProps))
	for k := range s.relProps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetNodeProperty stores or replaces a node property.
func (s *GraphStore) SetNodeProperty(name string, property *NodeProperty) error {
	if property.NodeCount() != s.nodeCount {
		return NewError("setNodeProperty").Entity("node").Property(name).
			Cause(ErrMalformedInput).Context("node count mismatch").Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeProps[name] = property
	return nil
}

// NodeProperty returns a named node property.
func (s *GraphStore) NodeProperty(name string) (*NodeProperty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.nodeProps[name]
	if !ok {
		return nil, NodePropertyNotFoundError("nodeProperty", name)
	}
	return p, nil
}

// HasNodeProperty reports whether a node property exists.
func (s *GraphStore) HasNodeProperty(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodeProps[name]
	return ok
}

// Project builds a Graph view of the store.
func (s *GraphStore) Project(cfg ProjectionConfig) (*CSRGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var weights []float64
	if cfg.RelationshipProperty != "" {
		values, ok := s.relProps[cfg.RelationshipProperty]
		if !ok {
			return nil, RelationshipPropertyNotFoundError("project", cfg.RelationshipProperty)
		}
		weights = values
	}

	b := NewBuilder(s.nodeCount, BuilderOptions{
		Orientation: cfg.Orientation,
		Aggregation: cfg.Aggregation,
		Weighted:    weights != nil,
	})
	for i := range s.sources {
		w := 1.0
		if weights != nil {
			w = weights[i]
			if math.IsNaN(w) {
				w = cfg.DefaultWeight
			}
		}
		if err := b.AddWeightedRelationship(s.sources[i], s.targets[i], w); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
