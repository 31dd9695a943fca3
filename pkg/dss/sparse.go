package dss

// SparseSet is a map-backed union-find over the nodes it has seen. It is
// used as a batch-local structure whose links are later replayed into a
// DisjointSetStruct.
type SparseSet struct {
	parent map[int64]int64
}

// NewSparseSet creates an empty sparse set with room for sizeHint nodes.
func NewSparseSet(sizeHint int) *SparseSet {
	return &SparseSet{parent: make(map[int64]int64, sizeHint)}
}

// Find returns the root of node. Unseen nodes are their own root.
func (s *SparseSet) Find(node int64) int64 {
	root := node
	for {
		p, ok := s.parent[root]
		if !ok || p == root {
			break
		}
		root = p
	}
	for node != root {
		next, ok := s.parent[node]
		if !ok {
			break
		}
		s.parent[node] = root
		node = next
	}
	return root
}

// Union links the sets of a and b under the smaller root.
func (s *SparseSet) Union(a, b int64) {
	ra, rb := s.Find(a), s.Find(b)
	if ra == rb {
		s.touch(ra)
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	s.touch(ra)
	s.parent[rb] = ra
}

func (s *SparseSet) touch(node int64) {
	if _, ok := s.parent[node]; !ok {
		s.parent[node] = node
	}
}

// Len returns the number of nodes recorded.
func (s *SparseSet) Len() int {
	return len(s.parent)
}

// ForEach calls fn with every recorded node and its root.
func (s *SparseSet) ForEach(fn func(node, root int64)) {
	for node := range s.parent {
		fn(node, s.Find(node))
	}
}
