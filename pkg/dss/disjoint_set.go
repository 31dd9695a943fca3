// Package dss implements disjoint-set (union-find) structures over dense
// node indexes, with optional seeded set ids.
package dss

import (
	"errors"
	"fmt"
)

// ErrNegativeSeed is returned when a seed value is negative.
var ErrNegativeSeed = errors.New("seed values must be non-negative")

// SeedLookup returns the seed of a node and whether it has one.
type SeedLookup func(node int64) (int64, bool)

// DisjointSetStruct partitions nodes [0, n) into sets. Every set carries a
// set id; merging two sets keeps the smaller id. Without seeds the set id
// of a singleton is its node index.
//
// DisjointSetStruct is not safe for concurrent mutation.
type DisjointSetStruct struct {
	parent []int64
	setID  []int64 // valid at roots only
}

// New creates a structure where every node is its own set.
func New(size int64) *DisjointSetStruct {
	d := &DisjointSetStruct{
		parent: make([]int64, size),
		setID:  make([]int64, size),
	}
	for i := int64(0); i < size; i++ {
		d.parent[i] = i
		d.setID[i] = i
	}
	return d
}

// NewSeeded creates a structure whose initial set ids come from seeds.
// Seeded nodes start with their seed value; unseeded nodes get
// maxSeed + 1 + node so they never collide with a seed.
func NewSeeded(size int64, seeds SeedLookup) (*DisjointSetStruct, error) {
	d := New(size)
	maxSeed := int64(-1)
	for i := int64(0); i < size; i++ {
		seed, ok := seeds(i)
		if !ok {
			continue
		}
		if seed < 0 {
			return nil, fmt.Errorf("node %d: %w (got %d)", i, ErrNegativeSeed, seed)
		}
		if seed > maxSeed {
			maxSeed = seed
		}
	}
	for i := int64(0); i < size; i++ {
		if seed, ok := seeds(i); ok {
			d.setID[i] = seed
		} else {
			d.setID[i] = maxSeed + 1 + i
		}
	}
	return d, nil
}

// Size returns the number of nodes.
func (d *DisjointSetStruct) Size() int64 {
	return int64(len(d.parent))
}

// Find returns the root of the set containing node, compressing the path.
func (d *DisjointSetStruct) Find(node int64) int64 {
	root := node
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[node] != root {
		next := d.parent[node]
		d.parent[node] = root
		node = next
	}
	return root
}

// Union merges the sets containing a and b. The root with the smaller set
// id (then the smaller index) becomes the root of the merged set.
func (d *DisjointSetStruct) Union(a, b int64) {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return
	}
	if d.less(rb, ra) {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
}

func (d *DisjointSetStruct) less(a, b int64) bool {
	if d.setID[a] != d.setID[b] {
		return d.setID[a] < d.setID[b]
	}
	return a < b
}

// SetIDOf returns the set id of the set containing node.
func (d *DisjointSetStruct) SetIDOf(node int64) int64 {
	return d.setID[d.Find(node)]
}

// SameSet reports whether a and b are in the same set.
func (d *DisjointSetStruct) SameSet(a, b int64) bool {
	return d.Find(a) == d.Find(b)
}

// SetCount returns the number of distinct sets.
func (d *DisjointSetStruct) SetCount() int64 {
	count := int64(0)
	for i, p := range d.parent {
		if int64(i) == p {
			count++
		}
	}
	return count
}
