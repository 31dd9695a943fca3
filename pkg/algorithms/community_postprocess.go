package algorithms

import (
	"fmt"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
)

// compactIDs remaps ids onto [0, k) in order of first appearance and
// returns the remapped ids together with k.
func compactIDs(ids []int64) ([]int64, int64) {
	mapping := make(map[int64]int64)
	out := make([]int64, len(ids))
	for i, id := range ids {
		dense, ok := mapping[id]
		if !ok {
			dense = int64(len(mapping))
			mapping[id] = dense
		}
		out[i] = dense
	}
	return out, int64(len(mapping))
}

// ConsecutiveIDs remaps community ids onto [0, k) in order of first
// appearance, where k is the number of distinct ids.
func ConsecutiveIDs(ids []int64) []int64 {
	out, _ := compactIDs(ids)
	return out
}

// CountDistinct returns the number of distinct ids.
func CountDistinct(ids []int64) int64 {
	seen := make(map[int64]struct{})
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return int64(len(seen))
}

// GroupCommunities groups nodes by id. Communities are ordered by first
// appearance; members are in node order.
func GroupCommunities(ids []int64) []*Community {
	byID := make(map[int64]*Community)
	communities := make([]*Community, 0)
	for node, id := range ids {
		c, ok := byID[id]
		if !ok {
			c = &Community{ID: id}
			byID[id] = c
			communities = append(communities, c)
		}
		c.Nodes = append(c.Nodes, int64(node))
	}
	for _, c := range communities {
		c.Size = len(c.Nodes)
	}
	return communities
}

// CommunityDensity sets the relationship density of each community:
// adjacency entries inside the community over the possible ordered pairs.
func CommunityDensity(g graph.Graph, ids []int64, communities []*Community) {
	inside := make(map[int64]int64)
	n := g.NodeCount()
	for node := int64(0); node < n; node++ {
		c := ids[node]
		g.ForEachRelationship(node, unitWeight, func(_, t int64, _ float64) bool {
			if t != node && ids[t] == c {
				inside[c]++
			}
			return true
		})
	}
	for _, c := range communities {
		if c.Size < 2 {
			c.Density = 0
			continue
		}
		c.Density = float64(inside[c.ID]) / float64(c.Size*(c.Size-1))
	}
}

// seedReconciler translates internal labels into community ids that honor
// seed values. A label is the index of a node; labels of seeded nodes map
// to the seed, every other label to maxSeed + 1 + label, so generated ids
// never take a seed's value.
type seedReconciler struct {
	seeds   *graph.NodeProperty
	maxSeed int64
}

func newSeedReconciler(seeds *graph.NodeProperty, nodeCount int64) (*seedReconciler, error) {
	if seeds == nil {
		return nil, nil
	}
	if seeds.NodeCount() != nodeCount {
		return nil, fmt.Errorf("%w: seed property covers %d nodes, graph has %d", ErrInvalidConfig, seeds.NodeCount(), nodeCount)
	}
	r := &seedReconciler{seeds: seeds, maxSeed: -1}
	for node := int64(0); node < nodeCount; node++ {
		seed, ok := seeds.Value(node)
		if !ok {
			continue
		}
		if seed < 0 {
			return nil, &ConfigError{Algorithm: "seed", Parameter: "seed value", Value: seed, Reason: fmt.Sprintf("node %d has a negative seed", node)}
		}
		if seed > r.maxSeed {
			r.maxSeed = seed
		}
	}
	return r, nil
}

// initialLabels places nodes sharing a seed in one community labelled by
// the lowest such node; unseeded nodes start alone.
func (r *seedReconciler) initialLabels(nodeCount int64) []int64 {
	labels := make([]int64, nodeCount)
	first := make(map[int64]int64)
	for node := int64(0); node < nodeCount; node++ {
		labels[node] = node
		if r == nil {
			continue
		}
		seed, ok := r.seeds.Value(node)
		if !ok {
			continue
		}
		if rep, seen := first[seed]; seen {
			labels[node] = rep
		} else {
			first[seed] = node
		}
	}
	return labels
}

func (r *seedReconciler) communityID(label int64) int64 {
	if r == nil {
		return label
	}
	if seed, ok := r.seeds.Value(label); ok {
		return seed
	}
	return r.maxSeed + 1 + label
}

// communityPostProcessor turns internal labels into the ids callers see.
type communityPostProcessor struct {
	seeds       *seedReconciler
	consecutive bool
}

func (pp communityPostProcessor) process(labels []int64) []int64 {
	if pp.consecutive {
		return ConsecutiveIDs(labels)
	}
	out := make([]int64, len(labels))
	for i, label := range labels {
		out[i] = pp.seeds.communityID(label)
	}
	return out
}
