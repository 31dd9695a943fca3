package algorithms

import (
	"context"
	"sort"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
)

// SCCResult holds the strongly connected components of a directed graph.
// It embeds CommunityDetectionResult so components can be post-processed
// like any other community assignment. Modularity is always 0.0 since SCCs
// are structural, not quality-optimized.
type SCCResult struct {
	*CommunityDetectionResult
	LargestSCC     *Community
	SingletonCount int
}

// CondensationEdge is a relationship of the condensation DAG, where each
// SCC has been contracted to a single node.
type CondensationEdge struct {
	FromSCCID int64
	ToSCCID   int64
	EdgeCount int
}

// tarjanFrame is one level of the explicit DFS stack.
type tarjanFrame struct {
	node      int64
	neighbors []int64
	next      int
}

// StronglyConnectedComponents finds all SCCs using Tarjan's algorithm in
// O(V+E) time. Only outgoing relationships are followed, so the graph
// should be projected with Natural orientation. Components are numbered in
// the order Tarjan completes them, which is a reverse topological order of
// the condensation.
func StronglyConnectedComponents(ctx context.Context, g graph.Graph) (*SCCResult, error) {
	n := g.NodeCount()

	const unvisited = -1
	index := make([]int64, n)
	lowlink := make([]int64, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}
	nodeCommunity := make([]int64, n)

	var (
		counter     int64
		stack       []int64
		frames      []tarjanFrame
		communities []*Community
	)

	outgoing := func(node int64) []int64 {
		targets := make([]int64, 0, g.Degree(node))
		g.ForEachRelationship(node, unitWeight, func(_, t int64, _ float64) bool {
			targets = append(targets, t)
			return true
		})
		return targets
	}
	visit := func(node int64) {
		index[node], lowlink[node] = counter, counter
		counter++
		stack = append(stack, node)
		onStack[node] = true
		frames = append(frames, tarjanFrame{node: node, neighbors: outgoing(node)})
	}

	for root := int64(0); root < n; root++ {
		if root%RunCheckNodeCount == 0 {
			if err := checkAborted(ctx); err != nil {
				return nil, err
			}
		}
		if index[root] != unvisited {
			continue
		}
		visit(root)

		for len(frames) > 0 {
			top := &frames[len(frames)-1]
			u := top.node
			if top.next < len(top.neighbors) {
				v := top.neighbors[top.next]
				top.next++
				if index[v] == unvisited {
					visit(v)
				} else if onStack[v] && index[v] < lowlink[u] {
					lowlink[u] = index[v]
				}
				continue
			}

			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				if lowlink[u] < lowlink[parent] {
					lowlink[parent] = lowlink[u]
				}
			}

			// u is a root: pop the stack to form an SCC
			if lowlink[u] == index[u] {
				id := int64(len(communities))
				var members []int64
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					members = append(members, w)
					nodeCommunity[w] = id
					if w == u {
						break
					}
				}
				sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
				communities = append(communities, &Community{ID: id, Nodes: members, Size: len(members)})
			}
		}
	}

	var largest *Community
	singletons := 0
	for _, c := range communities {
		if c.Size == 1 {
			singletons++
		}
		if largest == nil || c.Size > largest.Size {
			largest = c
		}
	}

	return &SCCResult{
		CommunityDetectionResult: &CommunityDetectionResult{
			Communities:   communities,
			NodeCommunity: nodeCommunity,
			DidConverge:   true,
		},
		LargestSCC:     largest,
		SingletonCount: singletons,
	}, nil
}

// Condensation builds the condensation DAG from an SCC result. Relationships
// between two SCCs are aggregated with their count; intra-SCC relationships
// are dropped. Edges are ordered by source then target SCC.
func Condensation(g graph.Graph, scc *SCCResult) []CondensationEdge {
	type edgeKey struct{ from, to int64 }
	counts := make(map[edgeKey]int)

	for node, from := range scc.NodeCommunity {
		g.ForEachRelationship(int64(node), unitWeight, func(_, t int64, _ float64) bool {
			if to := scc.NodeCommunity[t]; to != from {
				counts[edgeKey{from, to}]++
			}
			return true
		})
	}

	result := make([]CondensationEdge, 0, len(counts))
	for key, count := range counts {
		result = append(result, CondensationEdge{FromSCCID: key.from, ToSCCID: key.to, EdgeCount: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FromSCCID != result[j].FromSCCID {
			return result[i].FromSCCID < result[j].FromSCCID
		}
		return result[i].ToSCCID < result[j].ToSCCID
	})
	return result
}
