package algorithms

import (
	"context"

	"github.com/dd0wney/cluso-graphalgo/pkg/dss"
	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
)

// ConnectedComponents finds the connected components of g with a single
// sequential pass of unions over every relationship, ignoring direction.
// Every component is identified by its smallest node, which matches the ids
// of an unseeded WCC run.
func ConnectedComponents(ctx context.Context, g graph.Graph) (*CommunityDetectionResult, error) {
	n := g.NodeCount()
	set := dss.New(n)
	for node := int64(0); node < n; node++ {
		if node%RunCheckNodeCount == 0 {
			if err := checkAborted(ctx); err != nil {
				return nil, err
			}
		}
		g.ForEachRelationship(node, unitWeight, func(s, t int64, _ float64) bool {
			set.Union(s, t)
			return true
		})
	}

	component := make([]int64, n)
	for node := range component {
		component[node] = set.SetIDOf(int64(node))
	}

	return &CommunityDetectionResult{
		Communities:   GroupCommunities(component),
		NodeCommunity: component,
		Modularity:    Modularity(g, component),
		Iterations:    1,
		DidConverge:   true,
	}, nil
}
