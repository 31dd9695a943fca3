package algorithms

// Community is one group of nodes sharing a community id.
type Community struct {
	ID      int64
	Nodes   []int64
	Size    int
	Density float64 // Relationship density within the community, if computed
}

// CommunityDetectionResult contains detected communities
type CommunityDetectionResult struct {
	Communities []*Community
	Modularity  float64
	// NodeCommunity holds the community id of every node.
	NodeCommunity []int64
	Iterations    int
	DidConverge   bool
}

// LouvainResult is the outcome of a Louvain run.
type LouvainResult struct {
	// Communities holds the final community id of every node.
	Communities []int64
	// Dendrogram holds, per recorded level and oldest first, the community
	// id of every node. Only set when intermediate communities were
	// requested.
	Dendrogram [][]int64
	// Modularities holds the modularity reached at each recorded level.
	Modularities   []float64
	Modularity     float64
	Levels         int
	DidConverge    bool
	CommunityCount int64
}

// IntermediateCommunities returns the per-level community ids of node,
// oldest first, or nil when the dendrogram was not requested.
func (r *LouvainResult) IntermediateCommunities(node int64) []int64 {
	if r.Dendrogram == nil {
		return nil
	}
	ids := make([]int64, len(r.Dendrogram))
	for level, assignment := range r.Dendrogram {
		ids[level] = assignment[node]
	}
	return ids
}

// WccResult is the outcome of a weakly connected components run.
type WccResult struct {
	// Components holds the component id of every node.
	Components     []int64
	ComponentCount int64
	// ComponentSizes maps a component id to its member count.
	ComponentSizes map[int64]int64
}
