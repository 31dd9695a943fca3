package algorithms

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
)

// Louvain detects communities by alternating local moving and aggregation
// until modularity stops improving by at least cfg.Tolerance or
// cfg.MaxLevels levels have been recorded.
//
// g must expose every undirected relationship in both directions.
// Unweighted graphs use weight 1. seeds, when non-nil, gives the initial
// community of seeded nodes; nodes sharing a seed start together and keep
// the seed as their community id.
func Louvain(ctx context.Context, g graph.Graph, cfg LouvainConfig, seeds *graph.NodeProperty) (*LouvainResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if seeds != nil && cfg.ConsecutiveIDs {
		return nil, &ConfigError{Algorithm: "Louvain", Parameter: "consecutiveIds", Value: true, Reason: "cannot be combined with seeding"}
	}
	reconciler, err := newSeedReconciler(seeds, g.NodeCount())
	if err != nil {
		return nil, err
	}

	logger := cfg.logger().With(logging.Algorithm("louvain"))
	timer := logging.StartTimer(logger, "louvain finished",
		logging.NodeCount(g.NodeCount()),
		logging.RelationshipCount(g.RelationshipCount()),
		logging.Concurrency(cfg.Concurrency))

	exec, err := newExecutor(cfg.Concurrency, cfg.MinBatchSize, cfg.RunOptions)
	if err != nil {
		return nil, err
	}
	defer exec.close()

	o := &louvainOrchestrator{
		cfg:    cfg,
		exec:   exec,
		logger: logger,
		post:   communityPostProcessor{seeds: reconciler, consecutive: cfg.ConsecutiveIDs},
	}
	result, err := o.run(ctx, g, reconciler.initialLabels(g.NodeCount()))
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End(
		logging.Int("levels", result.Levels),
		logging.Modularity(result.Modularity),
		logging.CommunityCount(result.CommunityCount),
		logging.Bool("converged", result.DidConverge))
	cfg.Metrics.RecordLouvain(result.Levels, result.Modularity)
	return result, nil
}

type louvainOrchestrator struct {
	cfg    LouvainConfig
	exec   *executor
	logger logging.Logger
	post   communityPostProcessor
}

func (o *louvainOrchestrator) run(ctx context.Context, root graph.Graph, init []int64) (*LouvainResult, error) {
	n := root.NodeCount()

	if root.RelationshipCount() == 0 || graph.TotalWeight(root, unitWeight) == 0 {
		return o.finalize(init, nil, nil, true), nil
	}

	var (
		levelGraph  = root
		levelInit   = init
		nodeToLevel []int64 // original node -> node of levelGraph; nil means identity
		labelOf     []int64 // node of levelGraph -> label in the original namespace; nil means identity
		dendrogram  [][]int64
		mods        []float64
		prevQ       float64
		converged   bool
		lastCapped  bool
	)

	// Level 0 is measured against the starting assignment.
	k, m2 := weightedDegrees(root)
	prevQ = denseModularity(root, init, k, m2)

	levelNode := func(v int64) int64 {
		if nodeToLevel == nil {
			return v
		}
		return nodeToLevel[v]
	}
	originalLabel := func(c int64) int64 {
		if labelOf == nil {
			return c
		}
		return labelOf[c]
	}

	for level := 0; level < o.cfg.MaxLevels; level++ {
		if err := checkAborted(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		lm := newLocalMoving(levelGraph, o.exec, o.cfg)
		moved, err := lm.run(ctx, levelInit)
		if err != nil {
			return nil, err
		}
		o.cfg.Metrics.RecordLocalMoving(moved.iterations, moved.staleProposals)

		levelCount := levelGraph.NodeCount()
		communityCount := CountDistinct(moved.communities)
		o.logger.Debug("local moving finished",
			logging.HierarchyLevel(level),
			logging.Iteration(moved.iterations),
			logging.Modularity(moved.modularity),
			logging.CommunityCount(communityCount),
			logging.Latency(time.Since(start)))

		improvement := moved.modularity - prevQ
		if level > 0 && (communityCount == levelCount || improvement < o.cfg.Tolerance) {
			converged = true
			break
		}

		assignment := make([]int64, n)
		for v := int64(0); v < n; v++ {
			assignment[v] = originalLabel(moved.communities[levelNode(v)])
		}
		dendrogram = append(dendrogram, assignment)
		mods = append(mods, moved.modularity)
		prevQ = moved.modularity
		lastCapped = moved.capped

		// The first level is always kept; it never scores below the start.
		if communityCount == levelCount || improvement < o.cfg.Tolerance {
			converged = true
			break
		}
		if level+1 == o.cfg.MaxLevels {
			break
		}

		if err := checkAborted(ctx); err != nil {
			return nil, err
		}
		agg, err := aggregate(ctx, levelGraph, moved.communities)
		if err != nil {
			return nil, err
		}

		nextNodeToLevel := make([]int64, n)
		for v := int64(0); v < n; v++ {
			nextNodeToLevel[v] = agg.index[moved.communities[levelNode(v)]]
		}
		nextLabelOf := make([]int64, len(agg.labels))
		for j, c := range agg.labels {
			nextLabelOf[j] = originalLabel(c)
		}
		nodeToLevel, labelOf = nextNodeToLevel, nextLabelOf

		levelGraph = agg.graph
		levelInit = make([]int64, levelGraph.NodeCount())
		for i := range levelInit {
			levelInit[i] = int64(i)
		}
	}

	return o.finalize(init, dendrogram, mods, converged && !lastCapped), nil
}

// finalize converts internal labels into caller-visible ids.
func (o *louvainOrchestrator) finalize(init []int64, dendrogram [][]int64, mods []float64, converged bool) *LouvainResult {
	final := init
	if len(dendrogram) > 0 {
		final = dendrogram[len(dendrogram)-1]
	}

	result := &LouvainResult{
		Communities:  o.post.process(final),
		Modularities: mods,
		Levels:       len(dendrogram),
		DidConverge:  converged,
	}
	if result.Modularities == nil {
		result.Modularities = []float64{}
	}
	if len(mods) > 0 {
		result.Modularity = mods[len(mods)-1]
	}
	result.CommunityCount = CountDistinct(result.Communities)

	if o.cfg.IncludeIntermediateCommunities {
		result.Dendrogram = make([][]int64, len(dendrogram))
		for i, assignment := range dendrogram {
			result.Dendrogram[i] = o.post.process(assignment)
		}
	}
	return result
}
