package procedures

import (
	"context"

	"github.com/dd0wney/cluso-graphalgo/pkg/algorithms"
	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

// Louvain runs Louvain community detection on an undirected projection
// unless the request overrides the orientation.
func (r *Runner) Louvain(ctx context.Context, req LouvainRequest) (result *Result, err error) {
	ctx, j := r.begin(ctx, "louvain", req.Request)
	defer func() { err = j.finish(err) }()

	cfg := req.Config
	cfg.RunOptions = j.runOptions()
	if err := req.validate("louvain"); err != nil {
		return nil, err
	}
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	in, err := r.resolve(j, req.projection(graph.Undirected, cfg.RelationshipWeightProperty, cfg.DefaultWeight), cfg.SeedProperty)
	if err != nil {
		return nil, err
	}
	out, err := algorithms.Louvain(ctx, in.graph, cfg, in.seeds)
	if err != nil {
		return nil, err
	}

	j.summary.CommunityCount = out.CommunityCount
	j.summary.CommunityDistribution = sizeDistribution(communitySizes(out.Communities))
	j.summary.Modularity = out.Modularity
	j.summary.Modularities = out.Modularities
	j.summary.Levels = out.Levels
	j.summary.DidConverge = out.DidConverge

	var intermediate func(int64) []int64
	if cfg.IncludeIntermediateCommunities {
		intermediate = out.IntermediateCommunities
	}
	return r.deliver(ctx, j, in, payload{
		ids:  out.Communities,
		rows: func() []Row { return communityRows(out.Communities, intermediate) },
	})
}

// WCC runs weakly connected components. The natural projection suffices
// since every relationship is unioned regardless of direction.
func (r *Runner) WCC(ctx context.Context, req WccRequest) (result *Result, err error) {
	ctx, j := r.begin(ctx, "wcc", req.Request)
	defer func() { err = j.finish(err) }()

	cfg := req.Config
	cfg.RunOptions = j.runOptions()
	if err := req.validate("wcc"); err != nil {
		return nil, err
	}
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	in, err := r.resolve(j, req.projection(graph.Natural, cfg.RelationshipWeightProperty, cfg.DefaultWeight), cfg.SeedProperty)
	if err != nil {
		return nil, err
	}
	out, err := algorithms.WCC(ctx, in.graph, cfg, in.seeds)
	if err != nil {
		return nil, err
	}

	sizes := make([]int64, 0, len(out.ComponentSizes))
	for _, size := range out.ComponentSizes {
		sizes = append(sizes, size)
	}
	j.summary.CommunityCount = out.ComponentCount
	j.summary.CommunityDistribution = sizeDistribution(sizes)
	j.summary.DidConverge = true

	return r.deliver(ctx, j, in, payload{
		ids:  out.Components,
		rows: func() []Row { return communityRows(out.Components, nil) },
	})
}

// LabelPropagation runs label propagation on an undirected projection
// unless the request overrides the orientation.
func (r *Runner) LabelPropagation(ctx context.Context, req LabelPropagationRequest) (result *Result, err error) {
	ctx, j := r.begin(ctx, "labelPropagation", req.Request)
	defer func() { err = j.finish(err) }()

	cfg := req.Config
	cfg.RunOptions = j.runOptions()
	if err := req.validate("labelPropagation"); err != nil {
		return nil, err
	}
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	in, err := r.resolve(j, req.projection(graph.Undirected, cfg.RelationshipWeightProperty, cfg.DefaultWeight), cfg.SeedProperty)
	if err != nil {
		return nil, err
	}
	out, err := algorithms.LabelPropagation(ctx, in.graph, cfg, in.seeds)
	if err != nil {
		return nil, err
	}

	sizes := make([]int64, len(out.Communities))
	for i, c := range out.Communities {
		sizes[i] = int64(c.Size)
	}
	j.summary.CommunityCount = int64(len(out.Communities))
	j.summary.CommunityDistribution = sizeDistribution(sizes)
	j.summary.Modularity = out.Modularity
	j.summary.Iterations = out.Iterations
	j.summary.DidConverge = out.DidConverge

	return r.deliver(ctx, j, in, payload{
		ids:  out.NodeCommunity,
		rows: func() []Row { return communityRows(out.NodeCommunity, nil) },
	})
}

// PageRank runs PageRank on the natural projection unless the request
// overrides the orientation.
func (r *Runner) PageRank(ctx context.Context, req PageRankRequest) (result *Result, err error) {
	ctx, j := r.begin(ctx, "pageRank", req.Request)
	defer func() { err = j.finish(err) }()

	cfg := req.Config
	cfg.RunOptions = j.runOptions()
	if err := req.validate("pageRank"); err != nil {
		return nil, err
	}
	if req.Mode == ModeMutate {
		return nil, unsupportedMode(j)
	}
	if err := validation.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	in, err := r.resolve(j, req.projection(graph.Natural, "", algorithms.DefaultWeight), "")
	if err != nil {
		return nil, err
	}
	out, err := algorithms.PageRank(ctx, in.graph, cfg)
	if err != nil {
		return nil, err
	}

	j.summary.Iterations = out.Iterations
	j.summary.DidConverge = out.Converged
	return r.deliver(ctx, j, in, payload{scores: out.Scores})
}
