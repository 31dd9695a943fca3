package algorithms

import (
	"context"

	"github.com/dd0wney/cluso-graphalgo/pkg/dss"
	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/parallel"
)

// WCC computes weakly connected components with a disjoint-set structure.
//
// Each partition unions the relationships of its nodes into a private
// sparse set; the partial sets are then merged into one structure. With a
// threshold only relationships whose weight is at least the threshold
// connect nodes. Seeded nodes keep their seed as component id; a component
// reached by several seeds takes the smallest.
func WCC(ctx context.Context, g graph.Graph, cfg WccConfig, seeds *graph.NodeProperty) (*WccResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if seeds != nil && cfg.ConsecutiveIDs {
		return nil, &ConfigError{Algorithm: "WCC", Parameter: "consecutiveIds", Value: true, Reason: "cannot be combined with seeding"}
	}
	if cfg.Threshold != nil && !g.HasRelationshipProperty() {
		return nil, &ConfigError{Algorithm: "WCC", Parameter: "threshold", Value: *cfg.Threshold, Reason: "the graph has no relationship weights"}
	}

	n := g.NodeCount()
	logger := cfg.logger().With(logging.Algorithm("wcc"))
	timer := logging.StartTimer(logger, "wcc finished",
		logging.NodeCount(n),
		logging.RelationshipCount(g.RelationshipCount()),
		logging.Concurrency(cfg.Concurrency))

	var (
		components *dss.DisjointSetStruct
		err        error
	)
	if seeds != nil {
		if seeds.NodeCount() != n {
			return nil, &ConfigError{Algorithm: "WCC", Parameter: "seedProperty", Value: cfg.SeedProperty, Reason: "seed property does not cover every node"}
		}
		components, err = dss.NewSeeded(n, seeds.Value)
		if err != nil {
			return nil, &ConfigError{Algorithm: "WCC", Parameter: "seedProperty", Value: cfg.SeedProperty, Reason: err.Error()}
		}
	} else {
		components = dss.New(n)
	}

	exec, err := newExecutor(cfg.Concurrency, cfg.MinBatchSize, cfg.RunOptions)
	if err != nil {
		return nil, err
	}
	defer exec.close()

	keep := func(float64) bool { return true }
	if cfg.Threshold != nil {
		threshold := *cfg.Threshold
		keep = func(w float64) bool { return w >= threshold }
	}

	partitions := exec.partitions(n)
	partial := make([]*dss.SparseSet, len(partitions))
	progress := cfg.progress()
	progress.Reset("WCC", n)

	err = exec.run(ctx, "wcc", partitions, func(ctx context.Context, p parallel.Partition) error {
		set := dss.NewSparseSet(int(p.Count))
		for node := p.Start; node < p.End(); node++ {
			if (node-p.Start)%RunCheckNodeCount == 0 {
				if err := checkAborted(ctx); err != nil {
					return err
				}
			}
			g.ForEachRelationship(node, cfg.DefaultWeight, func(s, t int64, w float64) bool {
				if s != t && keep(w) {
					set.Union(s, t)
				}
				return true
			})
		}
		progress.LogProgress(p.Count)
		partial[partitionSlot(partitions, p)] = set
		return nil
	})
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	progress.Done()

	for _, set := range partial {
		if set == nil {
			continue
		}
		set.ForEach(func(node, root int64) {
			components.Union(node, root)
		})
	}

	ids := make([]int64, n)
	for node := int64(0); node < n; node++ {
		ids[node] = components.SetIDOf(node)
	}
	if cfg.ConsecutiveIDs {
		ids = ConsecutiveIDs(ids)
	}

	sizes := make(map[int64]int64)
	for _, id := range ids {
		sizes[id]++
	}
	result := &WccResult{
		Components:     ids,
		ComponentCount: int64(len(sizes)),
		ComponentSizes: sizes,
	}

	timer.End(logging.Int64("component_count", result.ComponentCount))
	cfg.Metrics.RecordCommunities("wcc", result.ComponentCount)
	return result, nil
}
