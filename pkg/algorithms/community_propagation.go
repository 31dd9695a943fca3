package algorithms

import (
	"context"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

// LabelPropagationConfig configures label propagation.
type LabelPropagationConfig struct {
	MaxIterations int `yaml:"maxIterations" validate:"gte=1"`

	RelationshipWeightProperty string  `yaml:"relationshipWeightProperty"`
	DefaultWeight              float64 `yaml:"defaultWeight"`
	SeedProperty               string  `yaml:"seedProperty"`
	ConsecutiveIDs             bool    `yaml:"consecutiveIds"`

	RunOptions `yaml:"-"`
}

// DefaultLabelPropagationConfig returns the default configuration.
func DefaultLabelPropagationConfig() LabelPropagationConfig {
	return LabelPropagationConfig{
		MaxIterations: DefaultMaxIterations,
		DefaultWeight: DefaultWeight,
	}
}

// Validate checks parameter bounds and option combinations.
func (c LabelPropagationConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	return validation.NewConfigValidator("LabelPropagationConfig").
		Finite("DefaultWeight", c.DefaultWeight).
		MutuallyExclusive("SeedProperty", c.SeedProperty != "", "ConsecutiveIDs", c.ConsecutiveIDs).
		Custom("SeedProperty", validation.OptionalPropertyKey(c.SeedProperty)).
		Custom("RelationshipWeightProperty", validation.OptionalPropertyKey(c.RelationshipWeightProperty)).
		Validate()
}

// LabelPropagation performs label propagation for community detection.
// Nodes are visited in index order and adopt the label with the largest
// total relationship weight among their neighbors; the current label wins
// ties, then the smallest label. Seeded nodes start with their seed,
// unseeded nodes with an id that no seed uses.
func LabelPropagation(ctx context.Context, g graph.Graph, cfg LabelPropagationConfig, seeds *graph.NodeProperty) (*CommunityDetectionResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if seeds != nil && cfg.ConsecutiveIDs {
		return nil, &ConfigError{Algorithm: "LabelPropagation", Parameter: "consecutiveIds", Value: true, Reason: "cannot be combined with seeding"}
	}
	n := g.NodeCount()
	reconciler, err := newSeedReconciler(seeds, n)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger().With(logging.Algorithm("labelPropagation"))
	timer := logging.StartTimer(logger, "label propagation finished", logging.NodeCount(n))
	progress := cfg.progress()

	labels := make([]int64, n)
	for node := int64(0); node < n; node++ {
		labels[node] = reconciler.communityID(node)
	}

	result := &CommunityDetectionResult{}
	votes := make(map[int64]float64)
	for result.Iterations < cfg.MaxIterations {
		result.Iterations++
		progress.Reset("LabelPropagation", n)
		changed := false

		for node := int64(0); node < n; node++ {
			if node%RunCheckNodeCount == 0 {
				if err := checkAborted(ctx); err != nil {
					timer.EndError(err)
					return nil, err
				}
			}
			clear(votes)
			g.ForEachRelationship(node, cfg.DefaultWeight, func(_, t int64, w float64) bool {
				if t != node {
					votes[labels[t]] += w
				}
				return true
			})
			if len(votes) == 0 {
				continue
			}

			current := labels[node]
			best, bestWeight := current, votes[current]
			for label, weight := range votes {
				if weight > bestWeight || (weight == bestWeight && best != current && label < best) {
					best, bestWeight = label, weight
				}
			}
			if best != current && bestWeight > votes[current] {
				labels[node] = best
				changed = true
			}
		}
		progress.LogProgress(n)
		progress.Done()

		if !changed {
			result.DidConverge = true
			break
		}
	}

	if cfg.ConsecutiveIDs {
		labels = ConsecutiveIDs(labels)
	}
	result.NodeCommunity = labels
	result.Communities = GroupCommunities(labels)
	result.Modularity = Modularity(g, labels)

	timer.End(
		logging.Iteration(result.Iterations),
		logging.CommunityCount(int64(len(result.Communities))),
		logging.Bool("converged", result.DidConverge))
	cfg.Metrics.RecordCommunities("labelPropagation", int64(len(result.Communities)))
	return result, nil
}
