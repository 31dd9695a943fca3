package algorithms

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/parallel"
	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

// SimilarityMetric selects which similarity formula to use.
type SimilarityMetric int

const (
	SimilarityJaccard SimilarityMetric = iota // |A∩B| / |A∪B|
	SimilarityOverlap                         // |A∩B| / min(|A|,|B|)
	SimilarityCosine                          // |A∩B| / sqrt(|A|×|B|)
)

// String returns the metric name.
func (m SimilarityMetric) String() string {
	switch m {
	case SimilarityJaccard:
		return "JACCARD"
	case SimilarityOverlap:
		return "OVERLAP"
	case SimilarityCosine:
		return "COSINE"
	default:
		return fmt.Sprintf("SimilarityMetric(%d)", int(m))
	}
}

// UnmarshalText parses a metric name, so metrics can be read from YAML.
func (m *SimilarityMetric) UnmarshalText(text []byte) error {
	switch string(text) {
	case "JACCARD", "jaccard", "":
		*m = SimilarityJaccard
	case "OVERLAP", "overlap":
		*m = SimilarityOverlap
	case "COSINE", "cosine":
		*m = SimilarityCosine
	default:
		return &ConfigError{Algorithm: "NodeSimilarity", Parameter: "similarityMetric", Value: string(text), Reason: "expected JACCARD, OVERLAP or COSINE"}
	}
	return nil
}

// DefaultTopK is the per-node result bound used when neither TopK nor
// BottomK is set.
const DefaultTopK = 10

// NodeSimilarityConfig configures node similarity. The K bounds limit the
// results per source node and the N bounds limit the overall result; a
// nil bound is unset.
type NodeSimilarityConfig struct {
	Concurrency  int              `yaml:"concurrency" validate:"gte=1,lte=1024"`
	MinBatchSize int64            `yaml:"minBatchSize" validate:"gte=1"`
	Metric       SimilarityMetric `yaml:"similarityMetric"`

	TopK    *int `yaml:"topK" validate:"omitempty,gte=1"`
	BottomK *int `yaml:"bottomK" validate:"omitempty,gte=1"`
	TopN    *int `yaml:"topN" validate:"omitempty,gte=1"`
	BottomN *int `yaml:"bottomN" validate:"omitempty,gte=1"`

	// SimilarityCutoff drops pairs scoring below it.
	SimilarityCutoff float64 `yaml:"similarityCutoff" validate:"gte=0,lte=1"`
	// DegreeCutoff skips nodes with fewer distinct neighbors.
	DegreeCutoff int `yaml:"degreeCutoff" validate:"gte=1"`

	RunOptions `yaml:"-"`
}

// DefaultNodeSimilarityConfig returns sensible defaults.
func DefaultNodeSimilarityConfig() NodeSimilarityConfig {
	return NodeSimilarityConfig{
		Concurrency:  DefaultConcurrency(),
		MinBatchSize: parallel.DefaultMinBatchSize,
		Metric:       SimilarityJaccard,
		DegreeCutoff: 1,
	}
}

// Validate rejects non-positive bounds and top/bottom combinations.
func (c NodeSimilarityConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	cv := validation.NewConfigValidator("NodeSimilarityConfig")
	for _, bound := range []struct {
		name  string
		value *int
	}{{"TopK", c.TopK}, {"BottomK", c.BottomK}, {"TopN", c.TopN}, {"BottomN", c.BottomN}} {
		if bound.value != nil {
			cv.Positive(bound.name, *bound.value)
		}
	}
	return cv.
		OneOf("Metric", c.Metric.String(), []string{SimilarityJaccard.String(), SimilarityOverlap.String(), SimilarityCosine.String()}).
		MutuallyExclusive("TopK", c.TopK != nil, "BottomK", c.BottomK != nil).
		MutuallyExclusive("TopN", c.TopN != nil, "BottomN", c.BottomN != nil).
		Validate()
}

// NodeSimilarityScore holds a similarity score between two nodes.
type NodeSimilarityScore struct {
	Source int64
	Target int64
	Score  float64
}

// NodeSimilarityResult holds the similarity pairs of a run, grouped by
// source node in ascending order unless an N bound reordered them.
type NodeSimilarityResult struct {
	Pairs         []NodeSimilarityScore
	NodesCompared int64
}

// neighborSet returns the distinct neighbors of node, excluding itself, in
// ascending order.
func neighborSet(g graph.Graph, node int64) []int64 {
	set := make([]int64, 0, g.Degree(node))
	g.ForEachRelationship(node, unitWeight, func(_, t int64, _ float64) bool {
		if t != node && (len(set) == 0 || set[len(set)-1] != t) {
			set = append(set, t)
		}
		return true
	})
	return set
}

// computeSimilarity calculates similarity from set sizes and overlap.
func computeSimilarity(sizeA, sizeB, intersection int, metric SimilarityMetric) float64 {
	if sizeA == 0 || sizeB == 0 || intersection == 0 {
		return 0.0
	}
	switch metric {
	case SimilarityJaccard:
		return float64(intersection) / float64(sizeA+sizeB-intersection)
	case SimilarityOverlap:
		return float64(intersection) / float64(min(sizeA, sizeB))
	case SimilarityCosine:
		return float64(intersection) / math.Sqrt(float64(sizeA)*float64(sizeB))
	default:
		return 0.0
	}
}

// NodeSimilarityPair computes the similarity between two specific nodes.
func NodeSimilarityPair(g graph.Graph, a, b int64, metric SimilarityMetric) (float64, error) {
	n := g.NodeCount()
	for _, node := range []int64{a, b} {
		if node < 0 || node >= n {
			return 0, graph.NodeOutOfRangeError("nodeSimilarity", node, n)
		}
	}
	setA, setB := neighborSet(g, a), neighborSet(g, b)
	intersection := 0
	for _, x := range setA {
		if _, found := slices.BinarySearch(setB, x); found {
			intersection++
		}
	}
	return computeSimilarity(len(setA), len(setB), intersection, metric), nil
}

// NodeSimilarity compares every node with every other node that shares at
// least one neighbor. Candidates are found through the reversed adjacency,
// so nodes without common neighbors are never scored.
func NodeSimilarity(ctx context.Context, g graph.Graph, cfg NodeSimilarityConfig) (*NodeSimilarityResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := g.NodeCount()
	logger := cfg.logger().With(logging.Algorithm("nodeSimilarity"))
	timer := logging.StartTimer(logger, "node similarity finished", logging.NodeCount(n))

	sets := make([][]int64, n)
	for node := int64(0); node < n; node++ {
		sets[node] = neighborSet(g, node)
	}
	incoming, err := reverse(g)
	if err != nil {
		return nil, err
	}

	exec, err := newExecutor(cfg.Concurrency, cfg.MinBatchSize, cfg.RunOptions)
	if err != nil {
		return nil, err
	}
	defer exec.close()

	partitions := exec.partitions(n)
	partial := make([][]NodeSimilarityScore, len(partitions))
	err = exec.run(ctx, "node_similarity", partitions, func(ctx context.Context, p parallel.Partition) error {
		overlap := make(map[int64]int)
		var out []NodeSimilarityScore
		for source := p.Start; source < p.End(); source++ {
			if (source-p.Start)%RunCheckNodeCount == 0 {
				if err := checkAborted(ctx); err != nil {
					return err
				}
			}
			if len(sets[source]) < cfg.DegreeCutoff {
				continue
			}
			clear(overlap)
			for _, x := range sets[source] {
				prev := int64(-1)
				incoming.ForEachRelationship(x, unitWeight, func(_, y int64, _ float64) bool {
					if y != source && y != x && y != prev {
						overlap[y]++
					}
					prev = y
					return true
				})
			}
			scores := make([]NodeSimilarityScore, 0, len(overlap))
			for other, shared := range overlap {
				if len(sets[other]) < cfg.DegreeCutoff {
					continue
				}
				score := computeSimilarity(len(sets[source]), len(sets[other]), shared, cfg.Metric)
				if score > 0 && score >= cfg.SimilarityCutoff {
					scores = append(scores, NodeSimilarityScore{Source: source, Target: other, Score: score})
				}
			}
			out = append(out, cfg.limitPerNode(scores)...)
		}
		partial[partitionSlot(partitions, p)] = out
		return nil
	})
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	result := &NodeSimilarityResult{NodesCompared: n}
	for _, scores := range partial {
		result.Pairs = append(result.Pairs, scores...)
	}
	result.Pairs = cfg.limitOverall(result.Pairs)

	timer.End(logging.Count(len(result.Pairs)))
	return result, nil
}

func byScoreDesc(scores []NodeSimilarityScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if scores[i].Source != scores[j].Source {
			return scores[i].Source < scores[j].Source
		}
		return scores[i].Target < scores[j].Target
	})
}

func byScoreAsc(scores []NodeSimilarityScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score < scores[j].Score
		}
		if scores[i].Source != scores[j].Source {
			return scores[i].Source < scores[j].Source
		}
		return scores[i].Target < scores[j].Target
	})
}

func (c NodeSimilarityConfig) limitPerNode(scores []NodeSimilarityScore) []NodeSimilarityScore {
	if c.BottomK != nil {
		byScoreAsc(scores)
		return scores[:min(len(scores), *c.BottomK)]
	}
	k := DefaultTopK
	if c.TopK != nil {
		k = *c.TopK
	}
	byScoreDesc(scores)
	return scores[:min(len(scores), k)]
}

func (c NodeSimilarityConfig) limitOverall(pairs []NodeSimilarityScore) []NodeSimilarityScore {
	switch {
	case c.TopN != nil:
		byScoreDesc(pairs)
		return pairs[:min(len(pairs), *c.TopN)]
	case c.BottomN != nil:
		byScoreAsc(pairs)
		return pairs[:min(len(pairs), *c.BottomN)]
	}
	return pairs
}
