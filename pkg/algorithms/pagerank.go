package algorithms

import (
	"container/heap"
	"context"
	"math"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/parallel"
	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

// PageRankConfig configures PageRank.
type PageRankConfig struct {
	Concurrency   int     `yaml:"concurrency" validate:"gte=1,lte=1024"`
	MinBatchSize  int64   `yaml:"minBatchSize" validate:"gte=1"`
	DampingFactor float64 `yaml:"dampingFactor" validate:"gte=0,lt=1"` // Usually 0.85
	MaxIterations int     `yaml:"maxIterations" validate:"gte=1"`
	Tolerance     float64 `yaml:"tolerance" validate:"gte=0"` // Convergence threshold
	// TopN bounds the ranked nodes kept in the result.
	TopN int `yaml:"topN" validate:"gte=0"`

	RunOptions `yaml:"-"`
}

// DefaultPageRankConfig returns default PageRank configuration
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{
		Concurrency:   DefaultConcurrency(),
		MinBatchSize:  parallel.DefaultMinBatchSize,
		DampingFactor: 0.85,
		MaxIterations: 20,
		Tolerance:     1e-7,
		TopN:          10,
	}
}

// Validate checks parameter bounds.
func (c PageRankConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	return validation.NewConfigValidator("PageRankConfig").
		Finite("DampingFactor", c.DampingFactor).
		Finite("Tolerance", c.Tolerance).
		Validate()
}

// PageRankResult contains PageRank scores for all nodes
type PageRankResult struct {
	Scores     []float64    // Indexed by node
	Iterations int          // Number of iterations performed
	Converged  bool         // Whether algorithm converged
	TopNodes   []RankedNode // Top N nodes by score, descending
}

// RankedNode represents a node with its rank
type RankedNode struct {
	NodeID int64
	Score  float64
}

// PageRank computes PageRank scores for all nodes in the graph. Each
// iteration pulls contributions along reversed adjacency, one partition of
// nodes per task. Scores are normalized to sum to 1.
func PageRank(ctx context.Context, g graph.Graph, cfg PageRankConfig) (*PageRankResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := g.NodeCount()
	if n == 0 {
		return &PageRankResult{Scores: []float64{}, Converged: true}, nil
	}

	logger := cfg.logger().With(logging.Algorithm("pagerank"))
	timer := logging.StartTimer(logger, "pagerank finished", logging.NodeCount(n))

	incoming, err := reverse(g)
	if err != nil {
		return nil, err
	}
	outDegree := make([]int, n)
	for node := int64(0); node < n; node++ {
		outDegree[node] = g.Degree(node)
	}

	exec, err := newExecutor(cfg.Concurrency, cfg.MinBatchSize, cfg.RunOptions)
	if err != nil {
		return nil, err
	}
	defer exec.close()

	scores := make([]float64, n)
	next := make([]float64, n)
	initial := 1.0 / float64(n)
	for i := range scores {
		scores[i] = initial
	}
	base := (1.0 - cfg.DampingFactor) / float64(n)

	partitions := exec.partitions(n)
	diffs := make([]float64, len(partitions))
	result := &PageRankResult{}

	for result.Iterations < cfg.MaxIterations {
		result.Iterations++
		clear(diffs)
		err := exec.run(ctx, "pagerank", partitions, func(ctx context.Context, p parallel.Partition) error {
			slot := partitionSlot(partitions, p)
			for node := p.Start; node < p.End(); node++ {
				if (node-p.Start)%RunCheckNodeCount == 0 {
					if err := checkAborted(ctx); err != nil {
						return err
					}
				}
				score := base
				incoming.ForEachRelationship(node, unitWeight, func(_, from int64, _ float64) bool {
					if d := outDegree[from]; d > 0 {
						score += cfg.DampingFactor * scores[from] / float64(d)
					}
					return true
				})
				next[node] = score
				if diff := math.Abs(score - scores[node]); diff > diffs[slot] {
					diffs[slot] = diff
				}
			}
			return nil
		})
		if err != nil {
			timer.EndError(err)
			return nil, err
		}
		scores, next = next, scores

		maxDiff := 0.0
		for _, d := range diffs {
			maxDiff = math.Max(maxDiff, d)
		}
		logger.Debug("pagerank iteration", logging.Iteration(result.Iterations), logging.Float64("max_delta", maxDiff))
		if maxDiff < cfg.Tolerance {
			result.Converged = true
			break
		}
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	if sum > 0 {
		for i := range scores {
			scores[i] /= sum
		}
	}
	result.Scores = scores
	result.TopNodes = findTopNodes(scores, cfg.TopN)

	timer.End(logging.Iteration(result.Iterations), logging.Bool("converged", result.Converged))
	return result, nil
}

// reverse builds the transposed adjacency of g.
func reverse(g graph.Graph) (*graph.CSRGraph, error) {
	n := g.NodeCount()
	b := graph.NewBuilder(n, graph.BuilderOptions{Orientation: graph.Reverse})
	var err error
	for node := int64(0); node < n && err == nil; node++ {
		g.ForEachRelationship(node, unitWeight, func(s, t int64, _ float64) bool {
			err = b.AddRelationship(s, t)
			return err == nil
		})
	}
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// rankedNodeHeap implements a min-heap for RankedNode by score.
// We use a min-heap to efficiently find top N elements:
// - Keep at most N elements in the heap
// - The minimum element is at the root
// - When adding a new element, if heap is full and new > min, pop min and push new
type rankedNodeHeap []RankedNode

func (h rankedNodeHeap) Len() int { return len(h) }
func (h rankedNodeHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].NodeID > h[j].NodeID
}
func (h rankedNodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *rankedNodeHeap) Push(x any) {
	*h = append(*h, x.(RankedNode))
}

func (h *rankedNodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// findTopNodes finds the top n nodes by score using a min-heap. Equal
// scores rank the smaller node id first.
// Time complexity: O(len(scores) log n)
func findTopNodes(scores []float64, n int) []RankedNode {
	if n <= 0 {
		return nil
	}

	h := make(rankedNodeHeap, 0, n)
	heap.Init(&h)

	for node, score := range scores {
		rn := RankedNode{NodeID: int64(node), Score: score}
		if h.Len() < n {
			heap.Push(&h, rn)
		} else if score > h[0].Score {
			heap.Pop(&h)
			heap.Push(&h, rn)
		}
	}

	result := make([]RankedNode, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(RankedNode)
	}
	return result
}

// Top returns up to n of the highest ranked nodes.
func (pr *PageRankResult) Top(n int) []RankedNode {
	if n > len(pr.TopNodes) {
		return pr.TopNodes
	}
	return pr.TopNodes[:n]
}

// NodeRank returns the PageRank score for a specific node
func (pr *PageRankResult) NodeRank(node int64) float64 {
	if node < 0 || node >= int64(len(pr.Scores)) {
		return 0
	}
	return pr.Scores[node]
}
