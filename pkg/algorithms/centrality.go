package algorithms

import (
	"context"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/parallel"
	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

// CentralityConfig configures the traversal-based centralities.
type CentralityConfig struct {
	Concurrency  int   `yaml:"concurrency" validate:"gte=1,lte=1024"`
	MinBatchSize int64 `yaml:"minBatchSize" validate:"gte=1"`
	// Weighted makes DegreeCentrality sum relationship weights.
	Weighted      bool    `yaml:"weighted"`
	DefaultWeight float64 `yaml:"defaultWeight"`
	TopN          int     `yaml:"topN" validate:"gte=0"`

	RunOptions `yaml:"-"`
}

// DefaultCentralityConfig returns the default centrality configuration.
func DefaultCentralityConfig() CentralityConfig {
	return CentralityConfig{
		Concurrency:   DefaultConcurrency(),
		MinBatchSize:  parallel.DefaultMinBatchSize,
		DefaultWeight: DefaultWeight,
		TopN:          10,
	}
}

// Validate checks parameter bounds.
func (c CentralityConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	return validation.NewConfigValidator("CentralityConfig").
		Finite("DefaultWeight", c.DefaultWeight).
		Validate()
}

// brandesPass holds the scratch space of one single-source traversal.
type brandesPass struct {
	stack    []int64
	queue    []int64
	preds    [][]int64
	sigma    []float64
	distance []int64
	delta    []float64
}

func newBrandesPass(n int64) *brandesPass {
	return &brandesPass{
		stack:    make([]int64, 0, n),
		queue:    make([]int64, 0, n),
		preds:    make([][]int64, n),
		sigma:    make([]float64, n),
		distance: make([]int64, n),
		delta:    make([]float64, n),
	}
}

// run performs a BFS from source and adds the dependency of every other
// node to betweenness.
func (b *brandesPass) run(g graph.Graph, source int64, betweenness []float64) {
	b.stack = b.stack[:0]
	b.queue = b.queue[:0]
	for i := range b.distance {
		b.preds[i] = b.preds[i][:0]
		b.sigma[i] = 0
		b.distance[i] = -1
		b.delta[i] = 0
	}
	b.sigma[source] = 1
	b.distance[source] = 0
	b.queue = append(b.queue, source)

	for head := 0; head < len(b.queue); head++ {
		v := b.queue[head]
		b.stack = append(b.stack, v)
		g.ForEachRelationship(v, unitWeight, func(_, w int64, _ float64) bool {
			if b.distance[w] < 0 {
				b.queue = append(b.queue, w)
				b.distance[w] = b.distance[v] + 1
			}
			if b.distance[w] == b.distance[v]+1 {
				b.sigma[w] += b.sigma[v]
				b.preds[w] = append(b.preds[w], v)
			}
			return true
		})
	}

	// Back-propagation
	for i := len(b.stack) - 1; i >= 0; i-- {
		w := b.stack[i]
		for _, v := range b.preds[w] {
			b.delta[v] += (b.sigma[v] / b.sigma[w]) * (1.0 + b.delta[w])
		}
		if w != source {
			betweenness[w] += b.delta[w]
		}
	}
}

// BetweennessCentrality computes betweenness centrality for all nodes with
// Brandes' algorithm, normalized by (n-1)(n-2). Sources are split into
// partitions; each partition accumulates into its own slice.
func BetweennessCentrality(ctx context.Context, g graph.Graph, cfg CentralityConfig) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := g.NodeCount()
	timer := logging.StartTimer(cfg.logger().With(logging.Algorithm("betweenness")), "betweenness finished", logging.NodeCount(n))

	exec, err := newExecutor(cfg.Concurrency, cfg.MinBatchSize, cfg.RunOptions)
	if err != nil {
		return nil, err
	}
	defer exec.close()

	partitions := exec.partitions(n)
	partial := make([][]float64, len(partitions))
	err = exec.run(ctx, "betweenness", partitions, func(ctx context.Context, p parallel.Partition) error {
		acc := make([]float64, n)
		pass := newBrandesPass(n)
		for source := p.Start; source < p.End(); source++ {
			if err := checkAborted(ctx); err != nil {
				return err
			}
			pass.run(g, source, acc)
		}
		partial[partitionSlot(partitions, p)] = acc
		return nil
	})
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	betweenness := make([]float64, n)
	for _, acc := range partial {
		for i, v := range acc {
			betweenness[i] += v
		}
	}
	if n > 2 {
		norm := 1.0 / float64((n-1)*(n-2))
		for i := range betweenness {
			betweenness[i] *= norm
		}
	}
	timer.End()
	return betweenness, nil
}

// ClosenessCentrality computes closeness centrality for all nodes: the
// number of reachable nodes over the sum of their BFS distances.
func ClosenessCentrality(ctx context.Context, g graph.Graph, cfg CentralityConfig) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := g.NodeCount()
	exec, err := newExecutor(cfg.Concurrency, cfg.MinBatchSize, cfg.RunOptions)
	if err != nil {
		return nil, err
	}
	defer exec.close()

	closeness := make([]float64, n)
	err = exec.run(ctx, "closeness", exec.partitions(n), func(ctx context.Context, p parallel.Partition) error {
		distance := make([]int64, n)
		queue := make([]int64, 0, n)
		for source := p.Start; source < p.End(); source++ {
			if err := checkAborted(ctx); err != nil {
				return err
			}
			for i := range distance {
				distance[i] = -1
			}
			distance[source] = 0
			queue = append(queue[:0], source)

			total, reachable := int64(0), int64(0)
			for head := 0; head < len(queue); head++ {
				v := queue[head]
				g.ForEachRelationship(v, unitWeight, func(_, w int64, _ float64) bool {
					if distance[w] < 0 {
						distance[w] = distance[v] + 1
						total += distance[w]
						reachable++
						queue = append(queue, w)
					}
					return true
				})
			}
			if total > 0 {
				closeness[source] = float64(reachable) / float64(total)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closeness, nil
}

// DegreeCentrality computes degree centrality for all nodes: the adjacency
// count, or weight sum when cfg.Weighted, normalized by n-1.
func DegreeCentrality(g graph.Graph, cfg CentralityConfig) ([]float64, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := g.NodeCount()
	degree := make([]float64, n)
	if n < 2 {
		return degree, nil
	}
	norm := 1.0 / float64(n-1)
	for node := int64(0); node < n; node++ {
		if !cfg.Weighted {
			degree[node] = float64(g.Degree(node)) * norm
			continue
		}
		sum := 0.0
		g.ForEachRelationship(node, cfg.DefaultWeight, func(_, _ int64, w float64) bool {
			sum += w
			return true
		})
		degree[node] = sum * norm
	}
	return degree, nil
}

// CentralityResult contains centrality measures for all nodes.
type CentralityResult struct {
	Betweenness      []float64
	Closeness        []float64
	Degree           []float64
	TopByBetweenness []RankedNode
	TopByCloseness   []RankedNode
	TopByDegree      []RankedNode
}

// ComputeAllCentrality computes betweenness, closeness and degree
// centrality together with their top nodes.
func ComputeAllCentrality(ctx context.Context, g graph.Graph, cfg CentralityConfig) (*CentralityResult, error) {
	betweenness, err := BetweennessCentrality(ctx, g, cfg)
	if err != nil {
		return nil, err
	}
	closeness, err := ClosenessCentrality(ctx, g, cfg)
	if err != nil {
		return nil, err
	}
	degree, err := DegreeCentrality(g, cfg)
	if err != nil {
		return nil, err
	}
	return &CentralityResult{
		Betweenness:      betweenness,
		Closeness:        closeness,
		Degree:           degree,
		TopByBetweenness: findTopNodes(betweenness, cfg.TopN),
		TopByCloseness:   findTopNodes(closeness, cfg.TopN),
		TopByDegree:      findTopNodes(degree, cfg.TopN),
	}, nil
}
