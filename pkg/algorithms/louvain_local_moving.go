package algorithms

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/dd0wney/cluso-graphalgo/pkg/graph"
	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/parallel"
)

// localMoving repeatedly sweeps the nodes of one level graph and moves each
// node to the neighboring community with the best modularity gain.
type localMoving struct {
	g        graph.Graph
	exec     *executor
	progress logging.ProgressLogger

	k  []float64 // weighted degree per node
	m2 float64   // sum of k

	maxIterations  int
	randomNeighbor bool
	randomSeed     uint64
}

type localMovingResult struct {
	communities []int64
	modularity  float64
	iterations  int
	// capped is set when the last permitted sweep still moved nodes.
	capped bool
	// staleProposals counts parallel proposals re-evaluated at commit.
	staleProposals int64
}

func newLocalMoving(g graph.Graph, exec *executor, cfg LouvainConfig) *localMoving {
	k, m2 := weightedDegrees(g)
	return &localMoving{
		g:              g,
		exec:           exec,
		progress:       cfg.progress(),
		k:              k,
		m2:             m2,
		maxIterations:  cfg.MaxIterations,
		randomNeighbor: cfg.RandomNeighbor,
		randomSeed:     cfg.RandomSeed,
	}
}

// run starts from init, whose labels must lie in [0, NodeCount()).
//
// Every sweep commits moves in node order against live community totals,
// so the outcome is that of the sequential algorithm whatever the
// partitioning. With several partitions the batches first propose a move
// for each node against the state at sweep start. The commit pass keeps a
// proposal when nothing it read has changed since and re-evaluates the
// node otherwise.
func (lm *localMoving) run(ctx context.Context, init []int64) (*localMovingResult, error) {
	n := lm.g.NodeCount()
	communities := slices.Clone(init)
	tot := make([]float64, n)
	for node, c := range communities {
		tot[c] += lm.k[node]
	}

	partitions := lm.exec.partitions(n)
	speculate := len(partitions) > 1

	var proposals []int64
	if speculate {
		proposals = make([]int64, n)
	}
	movedNode := make([]bool, n)
	changed := make([]bool, n)
	committer := lm.newMoveEvaluator()

	res := &localMovingResult{capped: true}
	for iteration := 0; iteration < lm.maxIterations; iteration++ {
		res.iterations++
		lm.progress.Reset("Louvain :: local moving", n)

		if speculate {
			err := lm.exec.run(ctx, "local_moving", partitions, func(ctx context.Context, p parallel.Partition) error {
				e := lm.newMoveEvaluator()
				for node := p.Start; node < p.End(); node++ {
					if (node-p.Start)%RunCheckNodeCount == 0 {
						if err := checkAborted(ctx); err != nil {
							return err
						}
					}
					proposals[node] = e.bestCommunity(node, communities, tot, iteration)
				}
				lm.progress.LogProgress(p.Count)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}

		clear(movedNode)
		clear(changed)
		moved := false
		for node := int64(0); node < n; node++ {
			if node%RunCheckNodeCount == 0 {
				if err := checkAborted(ctx); err != nil {
					return nil, err
				}
			}

			var best int64
			switch {
			case !speculate:
				best = committer.bestCommunity(node, communities, tot, iteration)
			case lm.stale(node, communities, movedNode, changed):
				best = committer.bestCommunity(node, communities, tot, iteration)
				res.staleProposals++
			default:
				best = proposals[node]
			}

			cur := communities[node]
			if best == cur {
				continue
			}
			ki := lm.k[node]
			tot[cur] -= ki
			tot[best] += ki
			communities[node] = best
			movedNode[node] = true
			changed[cur] = true
			changed[best] = true
			moved = true
		}
		if !speculate {
			lm.progress.LogProgress(n)
		}
		lm.progress.Done()

		if !moved {
			res.capped = false
			break
		}
	}

	res.communities = communities
	res.modularity = denseModularity(lm.g, communities, lm.k, lm.m2)
	return res, nil
}

// stale reports whether a proposal for node may differ from a fresh
// evaluation: a neighbor moved this sweep, or the total of the node's own
// community or of a neighbor's community changed.
func (lm *localMoving) stale(node int64, communities []int64, movedNode, changed []bool) bool {
	if changed[communities[node]] {
		return true
	}
	stale := false
	lm.g.ForEachRelationship(node, unitWeight, func(_, target int64, _ float64) bool {
		if movedNode[target] || changed[communities[target]] {
			stale = true
			return false
		}
		return true
	})
	return stale
}

// moveEvaluator holds the scratch space for picking a node's best
// community. One evaluator is used by one goroutine at a time.
type moveEvaluator struct {
	lm              *localMoving
	neighborWeights map[int64]float64
	order           []int64
	pcg             *rand.PCG
	rng             *rand.Rand
}

func (lm *localMoving) newMoveEvaluator() *moveEvaluator {
	e := &moveEvaluator{
		lm:              lm,
		neighborWeights: make(map[int64]float64),
	}
	if lm.randomNeighbor {
		e.pcg = rand.NewPCG(lm.randomSeed, 0)
		e.rng = rand.New(e.pcg)
	}
	return e
}

// bestCommunity returns the community that maximizes the modularity gain of
// node, or its current community when no move strictly improves it. It only
// reads communities and tot.
func (e *moveEvaluator) bestCommunity(node int64, communities []int64, tot []float64, iteration int) int64 {
	lm := e.lm
	ki := lm.k[node]
	cur := communities[node]

	clear(e.neighborWeights)
	e.order = e.order[:0]
	lm.g.ForEachRelationship(node, unitWeight, func(_, target int64, w float64) bool {
		if target == node {
			return true
		}
		c := communities[target]
		if _, seen := e.neighborWeights[c]; !seen {
			e.order = append(e.order, c)
		}
		e.neighborWeights[c] += w
		return true
	})
	if e.rng != nil {
		// Seeded per node so proposal and re-evaluation shuffle alike.
		e.pcg.Seed(lm.randomSeed, uint64(node)<<16^uint64(iteration))
		e.rng.Shuffle(len(e.order), func(i, j int) {
			e.order[i], e.order[j] = e.order[j], e.order[i]
		})
	}

	best := cur
	bestGain := e.neighborWeights[cur] - (tot[cur]-ki)*ki/lm.m2
	for _, c := range e.order {
		if c == cur {
			continue
		}
		gain := e.neighborWeights[c] - tot[c]*ki/lm.m2
		if gain > bestGain {
			best, bestGain = c, gain
		}
	}
	return best
}
