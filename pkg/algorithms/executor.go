package algorithms

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-graphalgo/pkg/logging"
	"github.com/dd0wney/cluso-graphalgo/pkg/metrics"
	"github.com/dd0wney/cluso-graphalgo/pkg/parallel"
)

// executor owns the worker pool of one algorithm run and runs phases as
// barrier-joined batches of partition tasks.
type executor struct {
	pool    *parallel.WorkerPool
	logger  logging.Logger
	metrics *metrics.Registry

	concurrency  int
	minBatchSize int64
}

func newExecutor(concurrency int, minBatchSize int64, opts RunOptions) (*executor, error) {
	pool, err := parallel.NewWorkerPool(concurrency, parallel.WithLogger(opts.logger()))
	if err != nil {
		return nil, err
	}
	return &executor{
		pool:         pool,
		logger:       opts.logger(),
		metrics:      opts.Metrics,
		concurrency:  concurrency,
		minBatchSize: minBatchSize,
	}, nil
}

func (e *executor) close() {
	e.pool.Close()
}

func (e *executor) partitions(nodeCount int64) []parallel.Partition {
	return parallel.RangePartition(nodeCount, e.concurrency, e.minBatchSize)
}

// run executes fn over partitions and waits for all of them.
func (e *executor) run(ctx context.Context, phase string, partitions []parallel.Partition, fn func(ctx context.Context, p parallel.Partition) error) error {
	if err := checkAborted(ctx); err != nil {
		return err
	}
	start := time.Now()
	err := parallel.RunPartitions(ctx, e.pool, partitions, fn)
	e.metrics.RecordParallelPhase(phase, len(partitions), time.Since(start))
	return wrapAbort(ctx, err)
}

// partitionSlot returns the position of p in partitions.
func partitionSlot(partitions []parallel.Partition, p parallel.Partition) int {
	for i := range partitions {
		if partitions[i] == p {
			return i
		}
	}
	return 0
}
