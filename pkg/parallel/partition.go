package parallel

import (
	"context"
	"fmt"
	"sync"

	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

// DefaultMinBatchSize is the smallest node range handed to one task unless
// configured otherwise.
const DefaultMinBatchSize = 10_000

// Partition is a contiguous node range [Start, Start+Count).
type Partition struct {
	Start int64
	Count int64
}

// End returns the exclusive end of the range.
func (p Partition) End() int64 {
	return p.Start + p.Count
}

// AdjustedBatchSize splits nodeCount across concurrency workers without
// going below minBatchSize.
func AdjustedBatchSize(nodeCount int64, concurrency int, minBatchSize int64) int64 {
	concurrency = validation.DefaultOrInt(concurrency, 1)
	minBatchSize = validation.DefaultOrInt64(minBatchSize, 1)
	size := (nodeCount + int64(concurrency) - 1) / int64(concurrency)
	if size < minBatchSize {
		size = minBatchSize
	}
	return size
}

// RangePartition covers [0, nodeCount) with contiguous partitions.
func RangePartition(nodeCount int64, concurrency int, minBatchSize int64) []Partition {
	if nodeCount <= 0 {
		return nil
	}
	size := AdjustedBatchSize(nodeCount, concurrency, minBatchSize)
	partitions := make([]Partition, 0, (nodeCount+size-1)/size)
	for start := int64(0); start < nodeCount; start += size {
		count := size
		if start+count > nodeCount {
			count = nodeCount - start
		}
		partitions = append(partitions, Partition{Start: start, Count: count})
	}
	return partitions
}

// RunPartitions runs fn for every partition on pool and returns once all of
// them have finished. The first error, including a recovered panic, is
// returned. Cancellation stops further submissions; partitions already
// running observe ctx themselves.
func RunPartitions(ctx context.Context, pool *WorkerPool, partitions []Partition, fn func(ctx context.Context, p Partition) error) error {
	if len(partitions) == 1 {
		return runOne(ctx, partitions[0], fn)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, p := range partitions {
		if err := ctx.Err(); err != nil {
			record(err)
			break
		}
		wg.Add(1)
		err := pool.SubmitContext(ctx, func() {
			defer wg.Done()
			if err := runOne(ctx, p, fn); err != nil {
				record(err)
			}
		})
		if err != nil {
			wg.Done()
			record(err)
			break
		}
	}

	wg.Wait()
	return firstErr
}

func runOne(ctx context.Context, p Partition, fn func(ctx context.Context, p Partition) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("partition [%d, %d): panic: %v", p.Start, p.End(), r)
		}
	}()
	return fn(ctx, p)
}
