package logging

import (
	"sync"
	"sync/atomic"
)

// ProgressLogger reports percentage progress of a long-running task. Calls
// from concurrent workers are safe; a message is emitted at most once per
// step percent.
type ProgressLogger interface {
	// LogProgress records delta completed units of work.
	LogProgress(delta int64)
	// Reset starts a new phase with the given task name and volume.
	Reset(task string, volume int64)
	// Done logs completion of the current phase.
	Done()
}

// NewProgressLogger creates a progress logger writing to logger at DEBUG.
// step is the minimum percentage between two messages; values outside
// (0, 100] default to 10.
func NewProgressLogger(logger Logger, step int) ProgressLogger {
	if step <= 0 || step > 100 {
		step = 10
	}
	return &progressLogger{logger: OrNop(logger), step: int64(step)}
}

type progressLogger struct {
	logger Logger
	step   int64

	mu       sync.Mutex
	task     string
	volume   int64
	done     atomic.Int64
	reported atomic.Int64 // last reported percentage
}

func (p *progressLogger) Reset(task string, volume int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.task = task
	p.volume = volume
	p.done.Store(0)
	p.reported.Store(0)
	p.logger.Debug(task+" :: start", Int64("volume", volume))
}

func (p *progressLogger) LogProgress(delta int64) {
	done := p.done.Add(delta)

	p.mu.Lock()
	volume, task := p.volume, p.task
	p.mu.Unlock()
	if volume <= 0 {
		return
	}

	percent := done * 100 / volume
	if percent > 100 {
		percent = 100
	}
	for {
		last := p.reported.Load()
		if percent-last < p.step {
			return
		}
		if p.reported.CompareAndSwap(last, percent) {
			p.logger.Debug(task, Int64("percent", percent))
			return
		}
	}
}

func (p *progressLogger) Done() {
	p.mu.Lock()
	task := p.task
	p.mu.Unlock()
	p.logger.Debug(task+" :: finished", Int64("processed", p.done.Load()))
}

// NopProgress discards progress.
type NopProgress struct{}

func (NopProgress) LogProgress(int64)    {}
func (NopProgress) Reset(string, int64) {}
func (NopProgress) Done()               {}
