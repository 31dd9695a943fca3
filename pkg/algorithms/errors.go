package algorithms

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-graphalgo/pkg/validation"
)

var (
	// ErrInvalidConfig marks configuration errors detected before any
	// computation starts.
	ErrInvalidConfig = validation.ErrInvalidConfig

	// ErrAborted marks a computation stopped by cancellation. Errors
	// wrapping it also wrap the context's error.
	ErrAborted = errors.New("computation aborted")
)

// ConfigError describes one rejected configuration parameter.
type ConfigError struct {
	Algorithm string
	Parameter string
	Value     any
	Reason    string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: invalid %s: %s", e.Algorithm, e.Parameter, e.Reason)
	}
	return fmt.Sprintf("%s: invalid %s (%v): %s", e.Algorithm, e.Parameter, e.Value, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidConfig) hold.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// RunCheckNodeCount is how many nodes a worker processes between two
// cancellation checks.
const RunCheckNodeCount = 10_000

func aborted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrAborted, context.Cause(ctx))
}

// checkAborted returns an aborted error if ctx is done.
func checkAborted(ctx context.Context) error {
	if ctx.Err() != nil {
		return aborted(ctx)
	}
	return nil
}

// wrapAbort converts a bare context error surfaced by a helper into an
// aborted error.
func wrapAbort(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, ErrAborted) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return aborted(ctx)
	}
	return err
}
