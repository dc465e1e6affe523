package resilience

import (
	"context"
	"fmt"
	"time"
)

// UnlimitedRetries removes the retry ceiling. An unbounded budget is an
// explicit opt-in: the caller is responsible for pairing it with a
// reachable termination condition, such as an outer circuit breaker or
// context cancellation.
const UnlimitedRetries = -1

// RetryConfig configures the retry strategy. It is immutable after
// construction and shared by every execution through the strategy instance;
// per-execution counters live in the execution, not here.
type RetryConfig[T any] struct {
	// ShouldHandle classifies outcomes that trigger a retry.
	// Default: any error except cancellation.
	ShouldHandle Predicate[T]

	// MaxRetries bounds the number of retries after the initial attempt.
	// Zero runs the operation exactly once. UnlimitedRetries removes the
	// ceiling.
	MaxRetries int

	// Delay computes the wait before each retry.
	Delay DelayPolicy

	// OnRetry fires exactly once per retry, after the handled outcome and
	// before the delay. Attempt numbering starts at 1 for the first retry.
	// The callback runs on the calling execution path and must not block.
	OnRetry func(attempt int, delay time.Duration, outcome Outcome[T])
}

// Retry re-invokes a failed operation until the outcome is not handleable,
// the budget is exhausted, or the context is canceled. Instances hold no
// mutable state and may be reused concurrently.
type Retry[T any] struct {
	config RetryConfig[T]
	sleep  func(context.Context, time.Duration) error
}

// NewRetry creates a retry strategy, validating the configuration.
func NewRetry[T any](config RetryConfig[T]) (*Retry[T], error) {
	if config.MaxRetries < 0 && config.MaxRetries != UnlimitedRetries {
		return nil, fmt.Errorf("negative max retries %d: %w", config.MaxRetries, ErrInvalidConfig)
	}
	if err := config.Delay.Validate(); err != nil {
		return nil, err
	}
	if config.ShouldHandle == nil {
		config.ShouldHandle = HandleAll[T]()
	}

	return &Retry[T]{config: config, sleep: sleepContext}, nil
}

// Config returns the retry configuration.
func (r *Retry[T]) Config() RetryConfig[T] {
	return r.config
}

// Execute runs the operation with retry semantics. The returned error is
// the last handled fault on exhaustion, the first non-handleable fault, or
// the context's error if cancellation fires before an attempt or during an
// inter-attempt delay.
func (r *Retry[T]) Execute(ctx context.Context, op Operation[T]) (T, error) {
	ctx, _ = ensureExecution(ctx)

	var zero T
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := op(withAttempt(ctx, attempt))
		outcome := Outcome[T]{Result: value, Err: err}

		if !r.config.ShouldHandle(outcome) {
			return value, err
		}
		if r.config.MaxRetries != UnlimitedRetries && attempt >= r.config.MaxRetries {
			// Budget exhausted: the last handled outcome passes through as-is.
			return value, err
		}

		retry := attempt + 1
		delay := r.config.Delay.Compute(retry)
		if r.config.OnRetry != nil {
			r.config.OnRetry(retry, delay, outcome)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// sleepContext suspends for d, aborting with the context's error if it
// fires first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
