package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/resilience"
)

// RetryHook builds an OnRetry callback that records each retry attempt
// as telemetry. Assign the result to RetryConfig.OnRetry.
func RetryHook[T any](m *Middleware, meta Meta) func(attempt int, delay time.Duration, outcome resilience.Outcome[T]) {
	logger := m.logger.WithPipeline(meta)
	return func(attempt int, delay time.Duration, outcome resilience.Outcome[T]) {
		ctx := context.Background()
		m.metrics.RecordRetry(ctx, meta, attempt)

		fields := []Field{
			{Key: "retry.attempt", Value: attempt},
			{Key: "retry.delay_ms", Value: float64(delay.Milliseconds())},
		}
		if outcome.Err != nil {
			fields = append(fields, Field{Key: "error", Value: outcome.Err.Error()})
		}
		logger.Warn(ctx, "retrying operation", fields...)
	}
}

// BreakerCallbacks bundles the circuit breaker transition callbacks
// produced by BreakerHooks. Assign the fields to the matching
// CircuitBreakerConfig fields.
type BreakerCallbacks struct {
	OnOpened     func(from resilience.State)
	OnClosed     func(from resilience.State)
	OnHalfOpened func()
}

// BreakerHooks builds transition callbacks that record circuit breaker
// state changes as telemetry. The callbacks only record and log; they
// never call back into the breaker.
func BreakerHooks(m *Middleware, meta Meta) BreakerCallbacks {
	logger := m.logger.WithPipeline(meta)
	return BreakerCallbacks{
		OnOpened: func(from resilience.State) {
			ctx := context.Background()
			m.metrics.RecordStateChange(ctx, meta, from, resilience.StateOpen)
			logger.Warn(ctx, "circuit breaker opened",
				Field{Key: "breaker.from", Value: from.String()},
			)
		},
		OnClosed: func(from resilience.State) {
			ctx := context.Background()
			m.metrics.RecordStateChange(ctx, meta, from, resilience.StateClosed)
			logger.Info(ctx, "circuit breaker closed",
				Field{Key: "breaker.from", Value: from.String()},
			)
		},
		OnHalfOpened: func() {
			ctx := context.Background()
			m.metrics.RecordStateChange(ctx, meta, resilience.StateOpen, resilience.StateHalfOpen)
			logger.Info(ctx, "circuit breaker half-opened")
		},
	}
}
