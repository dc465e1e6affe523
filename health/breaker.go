package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/resilience"
)

// StateReporter reports the current state of a circuit breaker. Every
// CircuitBreaker satisfies it.
type StateReporter interface {
	State() resilience.State
}

// MetricsReporter optionally exposes window counters alongside the state.
// Checkers use it to enrich the health result details.
type MetricsReporter interface {
	Metrics() resilience.CircuitMetrics
}

// BreakerChecker reports the health of a single circuit breaker. A closed
// breaker is healthy, a half-open breaker is degraded while the trial call
// is in flight, and an open or isolated breaker is unhealthy.
type BreakerChecker struct {
	name     string
	reporter StateReporter
}

// NewBreakerChecker creates a checker for the given breaker.
func NewBreakerChecker(name string, reporter StateReporter) *BreakerChecker {
	return &BreakerChecker{name: name, reporter: reporter}
}

// Name returns the name of this checker.
func (c *BreakerChecker) Name() string {
	return c.name
}

// Check maps the breaker state to a health result.
func (c *BreakerChecker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	state := c.reporter.State()

	details := map[string]any{
		"state": state.String(),
	}
	if mr, ok := c.reporter.(MetricsReporter); ok {
		m := mr.Metrics()
		details["samples"] = m.Samples
		details["failures"] = m.Failures
	}

	switch state {
	case resilience.StateClosed:
		return Healthy("circuit closed").WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, trial in progress").WithDetails(details)
	case resilience.StateIsolated:
		return Unhealthy("circuit isolated by operator", resilience.ErrCircuitOpen).WithDetails(details)
	default:
		return Unhealthy(
			fmt.Sprintf("circuit %s, rejecting calls", state),
			resilience.ErrCircuitOpen,
		).WithDetails(details)
	}
}
