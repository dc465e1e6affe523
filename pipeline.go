package resilience

import (
	"context"
	"errors"
)

// Strategy wraps an operation and may alter its failure, retry, or
// short-circuit behavior. Implementations must be safe for concurrent use.
type Strategy[T any] interface {
	Execute(ctx context.Context, op Operation[T]) (T, error)
}

// Pipeline is an ordered composition of strategies, outermost first,
// presented as a single callable with the operation's signature. It is
// immutable after Build and may be shared by concurrent executions;
// only a breaker's internal state is ever contended.
type Pipeline[T any] struct {
	strategies []Strategy[T]
}

// Execute threads the operation through each strategy from outermost to
// innermost. A fresh execution context is attached unless the caller
// already supplied one.
func (p *Pipeline[T]) Execute(ctx context.Context, op Operation[T]) (T, error) {
	ctx, _ = ensureExecution(ctx)

	execute := op
	for i := len(p.strategies) - 1; i >= 0; i-- {
		strategy, inner := p.strategies[i], execute
		execute = func(ctx context.Context) (T, error) {
			return strategy.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}

// ExecuteOutcome is the outcome-valued surface over the same core: it runs
// Execute and captures the result or fault as an Outcome.
func (p *Pipeline[T]) ExecuteOutcome(ctx context.Context, op Operation[T]) Outcome[T] {
	value, err := p.Execute(ctx, op)
	return Outcome[T]{Result: value, Err: err}
}

// Len returns the number of composed strategies.
func (p *Pipeline[T]) Len() int {
	return len(p.strategies)
}

// Builder assembles a pipeline. Strategies are appended outermost first;
// Build validates the accumulated configuration and seals the pipeline.
// Invalid configuration fails at build time, never at execution time.
type Builder[T any] struct {
	strategies []Strategy[T]
	errs       []error
}

// NewBuilder creates an empty pipeline builder.
func NewBuilder[T any]() *Builder[T] {
	return &Builder[T]{}
}

// AddRetry appends a retry strategy built from config.
func (b *Builder[T]) AddRetry(config RetryConfig[T]) *Builder[T] {
	r, err := NewRetry(config)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.strategies = append(b.strategies, r)
	return b
}

// AddCircuitBreaker appends a circuit breaker built from config. To share
// one breaker across pipelines, construct it with NewCircuitBreaker and
// append it with Add.
func (b *Builder[T]) AddCircuitBreaker(config CircuitBreakerConfig[T]) *Builder[T] {
	cb, err := NewCircuitBreaker(config)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.strategies = append(b.strategies, cb)
	return b
}

// Add appends a prebuilt strategy.
func (b *Builder[T]) Add(s Strategy[T]) *Builder[T] {
	if s == nil {
		b.errs = append(b.errs, errors.New("resilience: nil strategy"))
		return b
	}
	b.strategies = append(b.strategies, s)
	return b
}

// Build seals the pipeline. It returns every configuration error gathered
// while appending strategies, joined.
func (b *Builder[T]) Build() (*Pipeline[T], error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	strategies := make([]Strategy[T], len(b.strategies))
	copy(strategies, b.strategies)
	return &Pipeline[T]{strategies: strategies}, nil
}
