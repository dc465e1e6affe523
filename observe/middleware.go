package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/resilience"
)

// ExecuteFunc is the signature for pipeline execution functions.
// This is the standard function signature that Middleware wraps.
type ExecuteFunc func(ctx context.Context) error

// Middleware wraps pipeline execution with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
// The returned function attaches a fresh execution to the context if the
// caller has not supplied one, so the correlation ID appears in logs.
func (m *Middleware) Wrap(meta Meta, fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context) error {
		if _, ok := resilience.ExecutionFromContext(ctx); !ok {
			ctx = resilience.WithExecution(ctx, resilience.NewExecution())
		}

		ctx, span := m.tracer.StartSpan(ctx, meta)

		start := time.Now()

		err := fn(ctx)

		duration := time.Since(start)

		// EndSpan records error status when err != nil.
		m.tracer.EndSpan(span, err)

		m.metrics.RecordExecution(ctx, meta, duration, err)

		logger := m.logger.WithPipeline(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if exec, ok := resilience.ExecutionFromContext(ctx); ok {
			fields = append(fields, Field{Key: "execution_id", Value: exec.ID()})
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			logger.Error(ctx, "pipeline execution failed", fields...)
		} else {
			logger.Info(ctx, "pipeline execution completed", fields...)
		}

		return err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
