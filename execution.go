package resilience

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Execution carries per-call state threaded through a pipeline: a
// correlation ID and an arbitrary property bag for telemetry callbacks.
// One Execution is created for each top-level Execute and discarded when
// it returns; it is never shared across calls.
type Execution struct {
	id string

	mu    sync.RWMutex
	props map[string]any
}

// NewExecution creates an execution with a fresh correlation ID.
func NewExecution() *Execution {
	return &Execution{id: uuid.NewString()}
}

// ID returns the execution's correlation ID.
func (e *Execution) ID() string {
	return e.id
}

// SetProperty stores an arbitrary key/value on the execution, typically
// from a telemetry callback.
func (e *Execution) SetProperty(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.props == nil {
		e.props = make(map[string]any)
	}
	e.props[key] = value
}

// Property retrieves a value stored with SetProperty.
func (e *Execution) Property(key string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.props[key]
	return v, ok
}

type executionKey struct{}
type attemptKey struct{}

// WithExecution returns a context carrying the execution.
func WithExecution(ctx context.Context, e *Execution) context.Context {
	return context.WithValue(ctx, executionKey{}, e)
}

// ExecutionFromContext returns the execution attached to ctx, if any.
func ExecutionFromContext(ctx context.Context) (*Execution, bool) {
	e, ok := ctx.Value(executionKey{}).(*Execution)
	return e, ok
}

// AttemptFromContext returns the zero-based attempt number of the current
// invocation. The initial try is attempt 0; retries count up from there.
func AttemptFromContext(ctx context.Context) (int, bool) {
	n, ok := ctx.Value(attemptKey{}).(int)
	return n, ok
}

func withAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptKey{}, attempt)
}

// ensureExecution attaches a fresh execution unless ctx already carries one.
func ensureExecution(ctx context.Context) (context.Context, *Execution) {
	if e, ok := ExecutionFromContext(ctx); ok {
		return ctx, e
	}
	e := NewExecution()
	return WithExecution(ctx, e), e
}
