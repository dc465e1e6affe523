package resilience

import "context"

// Operation is a fallible unit of work executed through a strategy or
// pipeline. Implementations should honor ctx cancellation.
type Operation[T any] func(ctx context.Context) (T, error)

// Outcome captures the result of one execution attempt: either a value or
// an error. It is immutable once constructed and owned by the attempt that
// produced it.
type Outcome[T any] struct {
	// Result is the value produced by the attempt. Meaningful only when
	// Err is nil, unless the operation returns partial results.
	Result T

	// Err is the fault captured from the attempt, nil on success.
	Err error
}

// Success creates a successful outcome carrying v.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Result: v}
}

// Failure creates a failed outcome carrying err.
func Failure[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// Succeeded reports whether the attempt produced no error.
func (o Outcome[T]) Succeeded() bool {
	return o.Err == nil
}

// Failed reports whether the attempt produced an error.
func (o Outcome[T]) Failed() bool {
	return o.Err != nil
}
