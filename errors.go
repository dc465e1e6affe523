package resilience

import (
	"context"
	"errors"
)

// Sentinel errors for resilience operations.
var (
	// ErrCircuitOpen is returned when a circuit breaker rejects a call
	// because it is open or isolated, without invoking the operation.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrInvalidConfig is returned (wrapped) by constructors and the
	// pipeline builder when a configuration value is out of range.
	// Configuration errors are surfaced at build time, never mid-execution.
	ErrInvalidConfig = errors.New("resilience: invalid configuration")
)

// IsCancellation reports whether err originates from context cancellation
// or deadline expiry. Cancellation faults are not handleable by the default
// predicate and unwind the whole pipeline.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
