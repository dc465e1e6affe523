package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check timed out.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrBreakerNotFound indicates no checker is registered under the name.
	ErrBreakerNotFound = errors.New("health: breaker not found")
)
