package resilience

import "errors"

// Predicate classifies an outcome as handleable by a strategy. Predicates
// must be side-effect-free and total: they are shared read-only by every
// execution through a strategy instance and may run concurrently.
type Predicate[T any] func(Outcome[T]) bool

// HandleAll returns the default predicate: any error is handleable except
// cancellation faults.
func HandleAll[T any]() Predicate[T] {
	return func(o Outcome[T]) bool {
		return o.Err != nil && !IsCancellation(o.Err)
	}
}

// HandleErrors returns a predicate matching outcomes whose error is one of
// the given targets (via errors.Is).
func HandleErrors[T any](targets ...error) Predicate[T] {
	return func(o Outcome[T]) bool {
		if o.Err == nil {
			return false
		}
		for _, target := range targets {
			if errors.Is(o.Err, target) {
				return true
			}
		}
		return false
	}
}

// HandleIf adapts an arbitrary classification function into a predicate.
// fn must be pure.
func HandleIf[T any](fn func(Outcome[T]) bool) Predicate[T] {
	return Predicate[T](fn)
}

// And returns a predicate satisfied only when both p and q match.
func (p Predicate[T]) And(q Predicate[T]) Predicate[T] {
	return func(o Outcome[T]) bool {
		return p(o) && q(o)
	}
}

// Or returns a predicate satisfied when either p or q matches.
func (p Predicate[T]) Or(q Predicate[T]) Predicate[T] {
	return func(o Outcome[T]) bool {
		return p(o) || q(o)
	}
}

// Not inverts the predicate.
func (p Predicate[T]) Not() Predicate[T] {
	return func(o Outcome[T]) bool {
		return !p(o)
	}
}

// ExceptBrokenCircuit narrows the predicate so that broken-circuit faults
// are not handleable. A retry strategy composed outside a circuit breaker
// should use this so an open breaker produces fast failure instead of
// useless retries.
func (p Predicate[T]) ExceptBrokenCircuit() Predicate[T] {
	return func(o Outcome[T]) bool {
		if errors.Is(o.Err, ErrCircuitOpen) {
			return false
		}
		return p(o)
	}
}
