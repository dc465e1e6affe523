package resilience

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls flow through and outcomes are recorded.
	StateClosed State = iota
	// StateOpen means calls are rejected until the break duration elapses.
	StateOpen
	// StateHalfOpen means a single trial call probes for recovery.
	StateHalfOpen
	// StateIsolated means the breaker was manually forced open and rejects
	// everything until Reset.
	StateIsolated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	case StateIsolated:
		return "isolated"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker. Immutable after
// construction.
type CircuitBreakerConfig[T any] struct {
	// ShouldHandle classifies outcomes counted as failures.
	// Default: any error except cancellation.
	ShouldHandle Predicate[T]

	// FailureRatio is the handled-failure ratio in (0, 1] at which the
	// circuit opens. Default: 0.5.
	FailureRatio float64

	// MinimumThroughput is the minimum number of samples in the window
	// before the ratio is evaluated, guarding against opening on an
	// insignificant sample. Must be >= 2. Default: 10.
	MinimumThroughput int

	// SamplingDuration is the length of the rolling outcome window while
	// closed. Default: 30s.
	SamplingDuration time.Duration

	// BreakDuration is how long the circuit stays open before a trial
	// call is allowed. Default: 5s.
	BreakDuration time.Duration

	// OnOpened fires when the circuit opens or is isolated, with the
	// state it left. Callbacks run inline while the breaker lock is held:
	// they must not block and must not call back into the breaker.
	OnOpened func(from State)

	// OnClosed fires when the circuit closes, with the state it left.
	OnClosed func(from State)

	// OnHalfOpened fires when an open circuit admits a trial call.
	OnHalfOpened func()
}

// CircuitBreaker short-circuits calls to an unhealthy dependency. Its
// window and state are the only mutable shared state in this package,
// guarded by a mutex so one instance serves any number of concurrent
// executions.
type CircuitBreaker[T any] struct {
	config CircuitBreakerConfig[T]
	clock  func() time.Time

	mu            sync.Mutex
	state         State
	generation    uint64
	samples       int
	failures      int
	windowStart   time.Time
	openedAt      time.Time
	trialInFlight bool
}

// NewCircuitBreaker creates a circuit breaker, validating the configuration.
func NewCircuitBreaker[T any](config CircuitBreakerConfig[T]) (*CircuitBreaker[T], error) {
	if config.FailureRatio == 0 {
		config.FailureRatio = 0.5
	}
	if config.FailureRatio < 0 || config.FailureRatio > 1 {
		return nil, fmt.Errorf("failure ratio %v outside (0, 1]: %w", config.FailureRatio, ErrInvalidConfig)
	}
	if config.MinimumThroughput == 0 {
		config.MinimumThroughput = 10
	}
	if config.MinimumThroughput < 2 {
		return nil, fmt.Errorf("minimum throughput %d below 2: %w", config.MinimumThroughput, ErrInvalidConfig)
	}
	if config.SamplingDuration < 0 {
		return nil, fmt.Errorf("negative sampling duration %v: %w", config.SamplingDuration, ErrInvalidConfig)
	}
	if config.SamplingDuration == 0 {
		config.SamplingDuration = 30 * time.Second
	}
	if config.BreakDuration < 0 {
		return nil, fmt.Errorf("negative break duration %v: %w", config.BreakDuration, ErrInvalidConfig)
	}
	if config.BreakDuration == 0 {
		config.BreakDuration = 5 * time.Second
	}
	if config.ShouldHandle == nil {
		config.ShouldHandle = HandleAll[T]()
	}

	cb := &CircuitBreaker[T]{
		config: config,
		clock:  time.Now,
		state:  StateClosed,
	}
	cb.windowStart = cb.clock()
	return cb, nil
}

// Execute runs the operation through the circuit breaker. It fails fast
// with ErrCircuitOpen while open or isolated, otherwise delegates to the
// operation and records the outcome.
func (cb *CircuitBreaker[T]) Execute(ctx context.Context, op Operation[T]) (T, error) {
	ctx, _ = ensureExecution(ctx)

	gen, err := cb.acquire()
	if err != nil {
		var zero T
		return zero, err
	}

	recorded := false
	defer func() {
		if !recorded {
			// An abandoned attempt (panic in the operation) counts as a
			// handled failure so a half-open trial cannot wedge the breaker.
			cb.record(gen, true)
		}
	}()

	value, opErr := op(ctx)
	recorded = true
	cb.record(gen, cb.config.ShouldHandle(Outcome[T]{Result: value, Err: opErr}))
	return value, opErr
}

// State returns the current state, applying any pending lazy transition.
func (cb *CircuitBreaker[T]) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked(cb.clock())
}

// Isolate manually forces the circuit open. It rejects every call until
// Reset is called.
func (cb *CircuitBreaker[T]) Isolate() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != StateIsolated {
		cb.transitionLocked(StateIsolated, cb.clock())
	}
}

// Reset closes the circuit and clears the window.
func (cb *CircuitBreaker[T]) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state != StateClosed {
		cb.transitionLocked(StateClosed, cb.clock())
		return
	}
	cb.resetWindowLocked(cb.clock())
}

// CircuitMetrics is a snapshot of the breaker's window.
type CircuitMetrics struct {
	State       State
	Samples     int
	Failures    int
	WindowStart time.Time
}

// Metrics returns a snapshot of the breaker's current window.
func (cb *CircuitBreaker[T]) Metrics() CircuitMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitMetrics{
		State:       cb.currentStateLocked(cb.clock()),
		Samples:     cb.samples,
		Failures:    cb.failures,
		WindowStart: cb.windowStart,
	}
}

// acquire admits or rejects a call before the operation runs. It returns
// the generation the admission belongs to, so a result arriving after a
// state change or window rollover is discarded as stale.
func (cb *CircuitBreaker[T]) acquire() (uint64, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked(cb.clock()) {
	case StateOpen, StateIsolated:
		return 0, ErrCircuitOpen
	case StateHalfOpen:
		if cb.trialInFlight {
			return 0, ErrCircuitOpen
		}
		cb.trialInFlight = true
	}

	return cb.generation, nil
}

// record folds an outcome into the window. handled reports whether the
// predicate classified it as a failure.
func (cb *CircuitBreaker[T]) record(gen uint64, handled bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.clock()
	if gen != cb.generation {
		return
	}

	switch cb.state {
	case StateClosed:
		cb.samples++
		if handled {
			cb.failures++
		}
		if cb.samples >= cb.config.MinimumThroughput &&
			float64(cb.failures)/float64(cb.samples) >= cb.config.FailureRatio {
			cb.transitionLocked(StateOpen, now)
		}

	case StateHalfOpen:
		cb.trialInFlight = false
		if handled {
			cb.transitionLocked(StateOpen, now)
		} else {
			cb.transitionLocked(StateClosed, now)
		}
	}
}

// currentStateLocked applies lazy transitions: an elapsed break admits the
// next call as a half-open trial, and an elapsed sampling window starts a
// fresh one.
func (cb *CircuitBreaker[T]) currentStateLocked(now time.Time) State {
	switch cb.state {
	case StateOpen:
		if now.Sub(cb.openedAt) >= cb.config.BreakDuration {
			cb.transitionLocked(StateHalfOpen, now)
		}
	case StateClosed:
		if now.Sub(cb.windowStart) >= cb.config.SamplingDuration {
			cb.resetWindowLocked(now)
		}
	}
	return cb.state
}

func (cb *CircuitBreaker[T]) transitionLocked(to State, now time.Time) {
	from := cb.state
	cb.state = to
	cb.resetWindowLocked(now)
	cb.trialInFlight = false

	switch to {
	case StateOpen, StateIsolated:
		cb.openedAt = now
		if cb.config.OnOpened != nil {
			cb.config.OnOpened(from)
		}
	case StateClosed:
		if cb.config.OnClosed != nil {
			cb.config.OnClosed(from)
		}
	case StateHalfOpen:
		if cb.config.OnHalfOpened != nil {
			cb.config.OnHalfOpened()
		}
	}
}

// resetWindowLocked starts a fresh outcome window. Bumping the generation
// invalidates results still in flight from the previous window.
func (cb *CircuitBreaker[T]) resetWindowLocked(now time.Time) {
	cb.generation++
	cb.samples = 0
	cb.failures = 0
	cb.windowStart = now
}
