package resilience

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffKind selects how the inter-attempt delay grows.
type BackoffKind int

const (
	// BackoffNone disables delays between attempts.
	BackoffNone BackoffKind = iota
	// BackoffConstant uses BaseDelay for every retry.
	BackoffConstant
	// BackoffLinear grows the delay as BaseDelay * attempt.
	BackoffLinear
	// BackoffExponential doubles the delay each retry, starting at BaseDelay.
	BackoffExponential
)

// String returns the string representation of the backoff kind.
func (k BackoffKind) String() string {
	switch k {
	case BackoffNone:
		return "none"
	case BackoffConstant:
		return "constant"
	case BackoffLinear:
		return "linear"
	case BackoffExponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// DelayPolicy computes the delay before a retry attempt. The zero value
// means no delay. A policy is pure configuration: Compute never mutates it,
// so one policy serves concurrent executions.
type DelayPolicy struct {
	// Kind is the backoff progression.
	Kind BackoffKind

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the computed delay before jitter. Zero means uncapped.
	MaxDelay time.Duration

	// Jitter adds a uniformly random value in [0, delay) to each computed
	// delay, desynchronizing retry storms across independent callers.
	Jitter bool
}

// Validate checks the policy for out-of-range values.
func (p DelayPolicy) Validate() error {
	if p.Kind < BackoffNone || p.Kind > BackoffExponential {
		return fmt.Errorf("unknown backoff kind %d: %w", int(p.Kind), ErrInvalidConfig)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("negative base delay %v: %w", p.BaseDelay, ErrInvalidConfig)
	}
	if p.MaxDelay < 0 {
		return fmt.Errorf("negative max delay %v: %w", p.MaxDelay, ErrInvalidConfig)
	}
	return nil
}

// Compute returns the delay before the given retry. Attempt numbering
// starts at 1 for the first retry; the initial try is attempt 0 and is
// never delayed. The result is always >= 0 and, absent jitter, grows
// monotonically with the attempt number.
func (p DelayPolicy) Compute(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}

	var delay time.Duration
	switch p.Kind {
	case BackoffNone:
		return 0
	case BackoffConstant:
		delay = p.BaseDelay
	case BackoffLinear:
		delay = p.BaseDelay * time.Duration(attempt)
	case BackoffExponential:
		scaled := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
		// float64(math.MaxInt64) rounds up to 2^63, which is out of int64
		// range, so the comparison must saturate on >= to avoid converting
		// an out-of-range value into a negative duration.
		if scaled >= float64(math.MaxInt64) {
			delay = time.Duration(math.MaxInt64)
		} else {
			delay = time.Duration(scaled)
		}
	}

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	if p.Jitter && delay > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		j := time.Duration(rand.Int64N(int64(delay)))
		if delay > math.MaxInt64-j {
			return math.MaxInt64
		}
		delay += j
	}

	return delay
}
