// Package resilience executes fallible operations through composable
// resilience strategies.
//
// A strategy wraps an operation and may alter its failure behavior: the
// Retry strategy re-invokes a failed operation with configurable backoff,
// and the CircuitBreaker strategy stops calling a dependency that looks
// unhealthy until a cool-down elapses. Strategies compose into a Pipeline
// that presents the same callable surface as the wrapped operation.
//
// # Outcomes and predicates
//
// Every attempt produces an Outcome[T]: either a result value or an error.
// Each strategy owns a Predicate[T] deciding which outcomes it handles.
// Outcomes the predicate does not classify as handleable propagate to the
// caller unchanged; a strategy never swallows a fault it was not configured
// for. Context cancellation is never handleable by the default predicate.
//
// # Composing strategies
//
// Pipelines are assembled once through a Builder and are immutable
// afterwards:
//
//	pipeline, err := resilience.NewBuilder[*http.Response]().
//	    AddRetry(resilience.RetryConfig[*http.Response]{
//	        ShouldHandle: resilience.HandleAll[*http.Response]().ExceptBrokenCircuit(),
//	        MaxRetries:   3,
//	        Delay: resilience.DelayPolicy{
//	            Kind:      resilience.BackoffExponential,
//	            BaseDelay: 100 * time.Millisecond,
//	            Jitter:    true,
//	        },
//	    }).
//	    AddCircuitBreaker(resilience.CircuitBreakerConfig[*http.Response]{
//	        FailureRatio:      0.5,
//	        MinimumThroughput: 4,
//	        BreakDuration:     5 * time.Second,
//	    }).
//	    Build()
//
// The retry predicate above excludes ErrCircuitOpen so the retry layer fails
// fast instead of spinning against an open breaker. This exclusion is a
// configuration contract, not a special case inside the retry strategy.
//
// Strategies introduce no blocking beyond the inter-attempt delay, which
// observes the context: cancellation during a delay aborts the execution
// with the context's error before the next attempt runs. A retry strategy
// or pipeline holds no mutable state and may be shared by any number of
// concurrent executions; a circuit breaker's window and state are guarded
// internally and may likewise be shared.
package resilience
