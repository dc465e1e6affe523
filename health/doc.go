// Package health exposes the health of resilience pipelines, primarily
// circuit breakers, through a checker framework and HTTP endpoints.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy. A
// circuit breaker maps onto these states naturally: closed is healthy,
// half-open is degraded, and open or isolated is unhealthy.
//
// # Basic Usage
//
//	cb, _ := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig[string]{})
//	checker := health.NewBreakerChecker("payments", cb)
//
//	result := checker.Check(ctx)
//	if result.Status == health.StatusUnhealthy {
//	    log.Printf("payments circuit: %s", result.Message)
//	}
//
// # Aggregating Health Checks
//
// Use Registry to combine breakers and custom checks into a single view:
//
//	reg := health.NewRegistry()
//	reg.Register("payments", health.NewBreakerChecker("payments", paymentsCB))
//	reg.Register("inventory", health.NewBreakerChecker("inventory", inventoryCB))
//
//	results := reg.CheckAll(ctx)
//	overall := reg.Overall(results)
//
// # HTTP Endpoints
//
// The package provides HTTP handlers for common health check patterns:
//
//	// Liveness probe (for Kubernetes)
//	http.Handle("/healthz", health.LivenessHandler())
//
//	// Readiness probe with breaker checks
//	http.Handle("/readyz", health.ReadinessHandler(registry))
//
//	// Detailed per-breaker status
//	http.Handle("/health", health.StatusHandler(registry))
package health
