// Package observe provides observability primitives for resilience pipelines.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the middleware around Pipeline.Execute
// and feed the hook constructors into retry and circuit breaker callbacks.
package observe
