package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/resilience"
)

// Metrics records execution metrics for resilience pipelines.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records a pipeline execution with duration and error status.
	RecordExecution(ctx context.Context, meta Meta, duration time.Duration, err error)

	// RecordRetry records a single retry attempt.
	RecordRetry(ctx context.Context, meta Meta, attempt int)

	// RecordStateChange records a circuit breaker state transition.
	RecordStateChange(ctx context.Context, meta Meta, from, to resilience.State)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter           metric.Meter
	totalCount      metric.Int64Counter
	errorCount      metric.Int64Counter
	durationHist    metric.Float64Histogram
	retryCount      metric.Int64Counter
	transitionCount metric.Int64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"resilience.exec.total",
		metric.WithDescription("Total number of pipeline executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"resilience.exec.errors",
		metric.WithDescription("Total number of pipeline execution errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"resilience.exec.duration_ms",
		metric.WithDescription("Pipeline execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"resilience.retry.total",
		metric.WithDescription("Total number of retry attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	transitionCount, err := meter.Int64Counter(
		"resilience.breaker.transitions",
		metric.WithDescription("Total number of circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:           meter,
		totalCount:      totalCount,
		errorCount:      errorCount,
		durationHist:    durationHist,
		retryCount:      retryCount,
		transitionCount: transitionCount,
	}, nil
}

func (m *metricsImpl) baseAttrs(meta Meta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("pipeline.name", meta.Name),
	}
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("pipeline.version", meta.Version))
	}
	return attrs
}

// RecordExecution records metrics for a pipeline execution.
func (m *metricsImpl) RecordExecution(ctx context.Context, meta Meta, duration time.Duration, err error) {
	opt := metric.WithAttributes(m.baseAttrs(meta)...)

	m.totalCount.Add(ctx, 1, opt)

	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// RecordRetry records metrics for a single retry attempt.
func (m *metricsImpl) RecordRetry(ctx context.Context, meta Meta, attempt int) {
	attrs := append(m.baseAttrs(meta),
		attribute.Int("retry.attempt", attempt),
	)
	m.retryCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStateChange records metrics for a circuit breaker state transition.
func (m *metricsImpl) RecordStateChange(ctx context.Context, meta Meta, from, to resilience.State) {
	attrs := append(m.baseAttrs(meta),
		attribute.String("breaker.from", from.String()),
		attribute.String("breaker.to", to.String()),
	)
	m.transitionCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordExecution(ctx context.Context, meta Meta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordRetry(ctx context.Context, meta Meta, attempt int) {}

func (m *noopMetrics) RecordStateChange(ctx context.Context, meta Meta, from, to resilience.State) {}
