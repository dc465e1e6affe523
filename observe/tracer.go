package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Meta identifies a pipeline for telemetry purposes.
type Meta struct {
	Name    string   // Pipeline name (required)
	Version string   // Pipeline version (optional)
	Tags    []string // Free-form tags (optional)
}

// SpanName returns the deterministic span name for this pipeline.
// Format: resilience.exec.<name>
func (m Meta) SpanName() string {
	return "resilience.exec." + m.Name
}

// Validate checks that required metadata is present.
func (m Meta) Validate() error {
	if m.Name == "" {
		return ErrMissingPipelineName
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with pipeline-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a pipeline execution.
	StartSpan(ctx context.Context, meta Meta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with pipeline metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta Meta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("pipeline.name", meta.Name),
		attribute.Bool("pipeline.error", false), // Updated in EndSpan if error
	}

	if meta.Version != "" {
		attrs = append(attrs, attribute.String("pipeline.version", meta.Version))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("pipeline.tags", meta.Tags))
	}

	ctx, span := t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("pipeline.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta Meta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
