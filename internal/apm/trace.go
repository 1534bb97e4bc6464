package apm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is a thin wrapper over the OTEL tracer.
type Tracer interface {
	StartSpanFromContext(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, Span)
	SpanFromContext(ctx context.Context) Span
	GetTracer() trace.Tracer
}

type openTracer struct {
	tracer trace.Tracer
}

// NewTracer creates a named tracer on the global provider.
func NewTracer(name string) Tracer {
	return &openTracer{
		otel.Tracer(name),
	}
}

func (t *openTracer) StartSpanFromContext(
	ctx context.Context, name string, opts ...trace.SpanStartOption,
) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, Span{span}
}

func (t *openTracer) SpanFromContext(ctx context.Context) Span {
	return Span{trace.SpanFromContext(ctx)}
}

func (t *openTracer) GetTracer() trace.Tracer {
	return t.tracer
}

// Span wraps trace.Span with error helpers.
type Span struct {
	trace.Span
}

// NoticeError records the error and marks the span status as error.
func (s Span) NoticeError(err error) {
	s.RecordError(err)
	s.SetStatus(codes.Error, err.Error())
}
