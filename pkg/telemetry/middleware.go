package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Traced wraps fn in a span named name, recording the returned error (if
// any) and its attributes as the span's status, the way the teacher's gRPC
// interceptors wrapped handler calls (§4.1/§4.4 EXPANSION: resolver.Resolve
// and the live-check pipeline both run under a span rather than behind an
// RPC boundary).
func Traced[T any](ctx context.Context, name string, attrs []attribute.KeyValue, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := StartSpan(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}

	result, err := fn(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return result, err
}

// TracedVoid is Traced for operations with no result value, e.g. a
// live-check pipeline run that streams findings to a channel instead of
// returning one.
func TracedVoid(ctx context.Context, name string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	_, err := Traced(ctx, name, attrs, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
