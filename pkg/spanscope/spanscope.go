package spanscope

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Current returns the span active in ctx. It is a non-recording span when
// ctx carries none.
func Current(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// Run executes operation inside a child span and returns its result. The span
// is marked Ok when operation returns, or Error when it panics, exits the
// goroutine without returning, or ctx is cancelled before it returns.
func Run[T any](
	ctx context.Context,
	name, instrumentationName string,
	operation func(ctx context.Context, span trace.Span) T,
	opts ...Option,
) T {
	ctx, span := start(ctx, name, instrumentationName, opts...)
	returned := false
	defer func() { complete(ctx, span, nil, returned, recover()) }()

	result := operation(ctx, span)
	returned = true
	return result
}

// RunErr executes operation inside a child span. A non-nil error is recorded
// on the span as an exception and returned to the caller unchanged.
func RunErr[T any](
	ctx context.Context,
	name, instrumentationName string,
	operation func(ctx context.Context, span trace.Span) (T, error),
	opts ...Option,
) (result T, err error) {
	ctx, span := start(ctx, name, instrumentationName, opts...)
	returned := false
	defer func() { complete(ctx, span, err, returned, recover()) }()

	result, err = operation(ctx, span)
	returned = true
	return result, err
}

// Do is Run for operations that produce no value.
func Do(
	ctx context.Context,
	name, instrumentationName string,
	operation func(ctx context.Context, span trace.Span),
	opts ...Option,
) {
	Run(ctx, name, instrumentationName, func(ctx context.Context, span trace.Span) struct{} {
		operation(ctx, span)
		return struct{}{}
	}, opts...)
}

// DoErr is RunErr for operations that only report an error.
func DoErr(
	ctx context.Context,
	name, instrumentationName string,
	operation func(ctx context.Context, span trace.Span) error,
	opts ...Option,
) error {
	_, err := RunErr(ctx, name, instrumentationName, func(ctx context.Context, span trace.Span) (struct{}, error) {
		return struct{}{}, operation(ctx, span)
	}, opts...)
	return err
}

func start(
	ctx context.Context,
	name, instrumentationName string,
	opts ...Option,
) (context.Context, trace.Span) {
	cfg := ApplyOptions(opts...)
	tracer := cfg.tracerProvider().Tracer(instrumentationName)

	startOpts := []trace.SpanStartOption{trace.WithSpanKind(cfg.SpanKind)}
	if attrs := toAttributes(cfg.Attributes); len(attrs) > 0 {
		startOpts = append(startOpts, trace.WithAttributes(attrs...))
	}

	switch cfg.Parent.kind {
	case parentExplicit:
		ctx = trace.ContextWithSpan(ctx, cfg.Parent.span)
	case parentNone:
		startOpts = append(startOpts, trace.WithNewRoot())
	}

	return tracer.Start(ctx, name, startOpts...)
}

// errAbandoned is recorded when operation neither returned nor panicked,
// which happens on runtime.Goexit.
var errAbandoned = errors.New("operation exited without returning")

// complete sets the final status and ends span. A recovered panic value is
// re-raised after the span has ended.
func complete(ctx context.Context, span trace.Span, err error, returned bool, recovered any) {
	if recovered != nil {
		perr := fmt.Errorf("panic: %v", recovered)
		span.RecordError(perr, trace.WithStackTrace(true))
		span.SetStatus(codes.Error, perr.Error())
		span.End()
		panic(recovered)
	}

	if !returned {
		err = errAbandoned
	} else if err == nil && ctx.Err() != nil {
		err = context.Cause(ctx)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func toAttributes(m map[string]string) []attribute.KeyValue {
	if len(m) == 0 {
		return nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, attribute.String(k, m[k]))
	}
	return out
}
