package interceptor

import (
	"context"

	"github.com/jt828/otel-extras/pkg/spanscope"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// SpanInterceptor runs every unary handler inside a child span named after
// the full method, so handlers get tracing without wrapping their own bodies.
func SpanInterceptor(instrumentationName string, opts ...spanscope.Option) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		spanOpts := make([]spanscope.Option, 0, len(opts)+2)
		spanOpts = append(spanOpts,
			spanscope.WithSpanKind(trace.SpanKindInternal),
			spanscope.WithAttributes(map[string]string{"rpc.method": info.FullMethod}),
		)
		spanOpts = append(spanOpts, opts...)

		return spanscope.RunErr(ctx, info.FullMethod, instrumentationName, func(ctx context.Context, _ trace.Span) (any, error) {
			return handler(ctx, req)
		}, spanOpts...)
	}
}
