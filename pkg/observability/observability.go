package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the logger, meter and tracer provider a process
// shares. Start must be called before serving; Close flushes pending spans.
type Observability interface {
	Close(ctx context.Context) error
	Logger() Logger
	Meter() Meter
	Start(ctx context.Context) error
	TracerProvider() trace.TracerProvider
}
