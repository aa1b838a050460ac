package implementation

import (
	"context"
	"fmt"
	"time"

	"github.com/jt828/otel-extras/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const shutdownTimeout = 5 * time.Second

type TracerProviderConfig struct {
	ServiceName    string
	ServiceVersion string
	Tracing        config.Tracing
}

// NewTracerProvider installs a global tracer provider exporting over OTLP/gRPC
// and returns it with its shutdown function. When tracing is disabled a no-op
// provider is installed instead, so tracer lookups never fail.
func NewTracerProvider(
	ctx context.Context,
	cfg TracerProviderConfig,
	processors ...sdktrace.SpanProcessor,
) (trace.TracerProvider, func(ctx context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.Tracing.Disabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracegrpc.New(ctx, exporterOptions(cfg.Tracing)...)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Tracing.SampleRatio))),
	}
	for _, p := range processors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(p))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)

	otel.SetTracerProvider(tp)

	return tp,
		func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return tp.Shutdown(ctx)
		},
		nil
}

// exporterOptions accepts both a bare host:port and a URL endpoint. A URL
// with the http scheme implies an insecure connection.
func exporterOptions(t config.Tracing) []otlptracegrpc.Option {
	var opts []otlptracegrpc.Option
	if t.EndpointIsURL() {
		opts = append(opts, otlptracegrpc.WithEndpointURL(t.Endpoint()))
	} else {
		opts = append(opts, otlptracegrpc.WithEndpoint(t.Endpoint()))
	}
	if t.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return opts
}

func newResource(ctx context.Context, cfg TracerProviderConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	for k, v := range cfg.Tracing.Attributes() {
		attrs = append(attrs, attribute.String(k, v))
	}

	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}
