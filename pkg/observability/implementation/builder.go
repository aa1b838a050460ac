package implementation

import (
	"context"

	"github.com/jt828/otel-extras/pkg/config"
	"github.com/jt828/otel-extras/pkg/observability"
)

// NewObservability wires a zap logger, a prometheus meter and a tracer
// provider whose ended spans feed both.
func NewObservability(ctx context.Context, cfg *config.Config) (observability.Observability, error) {
	log, err := NewZapLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	meter := NewPrometheusMeter()

	tp, shutdown, err := NewTracerProvider(
		ctx,
		TracerProviderConfig{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Tracing:        cfg.Tracing,
		},
		NewMetricsSpanProcessor(meter),
		NewLoggingSpanProcessor(log),
	)
	if err != nil {
		return nil, err
	}

	return &observabilityImplementation{
		log:         log,
		meter:       meter,
		tp:          tp,
		metricsAddr: cfg.MetricsAddr,
		traceClose:  shutdown,
	}, nil
}
