package implementation

import (
	"context"
	"net/http"

	"github.com/jt828/otel-extras/pkg/observability"
	"go.opentelemetry.io/otel/trace"
)

type observabilityImplementation struct {
	log   observability.Logger
	meter observability.Meter
	tp    trace.TracerProvider

	metricsAddr   string
	metricsServer *http.Server
	traceClose    func(context.Context) error
}

func (o *observabilityImplementation) Close(ctx context.Context) error {
	var err error
	if o.metricsServer != nil {
		err = o.metricsServer.Shutdown(ctx)
	}
	if o.traceClose != nil {
		if e := o.traceClose(ctx); err == nil {
			err = e
		}
	}
	if s, ok := o.log.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	return err
}
func (o *observabilityImplementation) Logger() observability.Logger { return o.log }
func (o *observabilityImplementation) Meter() observability.Meter   { return o.meter }
func (o *observabilityImplementation) Start(ctx context.Context) error {
	if reg := PromRegistry(o.meter); reg != nil && o.metricsAddr != "" {
		o.metricsServer = StartMetricsServer(o.metricsAddr, reg, o.log)
	}
	return nil
}
func (o *observabilityImplementation) TracerProvider() trace.TracerProvider { return o.tp }
