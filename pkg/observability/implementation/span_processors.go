package implementation

import (
	"context"

	"github.com/jt828/otel-extras/pkg/observability"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// -------------------- Metrics --------------------

type metricsSpanProcessor struct {
	spans    observability.Counter
	duration observability.Histogram
}

// NewMetricsSpanProcessor counts ended spans by instrumentation and status
// and observes their durations.
func NewMetricsSpanProcessor(meter observability.Meter) sdktrace.SpanProcessor {
	return &metricsSpanProcessor{
		spans: meter.Counter("spans_total", observability.MetricOpt{
			Help:      "Total number of ended spans",
			LabelKeys: []string{"instrumentation", "status"},
		}),
		duration: meter.Histogram("span_duration_seconds", observability.MetricOpt{
			Help:      "Duration of ended spans in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
			LabelKeys: []string{"instrumentation"},
		}),
	}
}

func (p *metricsSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *metricsSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	scope := observability.Label{Key: "instrumentation", Value: s.InstrumentationScope().Name}

	p.spans.Inc(1, scope, observability.Label{Key: "status", Value: statusLabel(s.Status().Code)})
	p.duration.Observe(s.EndTime().Sub(s.StartTime()).Seconds(), scope)
}

func (p *metricsSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *metricsSpanProcessor) ForceFlush(context.Context) error { return nil }

func statusLabel(c codes.Code) string {
	switch c {
	case codes.Ok:
		return "ok"
	case codes.Error:
		return "error"
	default:
		return "unset"
	}
}

// -------------------- Logging --------------------

type loggingSpanProcessor struct {
	log observability.Logger
}

// NewLoggingSpanProcessor logs failed spans at warn level and every other
// span at debug level.
func NewLoggingSpanProcessor(log observability.Logger) sdktrace.SpanProcessor {
	return &loggingSpanProcessor{log: log}
}

func (p *loggingSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *loggingSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	fields := []observability.Field{
		observability.String("span", s.Name()),
		observability.String("instrumentation", s.InstrumentationScope().Name),
		observability.String("trace_id", sc.TraceID().String()),
		observability.String("span_id", sc.SpanID().String()),
		observability.Duration("duration", s.EndTime().Sub(s.StartTime())),
	}

	if s.Status().Code == codes.Error {
		fields = append(fields, observability.String("status", s.Status().Description))
		p.log.Warn("span failed", fields...)
		return
	}
	p.log.Debug("span ended", fields...)
}

func (p *loggingSpanProcessor) Shutdown(context.Context) error   { return nil }
func (p *loggingSpanProcessor) ForceFlush(context.Context) error { return nil }
