package implementation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jt828/otel-extras/pkg/observability/implementation"
	"github.com/jt828/otel-extras/pkg/spanscope"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMetricsSpanProcessor(t *testing.T) {
	ctx := context.Background()
	meter := implementation.NewPrometheusMeter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(implementation.NewMetricsSpanProcessor(meter)))
	opt := spanscope.WithTracerProvider(tp)

	spanscope.Do(ctx, "ok-1", "user-service", func(ctx context.Context, span trace.Span) {}, opt)
	spanscope.Do(ctx, "ok-2", "user-service", func(ctx context.Context, span trace.Span) {}, opt)
	_ = spanscope.DoErr(ctx, "fail", "user-service", func(ctx context.Context, span trace.Span) error {
		return errors.New("boom")
	}, opt)

	reg := implementation.PromRegistry(meter)
	require.NotNil(t, reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	var observed uint64
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch mf.GetName() {
			case "spans_total":
				labels := map[string]string{}
				for _, lp := range m.GetLabel() {
					labels[lp.GetName()] = lp.GetValue()
				}
				assert.Equal(t, "user-service", labels["instrumentation"])
				counts[labels["status"]] = m.GetCounter().GetValue()
			case "span_duration_seconds":
				observed += m.GetHistogram().GetSampleCount()
			}
		}
	}

	assert.Equal(t, map[string]float64{"ok": 2, "error": 1}, counts)
	assert.Equal(t, uint64(3), observed)

	n, err := testutil.GatherAndCount(reg, "spans_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoggingSpanProcessor(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	log := implementation.NewZapLoggerFrom(zap.New(core))
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(implementation.NewLoggingSpanProcessor(log)))
	opt := spanscope.WithTracerProvider(tp)

	spanscope.Do(ctx, "fine", "user-service", func(ctx context.Context, span trace.Span) {}, opt)
	_ = spanscope.DoErr(ctx, "broken", "user-service", func(ctx context.Context, span trace.Span) error {
		return errors.New("not found")
	}, opt)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "span ended", entries[0].Message)
	assert.Equal(t, "fine", entries[0].ContextMap()["span"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "span failed", entries[1].Message)
	fields := entries[1].ContextMap()
	assert.Equal(t, "broken", fields["span"])
	assert.Equal(t, "user-service", fields["instrumentation"])
	assert.Equal(t, "not found", fields["status"])
	assert.NotEmpty(t, fields["trace_id"])
}
