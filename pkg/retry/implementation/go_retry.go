package implementation

import (
	"context"
	"strconv"

	"github.com/jt828/otel-extras/pkg/retry"
	"github.com/jt828/otel-extras/pkg/spanscope"
	goretry "github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type goRetry struct {
	maxRetries uint64
	cfg        *retry.Config
}

func NewRetry(maxRetries uint64, opts ...retry.Option) retry.Retry {
	return &goRetry{
		maxRetries: maxRetries,
		cfg:        retry.ApplyOptions(opts...),
	}
}

func (r *goRetry) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return spanscope.DoErr(ctx, r.cfg.SpanName, r.cfg.InstrumentationName, func(ctx context.Context, span trace.Span) error {
		// Backoffs are stateful, so each execution gets its own.
		backoff := goretry.WithMaxRetries(r.maxRetries, goretry.NewExponential(r.cfg.Interval))

		attempt := 0
		err := goretry.Do(ctx, backoff, func(ctx context.Context) error {
			attempt++
			err := spanscope.DoErr(ctx, r.cfg.SpanName+".attempt", r.cfg.InstrumentationName, func(ctx context.Context, _ trace.Span) error {
				return fn(ctx)
			}, r.spanOptions(map[string]string{"retry.attempt": strconv.Itoa(attempt)})...)
			if err == nil {
				return nil
			}

			if r.cfg.RetryableFn != nil && !r.cfg.RetryableFn(err) {
				return err
			}

			return goretry.RetryableError(err)
		})
		span.SetAttributes(attribute.Int("retry.attempts", attempt))
		return err
	}, r.spanOptions(map[string]string{"retry.max_retries": strconv.FormatUint(r.maxRetries, 10)})...)
}

func (r *goRetry) spanOptions(attrs map[string]string) []spanscope.Option {
	opts := []spanscope.Option{spanscope.WithAttributes(attrs)}
	if r.cfg.TracerProvider != nil {
		opts = append(opts, spanscope.WithTracerProvider(r.cfg.TracerProvider))
	}
	return opts
}
