package retry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jt828/otel-extras/pkg/retry"

// Retry runs fn until it succeeds, fails with a non-retryable error, runs out
// of attempts or ctx is done. Each attempt runs in its own child span.
type Retry interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	RetryableFn         func(err error) bool
	Interval            time.Duration
	SpanName            string
	InstrumentationName string
	TracerProvider      trace.TracerProvider
}

type Option func(*Config)

func WithRetryable(fn func(err error) bool) Option {
	return func(c *Config) {
		c.RetryableFn = fn
	}
}

func WithInterval(d time.Duration) Option {
	return func(c *Config) {
		c.Interval = d
	}
}

func WithSpanName(name string) Option {
	return func(c *Config) {
		c.SpanName = name
	}
}

func WithInstrumentationName(name string) Option {
	return func(c *Config) {
		c.InstrumentationName = name
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

func ApplyOptions(opts ...Option) *Config {
	c := &Config{
		Interval:            100 * time.Millisecond,
		SpanName:            "retry",
		InstrumentationName: instrumentationName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
