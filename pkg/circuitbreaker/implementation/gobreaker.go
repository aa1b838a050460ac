package implementation

import (
	"context"

	"github.com/jt828/otel-extras/pkg/circuitbreaker"
	"github.com/jt828/otel-extras/pkg/spanscope"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jt828/otel-extras/pkg/circuitbreaker"

type gobreakerCircuitBreaker struct {
	cb       *gobreaker.CircuitBreaker[any]
	spanOpts []spanscope.Option
}

func NewCircuitBreaker(settings gobreaker.Settings, opts ...spanscope.Option) circuitbreaker.CircuitBreaker {
	return &gobreakerCircuitBreaker{
		cb:       gobreaker.NewCircuitBreaker[any](settings),
		spanOpts: opts,
	}
}

func (g *gobreakerCircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	opts := make([]spanscope.Option, 0, len(g.spanOpts)+1)
	opts = append(opts, spanscope.WithAttributes(map[string]string{
		"circuitbreaker.name":  g.cb.Name(),
		"circuitbreaker.state": g.State().String(),
	}))
	opts = append(opts, g.spanOpts...)

	return spanscope.RunErr(ctx, "circuitbreaker.execute", instrumentationName, func(ctx context.Context, _ trace.Span) (any, error) {
		return g.cb.Execute(func() (any, error) {
			return fn(ctx)
		})
	}, opts...)
}

func (g *gobreakerCircuitBreaker) State() circuitbreaker.State {
	switch g.cb.State() {
	case gobreaker.StateClosed:
		return circuitbreaker.Closed
	case gobreaker.StateHalfOpen:
		return circuitbreaker.HalfOpen
	case gobreaker.StateOpen:
		return circuitbreaker.Open
	default:
		return circuitbreaker.Closed
	}
}
