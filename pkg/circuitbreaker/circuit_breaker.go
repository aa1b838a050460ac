package circuitbreaker

import "context"

type State int

const (
	Closed State = iota
	HalfOpen
	Open
)

func (s State) String() string {
	switch s {
	case HalfOpen:
		return "half-open"
	case Open:
		return "open"
	default:
		return "closed"
	}
}

// CircuitBreaker runs fn unless the breaker is open. Every call, including a
// rejected one, is recorded as a child span of ctx.
type CircuitBreaker interface {
	Execute(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error)
	State() State
}
