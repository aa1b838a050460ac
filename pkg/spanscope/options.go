package spanscope

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type parentKind int

const (
	parentInherit parentKind = iota
	parentExplicit
	parentNone
)

// Parent selects how the span created by a scope is parented. The zero value
// inherits the active span of the context passed to the scope.
type Parent struct {
	kind parentKind
	span trace.Span
}

// InheritParent uses the span active in ctx, or starts a root span when ctx
// carries none.
func InheritParent() Parent { return Parent{} }

// ParentSpan parents the new span under span. A nil span yields NoParent,
// matching "no parent available" rather than "inherit".
func ParentSpan(span trace.Span) Parent {
	if span == nil {
		return NoParent()
	}
	return Parent{kind: parentExplicit, span: span}
}

// NoParent starts a new root span even if the context carries an active span.
func NoParent() Parent { return Parent{kind: parentNone} }

type Config struct {
	Parent         Parent
	Attributes     map[string]string
	TracerProvider trace.TracerProvider
	SpanKind       trace.SpanKind
}

type Option func(*Config)

// WithParentChoice sets the parent from a Parent value, for callers that
// decide between inheriting, an explicit span and a new root at runtime.
func WithParentChoice(p Parent) Option {
	return func(c *Config) {
		c.Parent = p
	}
}

// WithParent is WithParentChoice(ParentSpan(span)).
func WithParent(span trace.Span) Option {
	return func(c *Config) {
		c.Parent = ParentSpan(span)
	}
}

// WithNoParent is WithParentChoice(NoParent()).
func WithNoParent() Option {
	return func(c *Config) {
		c.Parent = NoParent()
	}
}

// WithAttributes merges attrs into the span attributes. Later calls win on
// duplicate keys.
func WithAttributes(attrs map[string]string) Option {
	return func(c *Config) {
		if len(attrs) == 0 {
			return
		}
		if c.Attributes == nil {
			c.Attributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

func WithSpanKind(kind trace.SpanKind) Option {
	return func(c *Config) {
		c.SpanKind = kind
	}
}

// ApplyOptions folds opts into a Config. The zero Config inherits the parent
// from ctx and uses the global tracer provider.
func ApplyOptions(opts ...Option) *Config {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Config) tracerProvider() trace.TracerProvider {
	if c.TracerProvider != nil {
		return c.TracerProvider
	}
	return otel.GetTracerProvider()
}
