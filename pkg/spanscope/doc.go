// Package spanscope runs a unit of work inside an OpenTelemetry child span.
//
// Each helper resolves a tracer by instrumentation name, parents the new span
// (inherited from ctx by default, or set explicitly with WithParent /
// WithNoParent), applies string attributes, and hands the operation a context
// in which the new span is active. Whatever way the operation exits, the span
// is ended exactly once: Ok on success, Error with an exception event on a
// returned error, a panic, or a cancelled context. Errors and panics reach the
// caller unchanged.
//
//	user, err := spanscope.RunErr(ctx, "fetch-user", "user-service",
//		func(ctx context.Context, span trace.Span) (*User, error) {
//			return repo.Get(ctx, id)
//		},
//		spanscope.WithAttributes(map[string]string{"userId": "42"}),
//	)
//
// The caller's ctx is never modified, so the previously active span is
// restored simply by continuing to use it.
package spanscope
