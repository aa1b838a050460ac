package observability

type Meter interface {
	Counter(name string, opts ...MetricOpt) Counter
	Histogram(name string, opts ...MetricOpt) Histogram
}

type Counter interface {
	Inc(v float64, labels ...Label)
}

type Histogram interface {
	Observe(v float64, labels ...Label)
}
