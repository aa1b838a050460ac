package implementation

import (
	"fmt"

	"github.com/jt828/otel-extras/pkg/observability"
	"go.uber.org/zap"
)

type zapLogger struct {
	l *zap.Logger
}

// NewZapLogger builds a production zap logger at the given level
// ("debug", "info", "warn", "error").
func NewZapLogger(level string) (observability.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &zapLogger{l: l}, nil
}

func NewZapLoggerFrom(l *zap.Logger) observability.Logger {
	return &zapLogger{l: l}
}

func toZap(fields []observability.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	out := make([]zap.Field, 0, len(fields))

	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}

	return out
}

func (z *zapLogger) Debug(msg string, fields ...observability.Field) {
	z.l.Debug(msg, toZap(fields)...)
}

func (z *zapLogger) Error(msg string, fields ...observability.Field) {
	z.l.Error(msg, toZap(fields)...)
}

func (z *zapLogger) Fatal(msg string, fields ...observability.Field) {
	z.l.Fatal(msg, toZap(fields)...)
}

func (z *zapLogger) Info(msg string, fields ...observability.Field) {
	z.l.Info(msg, toZap(fields)...)
}

func (z *zapLogger) Warn(msg string, fields ...observability.Field) {
	z.l.Warn(msg, toZap(fields)...)
}

func (z *zapLogger) With(fields ...observability.Field) observability.Logger {
	return &zapLogger{
		l: z.l.With(toZap(fields)...),
	}
}

func (z *zapLogger) Sync() error {
	return z.l.Sync()
}
