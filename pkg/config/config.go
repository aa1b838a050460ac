package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"otel-extras"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"0.0.1"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	GRPCAddr       string `env:"GRPC_ADDR" envDefault:":50051"`
	MetricsAddr    string `env:"METRICS_ADDR" envDefault:":9090"`
	Tracing        Tracing
}

type Tracing struct {
	Disabled           bool    `env:"OTEL_SDK_DISABLED" envDefault:"false"`
	ExporterEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TracesEndpoint     string  `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`
	Insecure           bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	SampleRatio        float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1"`
	ResourceAttributes string  `env:"OTEL_RESOURCE_ATTRIBUTES"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads the configuration from environ instead of the process
// environment. A nil map falls back to the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("%w: service name is empty", ErrInvalidConfig)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: sample ratio %v outside [0,1]", ErrInvalidConfig, c.Tracing.SampleRatio)
	}
	return nil
}

// Endpoint returns the traces endpoint, falling back to the generic OTLP
// endpoint and then to the local collector.
func (t Tracing) Endpoint() string {
	if t.TracesEndpoint != "" {
		return t.TracesEndpoint
	}
	if t.ExporterEndpoint != "" {
		return t.ExporterEndpoint
	}
	return "localhost:4317"
}

// EndpointIsURL reports whether Endpoint carries a scheme, as in
// http://collector:4317, rather than a bare host:port.
func (t Tracing) EndpointIsURL() bool {
	return strings.Contains(t.Endpoint(), "://")
}

// Attributes parses ResourceAttributes in the key1=value1,key2=value2 form.
// Malformed pairs are skipped.
func (t Tracing) Attributes() map[string]string {
	if t.ResourceAttributes == "" {
		return nil
	}

	out := make(map[string]string)
	for _, pair := range strings.Split(t.ResourceAttributes, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}
