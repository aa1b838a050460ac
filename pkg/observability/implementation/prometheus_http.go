package implementation

import (
	"errors"
	"net/http"
	"time"

	"github.com/jt828/otel-extras/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartMetricsServer serves reg on addr under /metrics in the background.
func StartMetricsServer(
	addr string,
	reg *prometheus.Registry,
	log observability.Logger,
) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", observability.String("addr", addr), observability.Err(err))
		}
	}()

	return srv
}
