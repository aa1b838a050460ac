package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jt828/otel-extras/internal/interceptor"
	"github.com/jt828/otel-extras/pkg/config"
	"github.com/jt828/otel-extras/pkg/observability"
	"github.com/jt828/otel-extras/pkg/observability/implementation"
	"github.com/jt828/otel-extras/pkg/spanscope"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const instrumentationName = "github.com/jt828/otel-extras/cmd/server"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	obs, err := implementation.NewObservability(ctx, cfg)
	if err != nil {
		panic(err)
	}
	log := obs.Logger()
	reg := implementation.PromRegistry(obs.Meter())
	if reg == nil {
		log.Fatal("prometheus registry not available")
	}

	grpcMetrics := grpc_prometheus.NewServerMetrics()
	reg.MustRegister(grpcMetrics)

	if err := obs.Start(ctx); err != nil {
		log.Error("failed to start observability", observability.Err(err))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		log.Info("Shutting down server...")
		cancel()
	}()

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal("failed to listen", observability.String("addr", cfg.GRPCAddr), observability.Err(err))
	}

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler(otelgrpc.WithTracerProvider(obs.TracerProvider()))),
		grpc.ChainUnaryInterceptor(
			grpcMetrics.UnaryServerInterceptor(),
			interceptor.ErrorInterceptor(log),
			interceptor.SpanInterceptor(instrumentationName),
		),
		grpc.StreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				spanscope.Do(ctx, "health.probe", instrumentationName, func(ctx context.Context, span trace.Span) {
					healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
				}, spanscope.WithNoParent())
			}
		}
	}()

	grpcMetrics.InitializeMetrics(server)

	go func() {
		log.Info("gRPC server running", observability.String("addr", cfg.GRPCAddr))
		if err := server.Serve(lis); err != nil {
			log.Fatal("failed to serve", observability.Err(err))
		}
	}()

	<-ctx.Done()
	log.Info("Graceful stopping gRPC server...")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	server.GracefulStop()
	log.Info("gRPC server stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := obs.Close(shutdownCtx); err != nil {
		log.Error("failed to close observability", observability.Err(err))
	}
}
