// main is the entry point of the Persons API server.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the configured storage backend (JSON file or SQLite)
//  4. Wire validator → service → gRPC adapter
//  5. Start the gRPC listener and the ops HTTP listener
//  6. Block until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully stop both listeners within shutdown_timeout
//
// RUNNING THE SERVER:
//
//	go run ./cmd/persons-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/persons-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aanand-mishra/persons-api/internal/config"
	"github.com/aanand-mishra/persons-api/internal/http/handlers/ops"
	"github.com/aanand-mishra/persons-api/internal/metrics"
	"github.com/aanand-mishra/persons-api/internal/service"
	"github.com/aanand-mishra/persons-api/internal/storage"
	"github.com/aanand-mishra/persons-api/internal/storage/file"
	"github.com/aanand-mishra/persons-api/internal/storage/sqlite"
	transportgrpc "github.com/aanand-mishra/persons-api/internal/transport/grpc"
	"github.com/aanand-mishra/persons-api/internal/validation"
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	log.Info("starting persons-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// run serves until ctx is cancelled or a listener fails.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	defer store.Close()

	log.Info("storage initialised",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("path", cfg.Storage.Path))

	svc := service.New(store, validation.New(nil), log)
	m := metrics.New()

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			transportgrpc.RecoveryInterceptor(log),
			m.UnaryServerInterceptor(),
			transportgrpc.LoggingInterceptor(log),
		),
	)
	transportgrpc.RegisterPersonServiceServer(grpcServer, transportgrpc.NewServer(svc, log))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(transportgrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	lis, err := net.Listen("tcp", cfg.GRPCServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCServer.Addr, err)
	}

	var opsServer *http.Server
	if cfg.OpsServer.Addr != "" {
		opsServer = &http.Server{
			Addr:         cfg.OpsServer.Addr,
			Handler:      ops.NewRouter(store, m.Handler(), log),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("grpc server started", slog.String("address", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	if opsServer != nil {
		g.Go(func() error {
			log.Info("ops server started", slog.String("address", opsServer.Addr))
			if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, stopping servers...")
		healthServer.SetServingStatus(transportgrpc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errOps error
		if opsServer != nil {
			errOps = opsServer.Shutdown(shutdownCtx)
		}
		stopGRPC(shutdownCtx, grpcServer)
		return errOps
	})

	return g.Wait()
}

// stopGRPC drains in-flight calls and forces the stop once ctx expires.
func stopGRPC(ctx context.Context, s *grpc.Server) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.Stop()
		<-done
	}
}

func openStorage(cfg config.Storage) (storage.Storage, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.New(cfg.Path)
	default:
		return file.New(cfg.Path)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
