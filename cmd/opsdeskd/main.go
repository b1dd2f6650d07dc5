// Command opsdeskd serves the opsdesk HTTP API: record CRUD, the session
// gate, dashboard views, outreach preparation, and snapshot exports.
//
// Configuration is environment driven:
//
//	OPSDESK_HTTP_ADDR          listen address (default :8080)
//	OPSDESK_STORAGE_DRIVER     memory|sqlite|postgres (default sqlite)
//	OPSDESK_SQLITE_PATH        sqlite database path
//	OPSDESK_POSTGRES_DSN       postgres connection string
//	OPSDESK_FLUSH_INTERVAL     write-behind debounce window (default 300ms)
//	OPSDESK_ARCHIVE_DRIVER     fs|s3|memory (default fs)
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"opsdesk/internal/adapters/api"
	"opsdesk/internal/auth"
	"opsdesk/internal/core"
	"opsdesk/internal/infra/archive"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger); err != nil {
		logger.Fatal("opsdeskd exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mirror, err := core.OpenMirror(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := mirror.Close(); err != nil {
			logger.Warn("close mirror", zap.Error(err))
		}
	}()

	store := core.OpenStore(mirror, logger, flushInterval(logger))
	defer store.Close()

	gate := auth.NewGate(mirror, logger)

	arch, err := archive.Open(ctx)
	if err != nil {
		return err
	}
	logger.Info("archive ready", zap.String("driver", string(arch.Driver())))

	service := core.NewService(store, arch, logger)
	handler := api.NewHandler(service, gate, logger)

	addr := os.Getenv("OPSDESK_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func flushInterval(logger *zap.Logger) time.Duration {
	raw := os.Getenv("OPSDESK_FLUSH_INTERVAL")
	if raw == "" {
		return core.DefaultFlushInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.Warn("invalid OPSDESK_FLUSH_INTERVAL, using default", zap.String("value", raw))
		return core.DefaultFlushInterval
	}
	return d
}
