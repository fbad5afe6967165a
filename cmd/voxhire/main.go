// Command voxhire runs the interview gateway: a websocket service that
// conducts spoken interview sessions and persists the results.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxhire/voxhire/internal/dotenv"
	"github.com/voxhire/voxhire/pkg/gateway/config"
	"github.com/voxhire/voxhire/pkg/gateway/metrics"
	"github.com/voxhire/voxhire/pkg/gateway/server"
	"github.com/voxhire/voxhire/pkg/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := dotenv.Load(); err != nil {
		return err
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	st, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.New(server.Dependencies{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.New(cfg.MetricsNamespace),
		Store:   st,
	})

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	// Stop accepting new interviews, then give in-flight sessions a
	// bounded window to finish before shutting the listener down.
	srv.Lifecycle().SetDraining()

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if !srv.Registry().Wait(drainCtx) {
		canceled := srv.Registry().CancelAll()
		log.Warn("grace period expired, canceling sessions", "canceled", canceled)
		_ = srv.Registry().Wait(context.Background())
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ReadTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.Info("shutdown complete")
	return nil
}
