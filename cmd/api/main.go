package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cassiomorais/paygate/internal/bootstrap"
	"github.com/cassiomorais/paygate/internal/controller"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "paygate-api: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	app, err := bootstrap.New(ctx, "paygate-api", "paygate")
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	cfg := app.Config

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Gateway:   app.Gateway,
		Ready:     app.Ready,
		Metrics:   app.Metrics,
		Gatherer:  app.Registry,
		Logger:    app.Logger,
		Server:    cfg.Server,
		Tracing:   app.TracingEnabled(),
		ServiceID: "paygate-api",
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Logger.Info().
			Str("addr", addr).
			Str("provider", string(app.Gateway.Provider())).
			Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		app.Logger.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("Server forced to shutdown")
		}
		if err := app.Close(shutdownCtx); err != nil {
			app.Logger.Error().Err(err).Msg("Failed to flush traces")
		}
		return nil
	})

	err = g.Wait()
	app.Logger.Info().Msg("Server exited")
	return err
}
