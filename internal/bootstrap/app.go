package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cassiomorais/paygate/internal/infrastructure/config"
	"github.com/cassiomorais/paygate/internal/infrastructure/gateway"
	"github.com/cassiomorais/paygate/internal/infrastructure/observability"
	"github.com/cassiomorais/paygate/internal/manager"
	"github.com/cassiomorais/paygate/internal/providers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
	Gateway  *manager.Manager

	breaker *gateway.BreakerTransport
	tracer  *sdktrace.TracerProvider
}

func New(ctx context.Context, serviceName string, metricsNamespace string) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, cfg, serviceName, metricsNamespace)
}

// NewWithConfig wires the gateway manager and its observability from an
// already loaded configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config, serviceName string, metricsNamespace string) (*App, error) {
	logger := observability.InitLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stdout).
		With().
		Str("service", serviceName).
		Str("instance", cfg.InstanceID).
		Logger()
	log.Logger = logger
	logger.Info().Msg("Starting")

	app := &App{Config: cfg, Logger: logger}

	if cfg.Observability.EnableTracing {
		tp, err := observability.InitTracer(serviceName, cfg.Observability.JaegerEndpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			app.tracer = tp
			logger.Info().Msg("Tracing enabled")
		}
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.Metrics = observability.NewMetrics(metricsNamespace, app.Registry)
	logger.Info().Msg("Metrics initialized")

	provider := cfg.Gateway.Provider
	providerLogger := observability.ForProvider(logger, provider)

	httpClient := gateway.NewHTTPClient(gateway.ClientConfig{
		Name:    provider,
		Timeout: cfg.Gateway.Timeout,
		Breaker: cfg.Gateway.CircuitBreaker,
		Metrics: app.Metrics,
		Logger:  providerLogger,
	})
	app.breaker, _ = httpClient.Transport.(*gateway.BreakerTransport)

	opts := []manager.Option{
		manager.WithLogger(providerLogger),
		manager.WithProviderOptions(providers.WithHTTPClient(httpClient)),
	}
	if cfg.Observability.EnableMetrics {
		opts = append(opts, manager.WithMetrics(app.Metrics))
	}

	m, err := manager.InitRaw(ctx, provider, cfg.Gateway.Credentials(), opts...)
	if err != nil {
		_ = observability.Shutdown(context.Background(), app.tracer)
		return nil, fmt.Errorf("init payment gateway: %w", err)
	}
	app.Gateway = m

	return app, nil
}

// Ready fails while the gateway's circuit breaker is open.
func (a *App) Ready() error {
	if a.Gateway == nil {
		return errors.New("payment gateway not initialized")
	}
	if a.breaker != nil && a.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s circuit breaker open", a.Gateway.Provider())
	}
	return nil
}

// TracingEnabled reports whether a tracer provider was installed.
func (a *App) TracingEnabled() bool {
	return a.tracer != nil
}

func (a *App) Close(ctx context.Context) error {
	return observability.Shutdown(ctx, a.tracer)
}
