package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cassiomorais/paygate/internal/infrastructure/gateway"
	"github.com/cassiomorais/paygate/internal/providers"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	InstanceID    string              `mapstructure:"instance_id"`
}

type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration   `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig      `mapstructure:"cors"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// GatewayConfig names the active provider. Only the credential section of
// that provider is used; the others may stay empty.
type GatewayConfig struct {
	Provider       string                  `mapstructure:"provider"`
	Timeout        time.Duration           `mapstructure:"timeout"`
	CircuitBreaker gateway.BreakerSettings `mapstructure:"circuit_breaker"`

	Razorpay map[string]any `mapstructure:"razorpay"`
	Cashfree map[string]any `mapstructure:"cashfree"`
	Stripe   map[string]any `mapstructure:"stripe"`
	Mock     map[string]any `mapstructure:"mock"`
}

// Credentials returns the raw credential section of the active provider.
func (g *GatewayConfig) Credentials() map[string]any {
	switch providers.Name(strings.ToLower(g.Provider)) {
	case providers.NameRazorpay:
		return g.Razorpay
	case providers.NameCashfree:
		return g.Cashfree
	case providers.NameStripe:
		return g.Stripe
	case providers.NameMock:
		return g.Mock
	}
	return nil
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	EnableMetrics  bool   `mapstructure:"enable_metrics"`
	EnableTracing  bool   `mapstructure:"enable_tracing"`
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables: PAYGATE_GATEWAY_RAZORPAY_KEY_ID
	v.SetEnvPrefix("PAYGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read from config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/paygate")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the process settings. Provider credentials are validated
// when the manager is initialized.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.write_timeout must be positive"))
	}
	if c.Server.RateLimit.Requests < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit.requests must not be negative"))
	}
	if c.Server.RateLimit.Requests > 0 && c.Server.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit.window must be positive"))
	}

	if c.Gateway.Provider == "" {
		errs = append(errs, fmt.Errorf("gateway.provider is required"))
	} else if !providers.Name(strings.ToLower(c.Gateway.Provider)).Supported() {
		errs = append(errs, fmt.Errorf("gateway.provider %q is not supported", c.Gateway.Provider))
	}
	if c.Gateway.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("gateway.timeout must be positive"))
	}
	if r := c.Gateway.CircuitBreaker.FailureRatio; r <= 0 || r > 1 {
		errs = append(errs, fmt.Errorf("gateway.circuit_breaker.failure_ratio must be in (0, 1], got %v", r))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.cors.allow_credentials", false)
	v.SetDefault("server.rate_limit.requests", 100)
	v.SetDefault("server.rate_limit.window", "1m")

	// Gateway defaults
	breaker := gateway.DefaultBreakerSettings()
	v.SetDefault("gateway.provider", string(providers.NameMock))
	v.SetDefault("gateway.timeout", "30s")
	v.SetDefault("gateway.circuit_breaker.max_requests", breaker.MaxRequests)
	v.SetDefault("gateway.circuit_breaker.interval", breaker.Interval)
	v.SetDefault("gateway.circuit_breaker.timeout", breaker.Timeout)
	v.SetDefault("gateway.circuit_breaker.min_requests", breaker.MinRequests)
	v.SetDefault("gateway.circuit_breaker.failure_ratio", breaker.FailureRatio)

	// Credential keys are registered so environment variables can fill them.
	v.SetDefault("gateway.razorpay.key_id", "")
	v.SetDefault("gateway.razorpay.key_secret", "")
	v.SetDefault("gateway.razorpay.env", "")
	v.SetDefault("gateway.cashfree.client_id", "")
	v.SetDefault("gateway.cashfree.client_secret", "")
	v.SetDefault("gateway.cashfree.env", providers.EnvTest)
	v.SetDefault("gateway.cashfree.base_url", "")
	v.SetDefault("gateway.stripe.secret_key", "")
	v.SetDefault("gateway.mock.latency", "100ms")
	v.SetDefault("gateway.mock.failure_rate", 0.0)

	// Observability defaults
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")
	v.SetDefault("observability.jaeger_endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.enable_tracing", false)

	// Instance ID
	v.SetDefault("instance_id", "paygate-1")
}
