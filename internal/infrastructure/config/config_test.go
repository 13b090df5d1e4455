package config

import (
	"testing"
	"time"

	"github.com/cassiomorais/paygate/internal/infrastructure/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit:       RateLimitConfig{Requests: 100, Window: time.Minute},
		},
		Gateway: GatewayConfig{
			Provider:       "razorpay",
			Timeout:        30 * time.Second,
			CircuitBreaker: gateway.DefaultBreakerSettings(),
			Razorpay:       map[string]any{"key_id": "rzp_test", "key_secret": "secret"},
		},
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestConfig_Validate_InvalidServerPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"port too low", 0},
		{"port negative", -1},
		{"port too high", 99999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_InvalidReadTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Server.ReadTimeout = 0 // Invalid

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.read_timeout")
}

func TestConfig_Validate_RateLimitWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Server.RateLimit.Window = 0

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.rate_limit.window")

	// Disabled rate limiting needs no window.
	cfg.Server.RateLimit.Requests = 0
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_Provider(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.Provider = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.provider is required")

	cfg.Gateway.Provider = "paypal"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"paypal" is not supported`)

	cfg.Gateway.Provider = "Stripe"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Gateway.Timeout = 0
	cfg.Gateway.CircuitBreaker.FailureRatio = 1.5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "gateway.timeout")
	assert.Contains(t, err.Error(), "gateway.circuit_breaker.failure_ratio")
}

func TestGatewayConfig_Credentials(t *testing.T) {
	g := GatewayConfig{
		Provider: "CASHFREE",
		Razorpay: map[string]any{"key_id": "rzp"},
		Cashfree: map[string]any{"client_id": "cf"},
	}
	assert.Equal(t, map[string]any{"client_id": "cf"}, g.Credentials())

	g.Provider = "razorpay"
	assert.Equal(t, map[string]any{"key_id": "rzp"}, g.Credentials())

	g.Provider = "unknown"
	assert.Nil(t, g.Credentials())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PAYGATE_SERVER_PORT", "9090")
	t.Setenv("PAYGATE_GATEWAY_PROVIDER", "razorpay")
	t.Setenv("PAYGATE_GATEWAY_RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("PAYGATE_GATEWAY_RAZORPAY_KEY_SECRET", "rzp_secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, gateway.DefaultBreakerSettings(), cfg.Gateway.CircuitBreaker)

	creds := cfg.Gateway.Credentials()
	assert.Equal(t, "rzp_test_key", creds["key_id"])
	assert.Equal(t, "rzp_secret", creds["key_secret"])
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mock", cfg.Gateway.Provider)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.Server.CORS.AllowedOrigins)
	assert.NotNil(t, cfg.Gateway.Credentials())
}
