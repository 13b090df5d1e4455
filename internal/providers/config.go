package providers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Config is the credential set for exactly one provider. The variants are
// RazorpayConfig, CashfreeConfig, StripeConfig and MockConfig.
type Config interface {
	ProviderName() Name
	newProvider(o *options) (Provider, error)
}

// Gateway environments.
const (
	EnvProduction = "PROD"
	EnvTest       = "TEST"
)

type RazorpayConfig struct {
	KeyID     string `json:"keyId" mapstructure:"key_id" validate:"required"`
	KeySecret string `json:"keySecret" mapstructure:"key_secret" validate:"required"`
	// Env is informational; Razorpay derives the mode from the key pair.
	Env string `json:"env,omitempty" mapstructure:"env" validate:"omitempty,oneof=PROD TEST"`
}

func (RazorpayConfig) ProviderName() Name { return NameRazorpay }

func (c RazorpayConfig) newProvider(o *options) (Provider, error) {
	return newRazorpay(c, o), nil
}

type CashfreeConfig struct {
	ClientID     string `json:"clientId" mapstructure:"client_id" validate:"required"`
	ClientSecret string `json:"clientSecret" mapstructure:"client_secret" validate:"required"`
	Env          string `json:"env,omitempty" mapstructure:"env" validate:"omitempty,oneof=PROD TEST"`
	// BaseURL overrides the environment's API root.
	BaseURL string `json:"baseUrl,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
}

func (CashfreeConfig) ProviderName() Name { return NameCashfree }

func (c CashfreeConfig) newProvider(o *options) (Provider, error) {
	return newCashfree(c, o)
}

type StripeConfig struct {
	SecretKey string `json:"secretKey" mapstructure:"secret_key" validate:"required"`
}

func (StripeConfig) ProviderName() Name { return NameStripe }

func (c StripeConfig) newProvider(o *options) (Provider, error) {
	return newStripe(c, o), nil
}

// MockConfig drives the in-memory gateway used for local runs and tests.
type MockConfig struct {
	Latency     time.Duration `json:"latency,omitempty" mapstructure:"latency" validate:"gte=0"`
	FailureRate float64       `json:"failureRate,omitempty" mapstructure:"failure_rate" validate:"gte=0,lte=1"`
}

func (MockConfig) ProviderName() Name { return NameMock }

func (c MockConfig) newProvider(o *options) (Provider, error) {
	return NewMockProvider(WithLatency(c.Latency), WithFailureRate(c.FailureRate)), nil
}

// ConfigFor returns an empty credential set for the named provider, ready to
// be decoded into.
func ConfigFor(name Name) (Config, bool) {
	switch name {
	case NameRazorpay:
		return &RazorpayConfig{}, true
	case NameCashfree:
		return &CashfreeConfig{}, true
	case NameStripe:
		return &StripeConfig{}, true
	case NameMock:
		return &MockConfig{}, true
	}
	return nil, false
}

type options struct {
	httpClient *http.Client
	logger     zerolog.Logger
	razorpay   RazorpayClient
	cashfree   CashfreeClient
	stripe     StripeClient
}

// Option customizes provider construction.
type Option func(*options)

// WithHTTPClient sets the client used for outbound gateway calls. Without it
// each gateway SDK keeps its own default client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRazorpayClient replaces the SDK-backed Razorpay client.
func WithRazorpayClient(c RazorpayClient) Option {
	return func(o *options) { o.razorpay = c }
}

// WithCashfreeClient replaces the REST-backed Cashfree client.
func WithCashfreeClient(c CashfreeClient) Option {
	return func(o *options) { o.cashfree = c }
}

// WithStripeClient replaces the SDK-backed Stripe client.
func WithStripeClient(c StripeClient) Option {
	return func(o *options) { o.stripe = c }
}

func buildOptions(opts []Option) *options {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// New constructs the provider the config describes. Credentials are not
// validated here.
func New(cfg Config, opts ...Option) (Provider, error) {
	return cfg.newProvider(buildOptions(opts))
}
