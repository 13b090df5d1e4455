// Package manager is the single entry point to the payment gateways. Init
// validates the configuration and builds exactly one provider; every
// operation after that is forwarded to it unchanged.
package manager

import (
	"context"
	"errors"
	"fmt"

	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/infrastructure/observability"
	"github.com/cassiomorais/paygate/internal/providers"
	"github.com/cassiomorais/paygate/internal/validation"
	"github.com/rs/zerolog"
)

type Manager struct {
	provider providers.Provider
}

type options struct {
	logger       *zerolog.Logger
	metrics      *observability.Metrics
	providerOpts []providers.Option
}

type Option func(*options)

// WithLogger logs every operation through the given logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithMetrics records every operation in the given metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithProviderOptions forwards construction options to the provider.
func WithProviderOptions(opts ...providers.Option) Option {
	return func(o *options) { o.providerOpts = append(o.providerOpts, opts...) }
}

// Init validates cfg and constructs its provider. An unknown provider name
// fails with unsupported_provider; invalid credentials fail with a
// validation_error tagged "[Configuration Error]". Nothing is built on
// failure.
func Init(ctx context.Context, cfg Config, opts ...Option) (*Manager, error) {
	if cfg.Provider != "" && !cfg.Provider.Supported() {
		return nil, unsupportedProvider(string(cfg.Provider))
	}
	if err := validation.Struct(configErrorTag, cfg); err != nil {
		return nil, err
	}
	if got := cfg.Settings.ProviderName(); got != cfg.Provider {
		return nil, configError(
			fmt.Sprintf("%s credentials supplied for provider %s", got, cfg.Provider),
			errors.New("provider mismatch"),
		)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	providerOpts := o.providerOpts
	if o.logger != nil {
		providerOpts = append([]providers.Option{providers.WithLogger(*o.logger)}, providerOpts...)
	}

	p, err := providers.New(cfg.Settings, providerOpts...)
	if err != nil {
		return nil, err
	}

	if o.logger != nil || o.metrics != nil {
		logger := zerolog.Nop()
		if o.logger != nil {
			logger = *o.logger
		}
		p = providers.Instrument(p, o.metrics, logger)
		logger.Info().Ctx(ctx).Str("provider", string(cfg.Provider)).Msg("Payment provider initialized")
	}

	return &Manager{provider: p}, nil
}

// InitRaw decodes raw credentials for the named provider and calls Init.
func InitRaw(ctx context.Context, name string, raw map[string]any, opts ...Option) (*Manager, error) {
	cfg, err := ParseConfig(name, raw)
	if err != nil {
		return nil, err
	}
	return Init(ctx, cfg, opts...)
}

// Provider names the gateway behind the manager.
func (m *Manager) Provider() providers.Name {
	return m.provider.Name()
}

func (m *Manager) Charge(ctx context.Context, in payment.ChargeInput) (*payment.ChargeResult, error) {
	return m.provider.Charge(ctx, in)
}

func (m *Manager) Refund(ctx context.Context, in payment.RefundInput) (*payment.RefundResult, error) {
	return m.provider.Refund(ctx, in)
}

func (m *Manager) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentStatusResult, error) {
	return m.provider.GetPaymentStatus(ctx, paymentID)
}

func (m *Manager) ListUserPayments(ctx context.Context, userID string, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	return m.provider.ListUserPayments(ctx, userID, filter)
}

func (m *Manager) ListAllPayments(ctx context.Context, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	return m.provider.ListAllPayments(ctx, filter)
}

func (m *Manager) GetSettlementDetails(ctx context.Context, settlementID string) (*payment.SettlementDetails, error) {
	return m.provider.GetSettlementDetails(ctx, settlementID)
}

func (m *Manager) GetRefundStatus(ctx context.Context, refundID string) (*payment.RefundResult, error) {
	return m.provider.GetRefundStatus(ctx, refundID)
}

// FetchVirtualAccount fails with unsupported_operation when the provider has
// no virtual accounts.
func (m *Manager) FetchVirtualAccount(ctx context.Context, accountID string) (map[string]any, error) {
	fetcher, ok := m.provider.(providers.VirtualAccountFetcher)
	if !ok {
		return nil, providers.UnsupportedOperation(m.provider.Name(), "fetchVirtualAccount")
	}
	return fetcher.FetchVirtualAccount(ctx, accountID)
}
