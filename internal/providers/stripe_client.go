package providers

import (
	"net/http"

	"github.com/cassiomorais/paygate/internal/infrastructure/observability"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// StripeClient is the part of the Stripe API the provider calls. Each
// params value carries the request context.
type StripeClient interface {
	CreatePaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	GetPaymentIntent(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	// ListPaymentIntents reads a single page.
	ListPaymentIntents(params *stripe.PaymentIntentListParams) ([]*stripe.PaymentIntent, error)
	CreateRefund(params *stripe.RefundParams) (*stripe.Refund, error)
	GetRefund(id string, params *stripe.RefundParams) (*stripe.Refund, error)
	GetPayout(id string, params *stripe.PayoutParams) (*stripe.Payout, error)
}

// stripeSDK adapts a per-key SDK client so several keys can coexist in one
// process.
type stripeSDK struct {
	api *client.API
}

func newStripeSDK(cfg StripeConfig, httpClient *http.Client, logger zerolog.Logger) *stripeSDK {
	backendConfig := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     observability.NewLeveledLogger(logger),
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	}
	return &stripeSDK{api: client.New(cfg.SecretKey, backends)}
}

func (c *stripeSDK) CreatePaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.api.PaymentIntents.New(params)
}

func (c *stripeSDK) GetPaymentIntent(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.api.PaymentIntents.Get(id, params)
}

func (c *stripeSDK) ListPaymentIntents(params *stripe.PaymentIntentListParams) ([]*stripe.PaymentIntent, error) {
	params.Single = true
	it := c.api.PaymentIntents.List(params)

	var intents []*stripe.PaymentIntent
	for it.Next() {
		intents = append(intents, it.PaymentIntent())
	}
	return intents, it.Err()
}

func (c *stripeSDK) CreateRefund(params *stripe.RefundParams) (*stripe.Refund, error) {
	return c.api.Refunds.New(params)
}

func (c *stripeSDK) GetRefund(id string, params *stripe.RefundParams) (*stripe.Refund, error) {
	return c.api.Refunds.Get(id, params)
}

func (c *stripeSDK) GetPayout(id string, params *stripe.PayoutParams) (*stripe.Payout, error) {
	return c.api.Payouts.Get(id, params)
}
