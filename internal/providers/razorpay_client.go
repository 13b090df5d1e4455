package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
	razorpay "github.com/razorpay/razorpay-go"
	rzperrors "github.com/razorpay/razorpay-go/errors"
)

// razorpaySDK adapts the official SDK. The SDK takes no context, so
// cancellation is only observed before each call.
type razorpaySDK struct {
	client *razorpay.Client
}

// newRazorpaySDK builds the SDK client. Every SDK resource shares one
// request struct, so replacing its HTTP client routes all calls through
// httpClient. A nil httpClient keeps the SDK's own.
func newRazorpaySDK(cfg RazorpayConfig, httpClient *http.Client) *razorpaySDK {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	if httpClient != nil {
		client.Order.Request.HTTPClient = httpClient
	}
	return &razorpaySDK{client: client}
}

// razorpayAPIError keeps the status class of a typed SDK error, which the
// SDK otherwise reduces to a description.
type razorpayAPIError struct {
	status int
	err    error
}

func (e *razorpayAPIError) Error() string   { return e.err.Error() }
func (e *razorpayAPIError) HTTPStatus() int { return e.status }

func (e *razorpayAPIError) Unwrap() []error {
	if e.status < http.StatusInternalServerError {
		return []error{domainErrors.ErrGatewayRejected, e.err}
	}
	return []error{e.err}
}

func razorpayError(err error) error {
	var (
		badRequest *rzperrors.BadRequestError
		server     *rzperrors.ServerError
		gateway    *rzperrors.GatewayError
	)
	switch {
	case errors.As(err, &badRequest):
		return &razorpayAPIError{status: http.StatusBadRequest, err: err}
	case errors.As(err, &server), errors.As(err, &gateway):
		return &razorpayAPIError{status: http.StatusBadGateway, err: err}
	}
	return err
}

// errRazorpayRejected stands in for BAD_REQUEST_ERROR responses: the SDK
// drains their body and returns an empty record without an error.
var errRazorpayRejected = errors.New("request rejected by razorpay")

func sdkResult(m map[string]any, err error) (map[string]any, error) {
	if err != nil {
		return nil, razorpayError(err)
	}
	if len(m) == 0 {
		return nil, &razorpayAPIError{status: http.StatusBadRequest, err: errRazorpayRejected}
	}
	return m, nil
}

func (c *razorpaySDK) CreateOrder(ctx context.Context, data map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sdkResult(c.client.Order.Create(data, nil))
}

func (c *razorpaySDK) RefundPayment(ctx context.Context, paymentID string, amount int64, data map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount == 0 {
		p, err := sdkResult(c.client.Payment.Fetch(paymentID, nil, nil))
		if err != nil {
			return nil, err
		}
		amount = int64Field(p, "amount") - int64Field(p, "amount_refunded")
		if amount <= 0 {
			return nil, fmt.Errorf("payment %s has nothing left to refund", paymentID)
		}
	}
	return sdkResult(c.client.Payment.Refund(paymentID, int(amount), data, nil))
}

func (c *razorpaySDK) FetchPayment(ctx context.Context, paymentID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sdkResult(c.client.Payment.Fetch(paymentID, nil, nil))
}

func (c *razorpaySDK) ListPayments(ctx context.Context, query map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sdkResult(c.client.Payment.All(query, nil))
}

func (c *razorpaySDK) FetchSettlement(ctx context.Context, settlementID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sdkResult(c.client.Settlement.Fetch(settlementID, nil, nil))
}

func (c *razorpaySDK) FetchRefund(ctx context.Context, refundID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sdkResult(c.client.Refund.Fetch(refundID, nil, nil))
}

func (c *razorpaySDK) FetchVirtualAccount(ctx context.Context, accountID string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sdkResult(c.client.VirtualAccount.Fetch(accountID, nil, nil))
}
