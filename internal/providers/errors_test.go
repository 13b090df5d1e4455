package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
	"github.com/cassiomorais/paygate/internal/envelope"
	rzperrors "github.com/razorpay/razorpay-go/errors"
	"github.com/stretchr/testify/assert"
)

type codedError struct {
	status int
	code   string
}

func (e codedError) Error() string     { return "coded failure" }
func (e codedError) HTTPStatus() int   { return e.status }
func (e codedError) ErrorCode() string { return e.code }

func TestWrapGatewayError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		fallback   string
		wantStatus int
		wantCode   string
	}{
		{"plain error", errors.New("boom"), "", http.StatusUnprocessableEntity, envelope.CodeInternal},
		{"plain error with fallback", errors.New("boom"), "X_REFUND_ERROR", http.StatusUnprocessableEntity, "X_REFUND_ERROR"},
		{"gateway status and code", codedError{http.StatusNotFound, "order_not_found"}, "X", http.StatusNotFound, "order_not_found"},
		{"gateway status only", codedError{http.StatusUnauthorized, ""}, "", http.StatusUnauthorized, envelope.CodeUnauthorized},
		{"breaker open", fmt.Errorf("%w: open", domainErrors.ErrGatewayUnavailable), "", http.StatusServiceUnavailable, envelope.CodeInternal},
		{"deadline", context.DeadlineExceeded, "", http.StatusGatewayTimeout, envelope.CodeInternal},
		{"canceled", context.Canceled, "", http.StatusRequestTimeout, envelope.CodeInternal},
		{"canceled during transport", &url.Error{Op: "Post", URL: "https://api.razorpay.com/v1/orders", Err: context.Canceled}, "", http.StatusRequestTimeout, envelope.CodeInternal},
		{"razorpay bad request", razorpayError(&rzperrors.BadRequestError{Message: "The amount must be atleast INR 1.00"}), "", http.StatusBadRequest, envelope.CodeUnexpected},
		{"razorpay bad request with fallback", razorpayError(&rzperrors.BadRequestError{Message: "invalid payment id"}), "RAZORPAY_REFUND_ERROR", http.StatusBadRequest, "RAZORPAY_REFUND_ERROR"},
		{"razorpay server error", razorpayError(&rzperrors.ServerError{Message: "internal"}), "", http.StatusBadGateway, envelope.CodeInternal},
		{"razorpay gateway error", razorpayError(&rzperrors.GatewayError{Message: "bank timeout"}), "", http.StatusBadGateway, envelope.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrapGatewayError("Razorpay", "Charge", tt.fallback, tt.err)

			env := requireEnvelope(t, err)
			assert.Equal(t, tt.wantStatus, env.Status)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.False(t, env.Success)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWrapGatewayError_EnvelopePassesThrough(t *testing.T) {
	original := envelope.NewError(envelope.ErrorParams{Message: "already wrapped", Code: envelope.CodeValidation})

	assert.Same(t, original, wrapGatewayError("Cashfree", "Refund", "X", original))
}

func TestUnsupportedOperation(t *testing.T) {
	err := UnsupportedOperation(NameStripe, "fetchVirtualAccount")

	env := requireEnvelope(t, err)
	assert.Equal(t, envelope.CodeUnsupportedOperation, env.Code)
	assert.Contains(t, env.Message, "stripe does not support fetchVirtualAccount")
	assert.ErrorIs(t, err, domainErrors.ErrUnsupportedOperation)
}

func TestRazorpayError_ClassifiesRejections(t *testing.T) {
	rejected := razorpayError(&rzperrors.BadRequestError{Message: "bad"})
	assert.ErrorIs(t, rejected, domainErrors.ErrGatewayRejected)

	var badRequest *rzperrors.BadRequestError
	assert.ErrorAs(t, rejected, &badRequest)

	serverSide := razorpayError(&rzperrors.ServerError{Message: "down"})
	assert.NotErrorIs(t, serverSide, domainErrors.ErrGatewayRejected)

	plain := errors.New("dial tcp: no such host")
	assert.Same(t, plain, razorpayError(plain))
}
