package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRazorpay struct {
	calls int

	order      map[string]any
	refund     map[string]any
	payment    map[string]any
	listing    map[string]any
	settlement map[string]any
	account    map[string]any
	err        error

	lastData   map[string]any
	lastQuery  map[string]any
	lastAmount int64
	lastID     string
}

func (f *fakeRazorpay) CreateOrder(_ context.Context, data map[string]any) (map[string]any, error) {
	f.calls++
	f.lastData = data
	return f.order, f.err
}

func (f *fakeRazorpay) RefundPayment(_ context.Context, paymentID string, amount int64, data map[string]any) (map[string]any, error) {
	f.calls++
	f.lastID, f.lastAmount, f.lastData = paymentID, amount, data
	return f.refund, f.err
}

func (f *fakeRazorpay) FetchPayment(_ context.Context, paymentID string) (map[string]any, error) {
	f.calls++
	f.lastID = paymentID
	return f.payment, f.err
}

func (f *fakeRazorpay) ListPayments(_ context.Context, query map[string]any) (map[string]any, error) {
	f.calls++
	f.lastQuery = query
	return f.listing, f.err
}

func (f *fakeRazorpay) FetchSettlement(_ context.Context, settlementID string) (map[string]any, error) {
	f.calls++
	f.lastID = settlementID
	return f.settlement, f.err
}

func (f *fakeRazorpay) FetchRefund(_ context.Context, refundID string) (map[string]any, error) {
	f.calls++
	f.lastID = refundID
	return f.refund, f.err
}

func (f *fakeRazorpay) FetchVirtualAccount(_ context.Context, accountID string) (map[string]any, error) {
	f.calls++
	f.lastID = accountID
	return f.account, f.err
}

func newTestRazorpay(f *fakeRazorpay) *Razorpay {
	return NewRazorpay(RazorpayConfig{KeyID: "rzp_test", KeySecret: "secret"}, WithRazorpayClient(f))
}

func requireEnvelope(t *testing.T, err error) *envelope.ErrorResponse {
	t.Helper()
	var env *envelope.ErrorResponse
	require.True(t, errors.As(err, &env), "expected error envelope, got %T: %v", err, err)
	return env
}

func TestRazorpay_Charge(t *testing.T) {
	f := &fakeRazorpay{order: map[string]any{
		"id":         "order_1",
		"amount":     float64(1000),
		"currency":   "INR",
		"status":     "created",
		"receipt":    "rcpt_x",
		"created_at": float64(1704067200),
	}}
	p := newTestRazorpay(f)

	result, err := p.Charge(context.Background(), payment.ChargeInput{
		Amount:   1000,
		Currency: "INR",
		Source:   "tok_x",
		Metadata: map[string]any{"userId": "user_1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_1", result.ID)
	assert.Equal(t, int64(1000), result.Amount)
	assert.Equal(t, "INR", result.Currency)
	assert.Equal(t, payment.StatusCreated, result.Status)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", result.CreatedAt)
	assert.Equal(t, "rcpt_x", result.Fields["receipt"])

	assert.Equal(t, 1, f.calls)
	assert.Equal(t, int64(1000), f.lastData["amount"])
	assert.Equal(t, true, f.lastData["payment_capture"])
	assert.Regexp(t, `^rcpt_\d+_[0-9a-f]{8}$`, f.lastData["receipt"])
	assert.Equal(t, map[string]any{"userId": "user_1"}, f.lastData["notes"])
}

func TestRazorpay_ChargeUsesCallerReceipt(t *testing.T) {
	f := &fakeRazorpay{order: map[string]any{"id": "order_1", "amount": float64(500)}}

	_, err := newTestRazorpay(f).Charge(context.Background(), payment.ChargeInput{
		Amount: 500, Currency: "INR", Source: "x",
		Metadata: map[string]any{"receipt": "inv_42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "inv_42", f.lastData["receipt"])
	assert.NotContains(t, f.lastData["notes"], "receipt")
}

func TestRazorpay_ChargeRejectsZeroAmountWithoutCallingGateway(t *testing.T) {
	f := &fakeRazorpay{}

	_, err := newTestRazorpay(f).Charge(context.Background(), payment.ChargeInput{Amount: 0, Currency: "INR", Source: "x"})

	env := requireEnvelope(t, err)
	assert.Equal(t, envelope.CodeValidation, env.Code)
	assert.Equal(t, 0, f.calls)
}

func TestRazorpay_ChargeGatewayFailure(t *testing.T) {
	f := &fakeRazorpay{err: errors.New("Authentication failed")}

	_, err := newTestRazorpay(f).Charge(context.Background(), payment.ChargeInput{Amount: 100, Currency: "INR", Source: "x"})

	env := requireEnvelope(t, err)
	assert.Equal(t, "[Razorpay Charge] Authentication failed", env.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, env.Status)
	assert.Equal(t, map[string]any{"message": "Authentication failed"}, env.Details)
}

func TestRazorpay_ChargeMalformedResponse(t *testing.T) {
	f := &fakeRazorpay{order: map[string]any{"amount": float64(100)}}

	_, err := newTestRazorpay(f).Charge(context.Background(), payment.ChargeInput{Amount: 100, Currency: "INR", Source: "x"})

	env := requireEnvelope(t, err)
	assert.Equal(t, http.StatusBadGateway, env.Status)
}

func TestRazorpay_Refund(t *testing.T) {
	f := &fakeRazorpay{refund: map[string]any{
		"id":         "rfnd_1",
		"amount":     float64(1000),
		"status":     "processed",
		"payment_id": "pay_1",
		"created_at": float64(1704067200),
	}}

	result, err := newTestRazorpay(f).Refund(context.Background(), payment.RefundInput{
		TransactionID: "pay_1", Amount: 1000, Note: "damaged",
	})
	require.NoError(t, err)

	assert.Equal(t, "rfnd_1", result.ID)
	assert.Equal(t, int64(1000), result.Amount)
	assert.Equal(t, payment.RefundProcessed, result.Status)
	assert.Equal(t, "pay_1", f.lastID)
	assert.Equal(t, int64(1000), f.lastAmount)
	assert.Equal(t, map[string]any{"note": "damaged"}, f.lastData["notes"])
}

func TestRazorpay_RefundFailureUsesFallbackCode(t *testing.T) {
	f := &fakeRazorpay{err: errors.New("The refund amount provided is greater than amount captured")}

	_, err := newTestRazorpay(f).Refund(context.Background(), payment.RefundInput{TransactionID: "pay_1", Amount: 99999})

	env := requireEnvelope(t, err)
	assert.Equal(t, razorpayRefundCode, env.Code)
	assert.Contains(t, env.Message, "[Razorpay Refund]")
}

func TestRazorpay_GetPaymentStatus(t *testing.T) {
	f := &fakeRazorpay{payment: map[string]any{"id": "pay_1", "status": "captured", "method": "upi"}}

	result, err := newTestRazorpay(f).GetPaymentStatus(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCaptured, result.Status)
	assert.Equal(t, "upi", result.Fields["method"])
}

func TestRazorpay_ListUserPayments(t *testing.T) {
	f := &fakeRazorpay{listing: map[string]any{"items": []any{
		map[string]any{"id": "pay_1", "status": "captured", "amount": float64(100), "notes": map[string]any{"userId": "u1"}},
		map[string]any{"id": "pay_2", "status": "failed", "amount": float64(200), "notes": map[string]any{"userId": "u1"}},
		map[string]any{"id": "pay_3", "status": "captured", "amount": float64(300), "notes": map[string]any{"userId": "u2"}},
		map[string]any{"id": "pay_4", "status": "captured", "amount": float64(400), "notes": []any{}},
	}}}

	results, err := newTestRazorpay(f).ListUserPayments(context.Background(), "u1", &payment.ListPaymentsFilter{
		Status:   payment.StatusCaptured,
		FromDate: "2024-01-01",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "pay_1", results[0].ID)

	assert.Equal(t, listPageSize, f.lastQuery["count"])
	assert.Equal(t, int64(1704067200), f.lastQuery["from"])
	assert.NotContains(t, f.lastQuery, "to")
}

func TestRazorpay_ListAllPayments(t *testing.T) {
	f := &fakeRazorpay{listing: map[string]any{"items": []any{
		map[string]any{"id": "pay_1", "status": "captured"},
		map[string]any{"id": "pay_2", "status": "refunded"},
	}}}

	results, err := newTestRazorpay(f).ListAllPayments(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRazorpay_ListFailure(t *testing.T) {
	f := &fakeRazorpay{err: errors.New("boom")}

	_, err := newTestRazorpay(f).ListAllPayments(context.Background(), nil)
	assert.Equal(t, razorpayListAllPaymentsCode, requireEnvelope(t, err).Code)

	_, err = newTestRazorpay(f).ListUserPayments(context.Background(), "u1", nil)
	assert.Equal(t, razorpayListUserPaymentsCode, requireEnvelope(t, err).Code)
}

func TestRazorpay_ListWithoutItems(t *testing.T) {
	f := &fakeRazorpay{listing: map[string]any{"count": float64(0)}}

	_, err := newTestRazorpay(f).ListAllPayments(context.Background(), nil)
	assert.Equal(t, http.StatusBadGateway, requireEnvelope(t, err).Status)
}

func TestRazorpay_GetSettlementDetails(t *testing.T) {
	f := &fakeRazorpay{settlement: map[string]any{
		"id":         "setl_1",
		"amount":     float64(98000),
		"status":     "processed",
		"utr":        "UTR123",
		"created_at": float64(1704067200),
	}}

	details, err := newTestRazorpay(f).GetSettlementDetails(context.Background(), "setl_1")
	require.NoError(t, err)
	assert.Equal(t, int64(98000), details.Amount)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", details.SettledAt)
	assert.Equal(t, "UTR123", details.Fields["utr"])

	f.settlement["status"] = "created"
	details, err = newTestRazorpay(f).GetSettlementDetails(context.Background(), "setl_1")
	require.NoError(t, err)
	assert.Empty(t, details.SettledAt)
}

func TestRazorpay_GetRefundStatus(t *testing.T) {
	tests := map[string]payment.RefundStatus{
		"processed": payment.RefundProcessed,
		"pending":   payment.RefundPending,
		"failed":    payment.RefundFailed,
		"created":   payment.RefundInitiated,
	}

	for gateway, want := range tests {
		t.Run(gateway, func(t *testing.T) {
			f := &fakeRazorpay{refund: map[string]any{"id": "rfnd_1", "status": gateway}}

			result, err := newTestRazorpay(f).GetRefundStatus(context.Background(), "rfnd_1")
			require.NoError(t, err)
			assert.Equal(t, want, result.Status)
		})
	}
}

func TestRazorpay_FetchVirtualAccount(t *testing.T) {
	f := &fakeRazorpay{account: map[string]any{"id": "va_1", "status": "active"}}

	account, err := newTestRazorpay(f).FetchVirtualAccount(context.Background(), "va_1")
	require.NoError(t, err)
	assert.Equal(t, "active", account["status"])

	_, err = newTestRazorpay(f).FetchVirtualAccount(context.Background(), "")
	assert.Equal(t, envelope.CodeValidation, requireEnvelope(t, err).Code)
	assert.Equal(t, 1, f.calls)
}

func TestRazorpayStatus_UnknownFallsBackToCreated(t *testing.T) {
	assert.Equal(t, payment.StatusCreated, razorpayStatus("mystery"))
	assert.Equal(t, payment.StatusAttempted, razorpayStatus("attempted"))
}
