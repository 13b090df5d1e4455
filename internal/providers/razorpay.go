package providers

import (
	"context"
	"maps"

	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/validation"
)

const (
	razorpayRefundCode           = "RAZORPAY_REFUND_ERROR"
	razorpayListUserPaymentsCode = "RAZORPAY_LIST_USER_PAYMENTS_ERROR"
	razorpayListAllPaymentsCode  = "RAZORPAY_LIST_ALL_PAYMENTS_ERROR"
)

// RazorpayClient is the part of the Razorpay API the provider calls.
// Records come back as the gateway's JSON objects.
type RazorpayClient interface {
	CreateOrder(ctx context.Context, data map[string]any) (map[string]any, error)
	// RefundPayment refunds amount minor units; zero refunds the remainder.
	RefundPayment(ctx context.Context, paymentID string, amount int64, data map[string]any) (map[string]any, error)
	FetchPayment(ctx context.Context, paymentID string) (map[string]any, error)
	ListPayments(ctx context.Context, query map[string]any) (map[string]any, error)
	FetchSettlement(ctx context.Context, settlementID string) (map[string]any, error)
	FetchRefund(ctx context.Context, refundID string) (map[string]any, error)
	FetchVirtualAccount(ctx context.Context, accountID string) (map[string]any, error)
}

// Razorpay charges by creating auto-captured orders.
type Razorpay struct {
	client RazorpayClient
}

// NewRazorpay builds a Razorpay provider from its credentials.
func NewRazorpay(cfg RazorpayConfig, opts ...Option) *Razorpay {
	return newRazorpay(cfg, buildOptions(opts))
}

func newRazorpay(cfg RazorpayConfig, o *options) *Razorpay {
	client := o.razorpay
	if client == nil {
		client = newRazorpaySDK(cfg, o.httpClient)
	}
	return &Razorpay{client: client}
}

func (r *Razorpay) Name() Name { return NameRazorpay }

func (r *Razorpay) fail(operation, code string, err error) error {
	return wrapGatewayError("Razorpay", operation, code, err)
}

func (r *Razorpay) Charge(ctx context.Context, in payment.ChargeInput) (*payment.ChargeResult, error) {
	if err := validation.Charge(in); err != nil {
		return nil, err
	}

	receipt := metadataString(in.Metadata, "receipt")
	if receipt == "" {
		receipt = payment.PlaceholderID("rcpt")
	}
	notes := map[string]any{}
	maps.Copy(notes, in.Metadata)
	delete(notes, "receipt")

	order, err := r.client.CreateOrder(ctx, map[string]any{
		"amount":          in.Amount,
		"currency":        in.Currency,
		"receipt":         receipt,
		"payment_capture": true,
		"notes":           notes,
	})
	if err != nil {
		return nil, r.fail("Charge", "", err)
	}

	result, err := razorpayCharge(order)
	if err != nil {
		return nil, r.fail("Charge", "", err)
	}
	return result, nil
}

func (r *Razorpay) Refund(ctx context.Context, in payment.RefundInput) (*payment.RefundResult, error) {
	if err := validation.Refund(in); err != nil {
		return nil, err
	}

	data := map[string]any{}
	if in.Note != "" {
		data["notes"] = map[string]any{"note": in.Note}
	}

	refund, err := r.client.RefundPayment(ctx, in.TransactionID, in.Amount, data)
	if err != nil {
		return nil, r.fail("Refund", razorpayRefundCode, err)
	}

	result, err := razorpayRefund(refund)
	if err != nil {
		return nil, r.fail("Refund", razorpayRefundCode, err)
	}
	return result, nil
}

func (r *Razorpay) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentStatusResult, error) {
	if err := validation.PaymentStatus(paymentID); err != nil {
		return nil, err
	}

	p, err := r.client.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, r.fail("GetPaymentStatus", "", err)
	}
	id := stringField(p, "id")
	if id == "" {
		return nil, r.fail("GetPaymentStatus", "", malformed("payment without id"))
	}

	return &payment.PaymentStatusResult{
		ID:     id,
		Status: razorpayStatus(stringField(p, "status")),
		Fields: passthrough(p),
	}, nil
}

func (r *Razorpay) ListUserPayments(ctx context.Context, userID string, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	if err := validation.ListUserPayments(userID, filter); err != nil {
		return nil, err
	}

	return r.list(ctx, "ListUserPayments", razorpayListUserPaymentsCode, filter, func(item map[string]any) bool {
		return stringField(mapField(item, "notes"), "userId") == userID
	})
}

func (r *Razorpay) ListAllPayments(ctx context.Context, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	if err := validation.ListAllPayments(filter); err != nil {
		return nil, err
	}

	return r.list(ctx, "ListAllPayments", razorpayListAllPaymentsCode, filter, nil)
}

func (r *Razorpay) list(ctx context.Context, operation, code string, filter *payment.ListPaymentsFilter, match func(map[string]any) bool) ([]*payment.ChargeResult, error) {
	query := map[string]any{}
	if filter != nil {
		maps.Copy(query, filter.Extra)
		if t, err := payment.ParseTimestamp(filter.FromDate); err == nil {
			query["from"] = t.Unix()
		}
		if t, err := payment.ParseTimestamp(filter.ToDate); err == nil {
			query["to"] = t.Unix()
		}
	}
	query["count"] = listPageSize

	resp, err := r.client.ListPayments(ctx, query)
	if err != nil {
		return nil, r.fail(operation, code, err)
	}
	items, ok := resp["items"].([]any)
	if !ok {
		return nil, r.fail(operation, code, malformed("listing without items"))
	}

	results := make([]*payment.ChargeResult, 0, len(items))
	for _, item := range objects(items) {
		if match != nil && !match(item) {
			continue
		}
		result, err := razorpayCharge(item)
		if err != nil {
			return nil, r.fail(operation, code, err)
		}
		if keep(result, filter) {
			results = append(results, result)
		}
	}
	return results, nil
}

func (r *Razorpay) GetSettlementDetails(ctx context.Context, settlementID string) (*payment.SettlementDetails, error) {
	if err := validation.SettlementDetails(settlementID); err != nil {
		return nil, err
	}

	s, err := r.client.FetchSettlement(ctx, settlementID)
	if err != nil {
		return nil, r.fail("GetSettlementDetails", "", err)
	}
	id := stringField(s, "id")
	if id == "" {
		return nil, r.fail("GetSettlementDetails", "", malformed("settlement without id"))
	}

	details := &payment.SettlementDetails{
		ID:     id,
		Amount: int64Field(s, "amount"),
		Status: stringField(s, "status"),
		Fields: passthrough(s),
	}
	if details.Status == "processed" {
		details.SettledAt = payment.FormatUnix(int64Field(s, "created_at"))
	}
	return details, nil
}

func (r *Razorpay) GetRefundStatus(ctx context.Context, refundID string) (*payment.RefundResult, error) {
	if err := validation.RefundStatus(refundID); err != nil {
		return nil, err
	}

	refund, err := r.client.FetchRefund(ctx, refundID)
	if err != nil {
		return nil, r.fail("GetRefundStatus", "", err)
	}
	result, err := razorpayRefund(refund)
	if err != nil {
		return nil, r.fail("GetRefundStatus", "", err)
	}
	return result, nil
}

func (r *Razorpay) FetchVirtualAccount(ctx context.Context, accountID string) (map[string]any, error) {
	if err := validation.VirtualAccount(accountID); err != nil {
		return nil, err
	}

	account, err := r.client.FetchVirtualAccount(ctx, accountID)
	if err != nil {
		return nil, r.fail("FetchVirtualAccount", "", err)
	}
	return account, nil
}

func razorpayCharge(m map[string]any) (*payment.ChargeResult, error) {
	id := stringField(m, "id")
	if id == "" {
		return nil, malformed("record without id")
	}
	return &payment.ChargeResult{
		ID:        id,
		Status:    razorpayStatus(stringField(m, "status")),
		Amount:    int64Field(m, "amount"),
		Currency:  stringField(m, "currency"),
		CreatedAt: payment.FormatUnix(int64Field(m, "created_at")),
		Fields:    passthrough(m),
	}, nil
}

func razorpayRefund(m map[string]any) (*payment.RefundResult, error) {
	id := stringField(m, "id")
	if id == "" {
		return nil, malformed("refund without id")
	}
	return &payment.RefundResult{
		ID:        id,
		Status:    razorpayRefundStatus(stringField(m, "status")),
		Amount:    int64Field(m, "amount"),
		CreatedAt: payment.FormatUnix(int64Field(m, "created_at")),
		Fields:    passthrough(m),
	}, nil
}

// Razorpay order and payment states already use the canonical names.
func razorpayStatus(s string) payment.PaymentStatus {
	if status := payment.PaymentStatus(s); status.Valid() {
		return status
	}
	return payment.StatusCreated
}

func razorpayRefundStatus(s string) payment.RefundStatus {
	switch s {
	case "processed":
		return payment.RefundProcessed
	case "pending":
		return payment.RefundPending
	case "failed":
		return payment.RefundFailed
	default:
		return payment.RefundInitiated
	}
}
