package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/validation"
	"github.com/stripe/stripe-go/v81"
)

const (
	stripeRefundCode           = "STRIPE_REFUND_ERROR"
	stripeListUserPaymentsCode = "STRIPE_LIST_USER_PAYMENTS_ERROR"
	stripeListAllPaymentsCode  = "STRIPE_LIST_ALL_PAYMENTS_ERROR"
)

// Stripe charges with confirmed PaymentIntents. The charge source is the
// payment method id. Payouts stand in for settlements.
type Stripe struct {
	client StripeClient
}

// NewStripe builds a Stripe provider from its secret key.
func NewStripe(cfg StripeConfig, opts ...Option) *Stripe {
	return newStripe(cfg, buildOptions(opts))
}

func newStripe(cfg StripeConfig, o *options) *Stripe {
	client := o.stripe
	if client == nil {
		client = newStripeSDK(cfg, o.httpClient, o.logger)
	}
	return &Stripe{client: client}
}

func (s *Stripe) Name() Name { return NameStripe }

func (s *Stripe) fail(operation, code string, err error) error {
	var apiErr *stripe.Error
	if errors.As(err, &apiErr) {
		err = stripeError{apiErr}
	}
	return wrapGatewayError("Stripe", operation, code, err)
}

func (s *Stripe) Charge(ctx context.Context, in payment.ChargeInput) (*payment.ChargeResult, error) {
	if err := validation.Charge(in); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(in.Amount),
		Currency:      stripe.String(strings.ToLower(in.Currency)),
		PaymentMethod: stripe.String(in.Source),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	key := metadataString(in.Metadata, "idempotencyKey")
	if key == "" {
		key = payment.PlaceholderID("charge")
	}
	params.SetIdempotencyKey(key)
	for k, v := range in.Metadata {
		if k == "idempotencyKey" {
			continue
		}
		params.AddMetadata(k, fmt.Sprint(v))
	}

	pi, err := s.client.CreatePaymentIntent(params)
	if err != nil {
		return nil, s.fail("Charge", "", err)
	}
	result, err := stripeCharge(pi)
	if err != nil {
		return nil, s.fail("Charge", "", err)
	}
	return result, nil
}

func (s *Stripe) Refund(ctx context.Context, in payment.RefundInput) (*payment.RefundResult, error) {
	if err := validation.Refund(in); err != nil {
		return nil, err
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(in.TransactionID),
	}
	params.Context = ctx
	if in.Amount > 0 {
		params.Amount = stripe.Int64(in.Amount)
	}
	if in.Note != "" {
		params.AddMetadata("note", in.Note)
	}

	refund, err := s.client.CreateRefund(params)
	if err != nil {
		return nil, s.fail("Refund", stripeRefundCode, err)
	}
	result, err := stripeRefund(refund)
	if err != nil {
		return nil, s.fail("Refund", stripeRefundCode, err)
	}
	return result, nil
}

func (s *Stripe) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentStatusResult, error) {
	if err := validation.PaymentStatus(paymentID); err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := s.client.GetPaymentIntent(paymentID, params)
	if err != nil {
		return nil, s.fail("GetPaymentStatus", "", err)
	}
	if pi == nil || pi.ID == "" {
		return nil, s.fail("GetPaymentStatus", "", malformed("payment intent without id"))
	}

	return &payment.PaymentStatusResult{
		ID:     pi.ID,
		Status: stripeStatus(pi.Status),
		Fields: stripeFields(pi),
	}, nil
}

func (s *Stripe) ListUserPayments(ctx context.Context, userID string, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	if err := validation.ListUserPayments(userID, filter); err != nil {
		return nil, err
	}

	return s.list(ctx, "ListUserPayments", stripeListUserPaymentsCode, filter, func(pi *stripe.PaymentIntent) bool {
		return pi.Metadata["userId"] == userID
	})
}

func (s *Stripe) ListAllPayments(ctx context.Context, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	if err := validation.ListAllPayments(filter); err != nil {
		return nil, err
	}

	return s.list(ctx, "ListAllPayments", stripeListAllPaymentsCode, filter, nil)
}

func (s *Stripe) list(ctx context.Context, operation, code string, filter *payment.ListPaymentsFilter, match func(*stripe.PaymentIntent) bool) ([]*payment.ChargeResult, error) {
	params := &stripe.PaymentIntentListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(listPageSize)
	params.Single = true
	if filter != nil {
		created := &stripe.RangeQueryParams{}
		if t, err := payment.ParseTimestamp(filter.FromDate); err == nil {
			created.GreaterThanOrEqual = t.Unix()
		}
		if t, err := payment.ParseTimestamp(filter.ToDate); err == nil {
			created.LesserThanOrEqual = t.Unix()
		}
		if *created != (stripe.RangeQueryParams{}) {
			params.CreatedRange = created
		}
		if customer, ok := filter.Extra["customer"].(string); ok {
			params.Customer = stripe.String(customer)
		}
	}

	intents, err := s.client.ListPaymentIntents(params)
	if err != nil {
		return nil, s.fail(operation, code, err)
	}

	results := make([]*payment.ChargeResult, 0, len(intents))
	for _, pi := range intents {
		if pi == nil || (match != nil && !match(pi)) {
			continue
		}
		result, err := stripeCharge(pi)
		if err != nil {
			return nil, s.fail(operation, code, err)
		}
		if keep(result, filter) {
			results = append(results, result)
		}
	}
	return results, nil
}

func (s *Stripe) GetSettlementDetails(ctx context.Context, settlementID string) (*payment.SettlementDetails, error) {
	if err := validation.SettlementDetails(settlementID); err != nil {
		return nil, err
	}

	params := &stripe.PayoutParams{}
	params.Context = ctx
	payout, err := s.client.GetPayout(settlementID, params)
	if err != nil {
		return nil, s.fail("GetSettlementDetails", "", err)
	}
	if payout == nil || payout.ID == "" {
		return nil, s.fail("GetSettlementDetails", "", malformed("payout without id"))
	}

	details := &payment.SettlementDetails{
		ID:     payout.ID,
		Amount: payout.Amount,
		Status: string(payout.Status),
		Fields: stripeFields(payout),
	}
	if payout.Status == stripe.PayoutStatusPaid {
		details.SettledAt = payment.FormatUnix(payout.ArrivalDate)
	}
	return details, nil
}

func (s *Stripe) GetRefundStatus(ctx context.Context, refundID string) (*payment.RefundResult, error) {
	if err := validation.RefundStatus(refundID); err != nil {
		return nil, err
	}

	params := &stripe.RefundParams{}
	params.Context = ctx
	refund, err := s.client.GetRefund(refundID, params)
	if err != nil {
		return nil, s.fail("GetRefundStatus", "", err)
	}
	result, err := stripeRefund(refund)
	if err != nil {
		return nil, s.fail("GetRefundStatus", "", err)
	}
	return result, nil
}

func stripeCharge(pi *stripe.PaymentIntent) (*payment.ChargeResult, error) {
	if pi == nil || pi.ID == "" {
		return nil, malformed("payment intent without id")
	}
	return &payment.ChargeResult{
		ID:        pi.ID,
		Status:    stripeStatus(pi.Status),
		Amount:    pi.Amount,
		Currency:  strings.ToUpper(string(pi.Currency)),
		CreatedAt: payment.FormatUnix(pi.Created),
		Fields:    stripeFields(pi),
	}, nil
}

func stripeRefund(r *stripe.Refund) (*payment.RefundResult, error) {
	if r == nil || r.ID == "" {
		return nil, malformed("refund without id")
	}
	return &payment.RefundResult{
		ID:        r.ID,
		Status:    stripeRefundStatus(r.Status),
		Amount:    r.Amount,
		CreatedAt: payment.FormatUnix(r.Created),
		Fields:    stripeFields(r),
	}, nil
}

// stripeFields exposes an SDK object through its JSON form.
func stripeFields(v any) payment.Fields {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var fields payment.Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func stripeStatus(s stripe.PaymentIntentStatus) payment.PaymentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return payment.StatusCaptured
	case stripe.PaymentIntentStatusRequiresCapture:
		return payment.StatusAuthorized
	case stripe.PaymentIntentStatusProcessing:
		return payment.StatusAttempted
	case stripe.PaymentIntentStatusCanceled:
		return payment.StatusFailed
	default:
		return payment.StatusCreated
	}
}

func stripeRefundStatus(s stripe.RefundStatus) payment.RefundStatus {
	switch s {
	case stripe.RefundStatusSucceeded:
		return payment.RefundProcessed
	case stripe.RefundStatusPending, stripe.RefundStatusRequiresAction:
		return payment.RefundPending
	case stripe.RefundStatusFailed, stripe.RefundStatusCanceled:
		return payment.RefundFailed
	default:
		return payment.RefundInitiated
	}
}

// stripeError surfaces the SDK error's status and code to the envelope.
type stripeError struct {
	err *stripe.Error
}

func (e stripeError) Error() string {
	if e.err.Msg != "" {
		return e.err.Msg
	}
	return e.err.Error()
}

func (e stripeError) Unwrap() error { return e.err }

func (e stripeError) HTTPStatus() int { return e.err.HTTPStatusCode }

func (e stripeError) ErrorCode() string { return string(e.err.Code) }

func (e stripeError) ErrorDetails() any {
	return map[string]any{
		"type":      string(e.err.Type),
		"code":      string(e.err.Code),
		"message":   e.err.Msg,
		"requestId": e.err.RequestID,
	}
}
