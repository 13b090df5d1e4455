package providers

import (
	"context"
	"fmt"
	"maps"
	"math/rand"
	"net/http"
	"sync"
	"time"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/envelope"
	"github.com/cassiomorais/paygate/internal/validation"
	"github.com/google/uuid"
)

// MockProvider is an in-memory gateway. Charges are captured immediately
// and refunds processed immediately; latency and failures are simulated.
type MockProvider struct {
	failureRate float64 // 0.0 to 1.0
	latency     time.Duration

	mu       sync.Mutex
	charges  map[string]*payment.ChargeResult
	order    []string
	refunded map[string]int64
	refunds  map[string]*payment.RefundResult
}

type MockProviderOption func(*MockProvider)

func WithFailureRate(rate float64) MockProviderOption {
	return func(p *MockProvider) { p.failureRate = rate }
}

func WithLatency(d time.Duration) MockProviderOption {
	return func(p *MockProvider) { p.latency = d }
}

func NewMockProvider(opts ...MockProviderOption) *MockProvider {
	p := &MockProvider{
		charges:  make(map[string]*payment.ChargeResult),
		refunded: make(map[string]int64),
		refunds:  make(map[string]*payment.RefundResult),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *MockProvider) Name() Name { return NameMock }

// simulate applies latency and the configured failure rate.
func (p *MockProvider) simulate(ctx context.Context, operation string) error {
	if p.latency > 0 {
		select {
		case <-time.After(p.latency):
		case <-ctx.Done():
			return wrapGatewayError("Mock", operation, "", ctx.Err())
		}
	}

	if p.failureRate > 0 && rand.Float64() < p.failureRate {
		return wrapGatewayError("Mock", operation, "", fmt.Errorf("%w: simulated failure", domainErrors.ErrGatewayRejected))
	}
	return nil
}

func notFound(operation, what, id string) error {
	return envelope.NewError(envelope.ErrorParams{
		Message:    fmt.Sprintf("[Mock %s] %s %s not found", operation, what, id),
		StatusCode: http.StatusNotFound,
	})
}

func (p *MockProvider) Charge(ctx context.Context, in payment.ChargeInput) (*payment.ChargeResult, error) {
	if err := validation.Charge(in); err != nil {
		return nil, err
	}
	if err := p.simulate(ctx, "Charge"); err != nil {
		return nil, err
	}

	id := fmt.Sprintf("mock_pay_%s", uuid.New().String()[:8])
	fields := payment.Fields{"source": in.Source}
	if len(in.Metadata) > 0 {
		fields["metadata"] = maps.Clone(in.Metadata)
	}
	result := &payment.ChargeResult{
		ID:        id,
		Status:    payment.StatusCaptured,
		Amount:    in.Amount,
		Currency:  in.Currency,
		CreatedAt: payment.FormatTime(time.Now()),
		Fields:    fields,
	}

	p.mu.Lock()
	p.charges[id] = result
	p.order = append(p.order, id)
	p.mu.Unlock()

	return cloneCharge(result), nil
}

func (p *MockProvider) Refund(ctx context.Context, in payment.RefundInput) (*payment.RefundResult, error) {
	if err := validation.Refund(in); err != nil {
		return nil, err
	}
	if err := p.simulate(ctx, "Refund"); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	charge, ok := p.charges[in.TransactionID]
	if !ok {
		return nil, notFound("Refund", "payment", in.TransactionID)
	}
	remaining := charge.Amount - p.refunded[charge.ID]
	amount := in.Amount
	if amount == 0 {
		amount = remaining
	}
	if amount <= 0 || amount > remaining {
		return nil, envelope.NewError(envelope.ErrorParams{
			Message: fmt.Sprintf("[Mock Refund] amount %d exceeds refundable %d", amount, remaining),
			Code:    "MOCK_REFUND_ERROR",
		})
	}

	p.refunded[charge.ID] += amount
	if p.refunded[charge.ID] == charge.Amount {
		charge.Status = payment.StatusRefunded
	}

	refund := &payment.RefundResult{
		ID:        fmt.Sprintf("mock_rfnd_%s", uuid.New().String()[:8]),
		Status:    payment.RefundProcessed,
		Amount:    amount,
		CreatedAt: payment.FormatTime(time.Now()),
		Fields:    payment.Fields{"paymentId": charge.ID, "note": in.Note},
	}
	p.refunds[refund.ID] = refund
	return cloneRefund(refund), nil
}

func (p *MockProvider) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentStatusResult, error) {
	if err := validation.PaymentStatus(paymentID); err != nil {
		return nil, err
	}
	if err := p.simulate(ctx, "GetPaymentStatus"); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	charge, ok := p.charges[paymentID]
	if !ok {
		return nil, notFound("GetPaymentStatus", "payment", paymentID)
	}
	return &payment.PaymentStatusResult{
		ID:     charge.ID,
		Status: charge.Status,
		Fields: payment.Fields{"amount": charge.Amount, "currency": charge.Currency},
	}, nil
}

func (p *MockProvider) ListUserPayments(ctx context.Context, userID string, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	if err := validation.ListUserPayments(userID, filter); err != nil {
		return nil, err
	}
	if err := p.simulate(ctx, "ListUserPayments"); err != nil {
		return nil, err
	}

	return p.list(filter, func(c *payment.ChargeResult) bool {
		meta, _ := c.Fields["metadata"].(map[string]any)
		return metadataString(meta, "userId") == userID
	}), nil
}

func (p *MockProvider) ListAllPayments(ctx context.Context, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	if err := validation.ListAllPayments(filter); err != nil {
		return nil, err
	}
	if err := p.simulate(ctx, "ListAllPayments"); err != nil {
		return nil, err
	}

	return p.list(filter, nil), nil
}

func (p *MockProvider) list(filter *payment.ListPaymentsFilter, match func(*payment.ChargeResult) bool) []*payment.ChargeResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := make([]*payment.ChargeResult, 0, len(p.order))
	for _, id := range p.order {
		c := p.charges[id]
		if match != nil && !match(c) {
			continue
		}
		if !keep(c, filter) || !withinRange(c.CreatedAt, filter) {
			continue
		}
		results = append(results, cloneCharge(c))
		if len(results) == listPageSize {
			break
		}
	}
	return results
}

func withinRange(createdAt string, filter *payment.ListPaymentsFilter) bool {
	if filter == nil {
		return true
	}
	created, err := payment.ParseTimestamp(createdAt)
	if err != nil {
		return true
	}
	if from, err := payment.ParseTimestamp(filter.FromDate); err == nil && created.Before(from) {
		return false
	}
	if to, err := payment.ParseTimestamp(filter.ToDate); err == nil && created.After(to) {
		return false
	}
	return true
}

// GetSettlementDetails reports every captured charge as settled in one
// batch under the requested id.
func (p *MockProvider) GetSettlementDetails(ctx context.Context, settlementID string) (*payment.SettlementDetails, error) {
	if err := validation.SettlementDetails(settlementID); err != nil {
		return nil, err
	}
	if err := p.simulate(ctx, "GetSettlementDetails"); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var total int64
	for _, c := range p.charges {
		total += c.Amount - p.refunded[c.ID]
	}
	return &payment.SettlementDetails{
		ID:        settlementID,
		Amount:    total,
		Status:    "processed",
		SettledAt: payment.FormatTime(time.Now()),
		Fields:    payment.Fields{"payments": len(p.charges)},
	}, nil
}

func (p *MockProvider) GetRefundStatus(ctx context.Context, refundID string) (*payment.RefundResult, error) {
	if err := validation.RefundStatus(refundID); err != nil {
		return nil, err
	}
	if err := p.simulate(ctx, "GetRefundStatus"); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	refund, ok := p.refunds[refundID]
	if !ok {
		return nil, notFound("GetRefundStatus", "refund", refundID)
	}
	return cloneRefund(refund), nil
}

func (p *MockProvider) FetchVirtualAccount(ctx context.Context, accountID string) (map[string]any, error) {
	if err := validation.VirtualAccount(accountID); err != nil {
		return nil, err
	}
	if err := p.simulate(ctx, "FetchVirtualAccount"); err != nil {
		return nil, err
	}

	return map[string]any{
		"id":     accountID,
		"status": "active",
		"receivers": []any{map[string]any{
			"entity":         "bank_account",
			"account_number": "1112220000" + fmt.Sprint(len(accountID)),
			"ifsc":           "MOCK0000001",
		}},
	}, nil
}

func cloneCharge(c *payment.ChargeResult) *payment.ChargeResult {
	out := *c
	out.Fields = passthrough(c.Fields)
	if meta, ok := out.Fields["metadata"].(map[string]any); ok {
		out.Fields["metadata"] = maps.Clone(meta)
	}
	return &out
}

func cloneRefund(r *payment.RefundResult) *payment.RefundResult {
	out := *r
	out.Fields = passthrough(r.Fields)
	return &out
}
