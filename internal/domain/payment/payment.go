package payment

import (
	"encoding/json"
	"maps"
)

// PaymentStatus is the canonical lifecycle state of a charge.
type PaymentStatus string

const (
	StatusCreated    PaymentStatus = "created"
	StatusAttempted  PaymentStatus = "attempted"
	StatusPaid       PaymentStatus = "paid"
	StatusAuthorized PaymentStatus = "authorized"
	StatusCaptured   PaymentStatus = "captured"
	StatusFailed     PaymentStatus = "failed"
	StatusRefunded   PaymentStatus = "refunded"
)

// PaymentStatuses lists every canonical payment status.
var PaymentStatuses = []PaymentStatus{
	StatusCreated, StatusAttempted, StatusPaid, StatusAuthorized,
	StatusCaptured, StatusFailed, StatusRefunded,
}

// Valid reports whether s is a canonical payment status.
func (s PaymentStatus) Valid() bool {
	for _, known := range PaymentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// RefundStatus is the canonical lifecycle state of a refund.
type RefundStatus string

const (
	RefundInitiated RefundStatus = "initiated"
	RefundProcessed RefundStatus = "processed"
	RefundPending   RefundStatus = "pending"
	RefundFailed    RefundStatus = "failed"
)

// Valid reports whether s is a canonical refund status.
func (s RefundStatus) Valid() bool {
	switch s {
	case RefundInitiated, RefundProcessed, RefundPending, RefundFailed:
		return true
	}
	return false
}

// Fields holds provider-native passthrough values.
type Fields map[string]any

// ChargeInput requests a charge. Amount is in the currency's minor unit.
type ChargeInput struct {
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ChargeResult is the canonical view of a charge, order or payment.
type ChargeResult struct {
	ID        string
	Status    PaymentStatus
	Amount    int64
	Currency  string
	CreatedAt string
	Fields    Fields
}

// MarshalJSON flattens passthrough fields next to the canonical ones.
// Canonical keys win on collision.
func (r ChargeResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatten(r.Fields, map[string]any{
		"id":        r.ID,
		"status":    r.Status,
		"amount":    r.Amount,
		"currency":  r.Currency,
		"createdAt": r.CreatedAt,
	}))
}

// RefundInput requests a full (Amount == 0) or partial refund.
type RefundInput struct {
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount,omitempty"`
	Note          string `json:"note,omitempty"`
}

// RefundResult is the canonical view of a refund.
type RefundResult struct {
	ID        string
	Status    RefundStatus
	Amount    int64
	CreatedAt string
	Fields    Fields
}

func (r RefundResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatten(r.Fields, map[string]any{
		"id":        r.ID,
		"status":    r.Status,
		"amount":    r.Amount,
		"createdAt": r.CreatedAt,
	}))
}

// PaymentStatusResult is the result of a status lookup.
type PaymentStatusResult struct {
	ID     string
	Status PaymentStatus
	Fields Fields
}

func (r PaymentStatusResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(flatten(r.Fields, map[string]any{
		"id":     r.ID,
		"status": r.Status,
	}))
}

// ListPaymentsFilter narrows a payment listing. Dates are ISO-8601 strings.
type ListPaymentsFilter struct {
	UserID   string         `json:"userId,omitempty"`
	Status   PaymentStatus  `json:"status,omitempty"`
	FromDate string         `json:"fromDate,omitempty"`
	ToDate   string         `json:"toDate,omitempty"`
	Extra    map[string]any `json:"-"`
}

// SettlementDetails is the canonical view of a gateway payout.
type SettlementDetails struct {
	ID        string
	Amount    int64
	Status    string
	SettledAt string
	Fields    Fields
}

func (s SettlementDetails) MarshalJSON() ([]byte, error) {
	canonical := map[string]any{
		"id":     s.ID,
		"amount": s.Amount,
		"status": s.Status,
	}
	if s.SettledAt != "" {
		canonical["settledAt"] = s.SettledAt
	}
	return json.Marshal(flatten(s.Fields, canonical))
}

func flatten(passthrough Fields, canonical map[string]any) map[string]any {
	out := make(map[string]any, len(passthrough)+len(canonical))
	maps.Copy(out, passthrough)
	maps.Copy(out, canonical)
	return out
}
