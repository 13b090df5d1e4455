package controller

import (
	"net/http"

	"github.com/cassiomorais/paygate/internal/domain/payment"
)

// ChargeRequest is the body of POST /api/v1/charges. Amount is in the
// currency's minor unit.
type ChargeRequest struct {
	Amount   int64          `json:"amount"`
	Currency string         `json:"currency"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (r ChargeRequest) toInput() payment.ChargeInput {
	return payment.ChargeInput{
		Amount:   r.Amount,
		Currency: r.Currency,
		Source:   r.Source,
		Metadata: r.Metadata,
	}
}

// RefundRequest is the body of POST /api/v1/refunds. A zero amount refunds
// the full remaining balance.
type RefundRequest struct {
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount,omitempty"`
	Note          string `json:"note,omitempty"`
}

func (r RefundRequest) toInput() payment.RefundInput {
	return payment.RefundInput{
		TransactionID: r.TransactionID,
		Amount:        r.Amount,
		Note:          r.Note,
	}
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Query keys understood by the list endpoints. Anything else is forwarded to
// the gateway as a provider-specific filter.
const (
	queryStatus   = "status"
	queryFromDate = "fromDate"
	queryToDate   = "toDate"
)

func listFilter(r *http.Request) *payment.ListPaymentsFilter {
	q := r.URL.Query()
	filter := &payment.ListPaymentsFilter{
		Status:   payment.PaymentStatus(q.Get(queryStatus)),
		FromDate: q.Get(queryFromDate),
		ToDate:   q.Get(queryToDate),
	}

	for key, values := range q {
		switch key {
		case queryStatus, queryFromDate, queryToDate:
			continue
		}
		if len(values) == 0 {
			continue
		}
		if filter.Extra == nil {
			filter.Extra = make(map[string]any)
		}
		filter.Extra[key] = values[0]
	}
	return filter
}
