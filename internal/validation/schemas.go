package validation

import "github.com/cassiomorais/paygate/internal/domain/payment"

type chargeSchema struct {
	Amount   int64          `json:"amount" validate:"gte=1"`
	Currency string         `json:"currency" validate:"required,len=3,alpha,uppercase"`
	Source   string         `json:"source" validate:"required"`
	Metadata map[string]any `json:"metadata"`
}

type refundSchema struct {
	TransactionID string `json:"transactionId" validate:"required"`
	Amount        int64  `json:"amount" validate:"omitempty,gte=1"`
	Note          string `json:"note" validate:"omitempty,max=255"`
}

type paymentStatusSchema struct {
	PaymentID string `json:"paymentId" validate:"required"`
}

type filterSchema struct {
	Status   string `json:"status" validate:"omitempty,payment_status"`
	FromDate string `json:"fromDate" validate:"omitempty,iso8601"`
	ToDate   string `json:"toDate" validate:"omitempty,iso8601"`
}

type listUserPaymentsSchema struct {
	UserID  string        `json:"userId" validate:"required"`
	Filters *filterSchema `json:"filters"`
}

type listAllPaymentsSchema struct {
	Filters *filterSchema `json:"filters"`
}

type settlementDetailsSchema struct {
	SettlementID string `json:"settlementId" validate:"required"`
}

type refundStatusSchema struct {
	RefundID string `json:"refundId" validate:"required"`
}

type virtualAccountSchema struct {
	AccountID string `json:"accountId" validate:"required"`
}

func filters(f *payment.ListPaymentsFilter) *filterSchema {
	if f == nil {
		return nil
	}
	return &filterSchema{
		Status:   string(f.Status),
		FromDate: f.FromDate,
		ToDate:   f.ToDate,
	}
}

// Charge checks a charge request.
func Charge(in payment.ChargeInput) error {
	return Struct("charge", chargeSchema{
		Amount:   in.Amount,
		Currency: in.Currency,
		Source:   in.Source,
		Metadata: in.Metadata,
	})
}

// Refund checks a refund request. A zero amount means a full refund.
func Refund(in payment.RefundInput) error {
	return Struct("refund", refundSchema{
		TransactionID: in.TransactionID,
		Amount:        in.Amount,
		Note:          in.Note,
	})
}

func PaymentStatus(paymentID string) error {
	return Struct("getPaymentStatus", paymentStatusSchema{PaymentID: paymentID})
}

func ListUserPayments(userID string, f *payment.ListPaymentsFilter) error {
	return Struct("listUserPayments", listUserPaymentsSchema{UserID: userID, Filters: filters(f)})
}

func ListAllPayments(f *payment.ListPaymentsFilter) error {
	return Struct("listAllPayments", listAllPaymentsSchema{Filters: filters(f)})
}

func SettlementDetails(settlementID string) error {
	return Struct("getSettlementDetails", settlementDetailsSchema{SettlementID: settlementID})
}

func RefundStatus(refundID string) error {
	return Struct("getRefundStatus", refundStatusSchema{RefundID: refundID})
}

func VirtualAccount(accountID string) error {
	return Struct("fetchVirtualAccount", virtualAccountSchema{AccountID: accountID})
}
