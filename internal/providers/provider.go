// Package providers adapts each payment gateway to one canonical contract.
// Every operation runs the validation gate before touching the network, and
// every failure leaves as an error envelope.
package providers

import (
	"context"

	"github.com/cassiomorais/paygate/internal/domain/payment"
)

// Name identifies a gateway.
type Name string

const (
	NameRazorpay Name = "razorpay"
	NameCashfree Name = "cashfree"
	NameStripe   Name = "stripe"
	NameMock     Name = "mock"
)

// Names lists every provider that can be initialized.
var Names = []Name{NameRazorpay, NameCashfree, NameStripe, NameMock}

// Supported reports whether n names a known provider.
func (n Name) Supported() bool {
	for _, known := range Names {
		if n == known {
			return true
		}
	}
	return false
}

// listPageSize is the number of records requested from a gateway listing.
// Only the first page is read.
const listPageSize = 100

// Provider is the contract every gateway adapter implements.
type Provider interface {
	// Name returns the provider name.
	Name() Name
	Charge(ctx context.Context, in payment.ChargeInput) (*payment.ChargeResult, error)
	Refund(ctx context.Context, in payment.RefundInput) (*payment.RefundResult, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentStatusResult, error)
	ListUserPayments(ctx context.Context, userID string, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error)
	ListAllPayments(ctx context.Context, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error)
	GetSettlementDetails(ctx context.Context, settlementID string) (*payment.SettlementDetails, error)
	GetRefundStatus(ctx context.Context, refundID string) (*payment.RefundResult, error)
}

// VirtualAccountFetcher is implemented by gateways that expose virtual
// bank accounts. The record is returned as the gateway sent it.
type VirtualAccountFetcher interface {
	FetchVirtualAccount(ctx context.Context, accountID string) (map[string]any, error)
}
