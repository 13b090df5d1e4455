package providers

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"strconv"

	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/infrastructure/gateway/cashfree"
	"github.com/cassiomorais/paygate/internal/validation"
)

const (
	cashfreeRefundCode           = "CASHFREE_REFUND_ERROR"
	cashfreeListUserPaymentsCode = "CASHFREE_LIST_USER_PAYMENTS_ERROR"
	cashfreeListAllPaymentsCode  = "CASHFREE_LIST_ALL_PAYMENTS_ERROR"
)

// CashfreeClient is the part of the Cashfree PG API the provider calls.
type CashfreeClient interface {
	CreateOrder(ctx context.Context, body map[string]any) (map[string]any, error)
	GetOrder(ctx context.Context, orderID string) (map[string]any, error)
	ListOrders(ctx context.Context, query url.Values) ([]map[string]any, error)
	CreateRefund(ctx context.Context, orderID string, body map[string]any) (map[string]any, error)
	GetRefund(ctx context.Context, refundID string) (map[string]any, error)
	GetSettlement(ctx context.Context, settlementID string) (map[string]any, error)
	GetVirtualAccount(ctx context.Context, accountID string) (map[string]any, error)
}

// Cashfree charges by creating orders. Cashfree amounts are decimal major
// units and are converted at this boundary.
type Cashfree struct {
	client CashfreeClient
}

// NewCashfree builds a Cashfree provider from its credentials.
func NewCashfree(cfg CashfreeConfig, opts ...Option) (*Cashfree, error) {
	return newCashfree(cfg, buildOptions(opts))
}

func newCashfree(cfg CashfreeConfig, o *options) (*Cashfree, error) {
	if o.cashfree != nil {
		return &Cashfree{client: o.cashfree}, nil
	}

	client, err := cashfree.New(cashfree.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Production:   cfg.Env == EnvProduction,
		BaseURL:      cfg.BaseURL,
		HTTPClient:   o.httpClient,
	})
	if err != nil {
		return nil, wrapGatewayError("Cashfree", "Initialize", "", err)
	}
	return &Cashfree{client: client}, nil
}

func (c *Cashfree) Name() Name { return NameCashfree }

func (c *Cashfree) fail(operation, code string, err error) error {
	return wrapGatewayError("Cashfree", operation, code, err)
}

func (c *Cashfree) Charge(ctx context.Context, in payment.ChargeInput) (*payment.ChargeResult, error) {
	if err := validation.Charge(in); err != nil {
		return nil, err
	}

	orderID := metadataString(in.Metadata, "orderId")
	if orderID == "" {
		orderID = payment.PlaceholderID("order")
	}
	customerID := firstString(in.Metadata, "customerId", "userId")
	if customerID == "" {
		customerID = payment.PlaceholderID("cust")
	}
	customer := map[string]any{"customer_id": customerID}
	for field, keys := range map[string][]string{
		"customer_email": {"customerEmail", "email"},
		"customer_phone": {"customerPhone", "phone"},
		"customer_name":  {"customerName"},
	} {
		if v := firstString(in.Metadata, keys...); v != "" {
			customer[field] = v
		}
	}

	body := map[string]any{
		"order_id":         orderID,
		"order_amount":     majorAmount(in.Amount, in.Currency),
		"order_currency":   in.Currency,
		"customer_details": customer,
	}
	if tags := orderTags(in.Metadata); len(tags) > 0 {
		body["order_tags"] = tags
	}
	if note := metadataString(in.Metadata, "note"); note != "" {
		body["order_note"] = note
	}

	order, err := c.client.CreateOrder(ctx, body)
	if err != nil {
		return nil, c.fail("Charge", "", err)
	}
	result, err := cashfreeCharge(order)
	if err != nil {
		return nil, c.fail("Charge", "", err)
	}
	return result, nil
}

// orderTags carries the caller's metadata. Cashfree only accepts string
// values there.
func orderTags(meta map[string]any) map[string]string {
	tags := make(map[string]string, len(meta))
	for k, v := range meta {
		switch k {
		case "orderId", "customerEmail", "customerPhone", "customerName", "email", "phone", "note":
			continue
		}
		tags[k] = fmt.Sprint(v)
	}
	return tags
}

func (c *Cashfree) Refund(ctx context.Context, in payment.RefundInput) (*payment.RefundResult, error) {
	if err := validation.Refund(in); err != nil {
		return nil, err
	}

	// Cashfree has no implicit full refund; read the order total instead.
	order, err := c.client.GetOrder(ctx, in.TransactionID)
	if err != nil {
		return nil, c.fail("Refund", cashfreeRefundCode, err)
	}
	currency := stringField(order, "order_currency")
	amount := in.Amount
	if amount == 0 {
		amount = payment.FromMajorUnits(decimalField(order, "order_amount"), currency)
	}

	body := map[string]any{
		"refund_id":     payment.PlaceholderID("refund"),
		"refund_amount": majorAmount(amount, currency),
	}
	if in.Note != "" {
		body["refund_note"] = in.Note
	}

	refund, err := c.client.CreateRefund(ctx, in.TransactionID, body)
	if err != nil {
		return nil, c.fail("Refund", cashfreeRefundCode, err)
	}
	result, err := cashfreeRefund(refund, currency)
	if err != nil {
		return nil, c.fail("Refund", cashfreeRefundCode, err)
	}
	return result, nil
}

func (c *Cashfree) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentStatusResult, error) {
	if err := validation.PaymentStatus(paymentID); err != nil {
		return nil, err
	}

	order, err := c.client.GetOrder(ctx, paymentID)
	if err != nil {
		return nil, c.fail("GetPaymentStatus", "", err)
	}
	id := stringField(order, "order_id")
	if id == "" {
		return nil, c.fail("GetPaymentStatus", "", malformed("order without order_id"))
	}

	return &payment.PaymentStatusResult{
		ID:     id,
		Status: cashfreeOrderStatus(stringField(order, "order_status")),
		Fields: passthrough(order),
	}, nil
}

func (c *Cashfree) ListUserPayments(ctx context.Context, userID string, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	if err := validation.ListUserPayments(userID, filter); err != nil {
		return nil, err
	}

	return c.list(ctx, "ListUserPayments", cashfreeListUserPaymentsCode, filter, func(order map[string]any) bool {
		return stringField(mapField(order, "customer_details"), "customer_id") == userID
	})
}

func (c *Cashfree) ListAllPayments(ctx context.Context, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	if err := validation.ListAllPayments(filter); err != nil {
		return nil, err
	}

	return c.list(ctx, "ListAllPayments", cashfreeListAllPaymentsCode, filter, nil)
}

func (c *Cashfree) list(ctx context.Context, operation, code string, filter *payment.ListPaymentsFilter, match func(map[string]any) bool) ([]*payment.ChargeResult, error) {
	query := url.Values{}
	if filter != nil {
		for k, v := range filter.Extra {
			query.Set(k, fmt.Sprint(v))
		}
		if t, err := payment.ParseTimestamp(filter.FromDate); err == nil {
			query.Set("from_time", payment.FormatTime(t))
		}
		if t, err := payment.ParseTimestamp(filter.ToDate); err == nil {
			query.Set("to_time", payment.FormatTime(t))
		}
	}
	query.Set("per_page", strconv.Itoa(listPageSize))

	orders, err := c.client.ListOrders(ctx, query)
	if err != nil {
		return nil, c.fail(operation, code, err)
	}

	results := make([]*payment.ChargeResult, 0, len(orders))
	for _, order := range orders {
		if match != nil && !match(order) {
			continue
		}
		result, err := cashfreeCharge(order)
		if err != nil {
			return nil, c.fail(operation, code, err)
		}
		if keep(result, filter) {
			results = append(results, result)
		}
	}
	return results, nil
}

func (c *Cashfree) GetSettlementDetails(ctx context.Context, settlementID string) (*payment.SettlementDetails, error) {
	if err := validation.SettlementDetails(settlementID); err != nil {
		return nil, err
	}

	s, err := c.client.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, c.fail("GetSettlementDetails", "", err)
	}
	id := firstString(s, "cf_settlement_id", "settlement_id", "id")
	if id == "" {
		return nil, c.fail("GetSettlementDetails", "", malformed("settlement without id"))
	}

	amountKey := "settlement_amount"
	if _, ok := s[amountKey]; !ok {
		amountKey = "amount"
	}
	currency := firstString(s, "settlement_currency", "currency")

	return &payment.SettlementDetails{
		ID:        id,
		Amount:    payment.FromMajorUnits(decimalField(s, amountKey), currency),
		Status:    stringField(s, "status"),
		SettledAt: payment.NormalizeTimestamp(firstString(s, "transfer_time", "settled_on")),
		Fields:    passthrough(s),
	}, nil
}

func (c *Cashfree) GetRefundStatus(ctx context.Context, refundID string) (*payment.RefundResult, error) {
	if err := validation.RefundStatus(refundID); err != nil {
		return nil, err
	}

	refund, err := c.client.GetRefund(ctx, refundID)
	if err != nil {
		return nil, c.fail("GetRefundStatus", "", err)
	}
	result, err := cashfreeRefund(refund, stringField(refund, "refund_currency"))
	if err != nil {
		return nil, c.fail("GetRefundStatus", "", err)
	}
	return result, nil
}

func (c *Cashfree) FetchVirtualAccount(ctx context.Context, accountID string) (map[string]any, error) {
	if err := validation.VirtualAccount(accountID); err != nil {
		return nil, err
	}

	account, err := c.client.GetVirtualAccount(ctx, accountID)
	if err != nil {
		return nil, c.fail("FetchVirtualAccount", "", err)
	}
	return maps.Clone(account), nil
}

func cashfreeCharge(order map[string]any) (*payment.ChargeResult, error) {
	id := stringField(order, "order_id")
	if id == "" {
		return nil, malformed("order without order_id")
	}
	currency := stringField(order, "order_currency")
	return &payment.ChargeResult{
		ID:        id,
		Status:    cashfreeOrderStatus(stringField(order, "order_status")),
		Amount:    payment.FromMajorUnits(decimalField(order, "order_amount"), currency),
		Currency:  currency,
		CreatedAt: payment.NormalizeTimestamp(firstString(order, "created_at", "created_time")),
		Fields:    passthrough(order),
	}, nil
}

func cashfreeRefund(refund map[string]any, currency string) (*payment.RefundResult, error) {
	id := firstString(refund, "refund_id", "cf_refund_id")
	if id == "" {
		return nil, malformed("refund without refund_id")
	}
	if c := stringField(refund, "refund_currency"); c != "" {
		currency = c
	}
	return &payment.RefundResult{
		ID:        id,
		Status:    cashfreeRefundStatus(stringField(refund, "refund_status")),
		Amount:    payment.FromMajorUnits(decimalField(refund, "refund_amount"), currency),
		CreatedAt: payment.NormalizeTimestamp(firstString(refund, "created_at", "processed_at")),
		Fields:    passthrough(refund),
	}, nil
}

func cashfreeOrderStatus(s string) payment.PaymentStatus {
	switch s {
	case "PAID":
		return payment.StatusPaid
	case "EXPIRED", "TERMINATED", "TERMINATION_REQUESTED":
		return payment.StatusFailed
	default:
		return payment.StatusCreated
	}
}

func cashfreeRefundStatus(s string) payment.RefundStatus {
	switch s {
	case "SUCCESS":
		return payment.RefundProcessed
	case "PENDING", "ONHOLD":
		return payment.RefundPending
	case "CANCELLED":
		return payment.RefundFailed
	default:
		return payment.RefundInitiated
	}
}
