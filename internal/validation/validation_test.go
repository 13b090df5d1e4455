package validation

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireViolations(t *testing.T, err error) (*envelope.ErrorResponse, []*domainErrors.ValidationError) {
	t.Helper()

	var env *envelope.ErrorResponse
	require.True(t, errors.As(err, &env), "expected error envelope, got %T", err)
	assert.Equal(t, envelope.CodeValidation, env.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.Status)
	assert.ErrorIs(t, err, domainErrors.ErrValidationFailed)

	violations, ok := env.Details.([]*domainErrors.ValidationError)
	require.True(t, ok, "details should list field violations")
	return env, violations
}

func fields(violations []*domainErrors.ValidationError) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Field)
	}
	return out
}

func TestCharge_Valid(t *testing.T) {
	err := Charge(payment.ChargeInput{Amount: 1000, Currency: "INR", Source: "tok_x"})
	assert.NoError(t, err)
}

func TestCharge_AmountBelowMinimum(t *testing.T) {
	err := Charge(payment.ChargeInput{Amount: 0, Currency: "INR", Source: "x"})

	env, violations := requireViolations(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "amount", violations[0].Field)
	assert.Equal(t, "gte", violations[0].Rule)
	assert.True(t, strings.HasPrefix(env.Message, "[charge]"))
}

func TestCharge_Currency(t *testing.T) {
	tests := []struct {
		currency string
		rule     string
	}{
		{"", "required"},
		{"RUPEE", "len"},
		{"IN1", "alpha"},
		{"inr", "uppercase"},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			err := Charge(payment.ChargeInput{Amount: 100, Currency: tt.currency, Source: "tok"})

			_, violations := requireViolations(t, err)
			require.Len(t, violations, 1)
			assert.Equal(t, "currency", violations[0].Field)
			assert.Equal(t, tt.rule, violations[0].Rule)
		})
	}
}

func TestCharge_ReportsEveryViolation(t *testing.T) {
	err := Charge(payment.ChargeInput{})

	_, violations := requireViolations(t, err)
	assert.ElementsMatch(t, []string{"amount", "currency", "source"}, fields(violations))
}

func TestRefund(t *testing.T) {
	assert.NoError(t, Refund(payment.RefundInput{TransactionID: "pay_1"}))
	assert.NoError(t, Refund(payment.RefundInput{TransactionID: "pay_1", Amount: 500, Note: "partial"}))

	_, violations := requireViolations(t, Refund(payment.RefundInput{Amount: 500}))
	assert.Equal(t, []string{"transactionId"}, fields(violations))

	_, violations = requireViolations(t, Refund(payment.RefundInput{TransactionID: "pay_1", Amount: -1}))
	assert.Equal(t, []string{"amount"}, fields(violations))

	_, violations = requireViolations(t, Refund(payment.RefundInput{TransactionID: "pay_1", Note: strings.Repeat("n", 256)}))
	assert.Equal(t, []string{"note"}, fields(violations))
}

func TestIdentifierLookups(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) error
		field string
	}{
		{"payment status", PaymentStatus, "paymentId"},
		{"settlement", SettlementDetails, "settlementId"},
		{"refund status", RefundStatus, "refundId"},
		{"virtual account", VirtualAccount, "accountId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.check("id_123"))

			_, violations := requireViolations(t, tt.check(""))
			assert.Equal(t, []string{tt.field}, fields(violations))
		})
	}
}

func TestListUserPayments(t *testing.T) {
	assert.NoError(t, ListUserPayments("user_1", nil))
	assert.NoError(t, ListUserPayments("user_1", &payment.ListPaymentsFilter{
		Status:   payment.StatusCaptured,
		FromDate: "2024-01-01",
		ToDate:   "2024-01-31T23:59:59Z",
	}))

	_, violations := requireViolations(t, ListUserPayments("", nil))
	assert.Equal(t, []string{"userId"}, fields(violations))

	_, violations = requireViolations(t, ListUserPayments("user_1", &payment.ListPaymentsFilter{
		Status:   "succeeded",
		FromDate: "last week",
	}))
	assert.ElementsMatch(t, []string{"filters.status", "filters.fromDate"}, fields(violations))
}

func TestListAllPayments(t *testing.T) {
	assert.NoError(t, ListAllPayments(nil))
	assert.NoError(t, ListAllPayments(&payment.ListPaymentsFilter{}))

	_, violations := requireViolations(t, ListAllPayments(&payment.ListPaymentsFilter{ToDate: "31/01/2024"}))
	assert.Equal(t, []string{"filters.toDate"}, fields(violations))
}

func TestStruct_ConfigSchema(t *testing.T) {
	type credentials struct {
		KeyID string `mapstructure:"key_id" validate:"required"`
		Env   string `mapstructure:"env" validate:"omitempty,oneof=PROD TEST"`
	}

	assert.NoError(t, Struct("config", credentials{KeyID: "k"}))

	env, violations := requireViolations(t, Struct("Configuration Error", credentials{Env: "STAGING"}))
	assert.ElementsMatch(t, []string{"key_id", "env"}, fields(violations))
	assert.Contains(t, env.Message, "[Configuration Error]")
}
