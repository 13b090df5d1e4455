package controller

import (
	"context"
	"net/http"

	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/providers"
	"github.com/go-chi/chi/v5"
)

// Gateway is the payment surface served over HTTP. *manager.Manager
// implements it.
type Gateway interface {
	Provider() providers.Name
	Charge(ctx context.Context, in payment.ChargeInput) (*payment.ChargeResult, error)
	Refund(ctx context.Context, in payment.RefundInput) (*payment.RefundResult, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentStatusResult, error)
	ListUserPayments(ctx context.Context, userID string, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error)
	ListAllPayments(ctx context.Context, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error)
	GetSettlementDetails(ctx context.Context, settlementID string) (*payment.SettlementDetails, error)
	GetRefundStatus(ctx context.Context, refundID string) (*payment.RefundResult, error)
	FetchVirtualAccount(ctx context.Context, accountID string) (map[string]any, error)
}

// PaymentController handles gateway HTTP requests.
type PaymentController struct {
	gateway Gateway
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(gateway Gateway) *PaymentController {
	return &PaymentController{gateway: gateway}
}

// Charge handles POST /api/v1/charges
func (h *PaymentController) Charge(w http.ResponseWriter, r *http.Request) {
	var req ChargeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.gateway.Charge(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, result, http.StatusCreated, "Charge created")
}

// Refund handles POST /api/v1/refunds
func (h *PaymentController) Refund(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.gateway.Refund(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, result, http.StatusCreated, "Refund initiated")
}

// GetPaymentStatus handles GET /api/v1/payments/{id}
func (h *PaymentController) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.gateway.GetPaymentStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, result, http.StatusOK, "")
}

// ListAllPayments handles GET /api/v1/payments
func (h *PaymentController) ListAllPayments(w http.ResponseWriter, r *http.Request) {
	results, err := h.gateway.ListAllPayments(r.Context(), listFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, results, http.StatusOK, "")
}

// ListUserPayments handles GET /api/v1/users/{userId}/payments
func (h *PaymentController) ListUserPayments(w http.ResponseWriter, r *http.Request) {
	results, err := h.gateway.ListUserPayments(r.Context(), chi.URLParam(r, "userId"), listFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, results, http.StatusOK, "")
}

// GetSettlementDetails handles GET /api/v1/settlements/{id}
func (h *PaymentController) GetSettlementDetails(w http.ResponseWriter, r *http.Request) {
	result, err := h.gateway.GetSettlementDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, result, http.StatusOK, "")
}

// GetRefundStatus handles GET /api/v1/refunds/{id}
func (h *PaymentController) GetRefundStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.gateway.GetRefundStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, result, http.StatusOK, "")
}

// FetchVirtualAccount handles GET /api/v1/virtual-accounts/{id}
func (h *PaymentController) FetchVirtualAccount(w http.ResponseWriter, r *http.Request) {
	result, err := h.gateway.FetchVirtualAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, result, http.StatusOK, "")
}
