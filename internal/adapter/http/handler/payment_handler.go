package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/billsplit/internal/adapter/http/dto"
	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
)

// PaymentService defines the payment operations the handler needs.
type PaymentService interface {
	Record(ctx context.Context, in usecase.PaymentInput) (*domain.Payment, error)
	Delete(ctx context.Context, id string) error
	ListByMonth(ctx context.Context, month string) ([]*domain.Payment, error)
}

// PaymentHandler handles payment-related HTTP requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Create records a payment toward the invoice.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.paymentUC.Record(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record payment", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentFromDomain(payment))
}

// ListByMonth lists the payments booked in a month.
func (h *PaymentHandler) ListByMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	payments, err := h.paymentUC.ListByMonth(r.Context(), month)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list payments", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
}

// Delete removes one payment.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing payment ID", "")
		return
	}

	if err := h.paymentUC.Delete(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete payment", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
