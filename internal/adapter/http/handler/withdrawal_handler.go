package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/billsplit/internal/adapter/http/dto"
	"github.com/iho/billsplit/internal/usecase"
)

// WithdrawalHandler handles cash withdrawal HTTP requests.
type WithdrawalHandler struct {
	withdrawalUC *usecase.WithdrawalUseCase
}

// NewWithdrawalHandler creates a new WithdrawalHandler.
func NewWithdrawalHandler(withdrawalUC *usecase.WithdrawalUseCase) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalUC: withdrawalUC}
}

// Create records a cash withdrawal against the card.
func (h *WithdrawalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	withdrawal, err := h.withdrawalUC.Record(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record withdrawal", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.WithdrawalFromDomain(withdrawal))
}

// ListByMonth lists the withdrawals booked in a month.
func (h *WithdrawalHandler) ListByMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	withdrawals, err := h.withdrawalUC.ListByMonth(r.Context(), month)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list withdrawals", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.WithdrawalsFromDomain(withdrawals))
}

// Delete removes one withdrawal.
func (h *WithdrawalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing withdrawal ID", "")
		return
	}

	if err := h.withdrawalUC.Delete(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete withdrawal", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
