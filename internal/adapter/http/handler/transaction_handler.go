package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/billsplit/internal/adapter/http/dto"
	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
)

// TransactionHandler handles transaction classification HTTP requests.
type TransactionHandler struct {
	classifyUC *usecase.ClassifyUseCase
	ledgerUC   *usecase.LedgerUseCase
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(classifyUC *usecase.ClassifyUseCase, ledgerUC *usecase.LedgerUseCase) *TransactionHandler {
	return &TransactionHandler{classifyUC: classifyUC, ledgerUC: ledgerUC}
}

// Classify assigns an owner (and optionally a category) to one transaction.
func (h *TransactionHandler) Classify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	var req dto.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transaction, err := h.classifyUC.Classify(r.Context(), usecase.ClassifyInput{
		TransactionID: id,
		Owner:         domain.Owner(req.Owner),
		Category:      req.Category,
		Learn:         req.Learn,
	})
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to classify transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(transaction))
}

// ClassifyPending assigns every pending transaction of a month to one owner.
func (h *TransactionHandler) ClassifyPending(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	var req dto.ClassifyPendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	updated, err := h.classifyUC.ClassifyPending(r.Context(), month, domain.Owner(req.Owner))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to classify pending transactions", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ClassifyPendingResponse{Month: month, Owner: req.Owner, Updated: updated})
}

// Delete removes one transaction.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transaction ID", "")
		return
	}

	if err := h.ledgerUC.DeleteTransaction(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete transaction", err.Error())

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRules lists the learned classification rules.
func (h *TransactionHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.classifyUC.Rules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RulesFromDomain(rules))
}
