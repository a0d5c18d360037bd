package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/billsplit/internal/adapter/http/dto"
	"github.com/iho/billsplit/internal/usecase"
)

// InvoiceHandler handles invoice metadata HTTP requests.
type InvoiceHandler struct {
	ledgerUC *usecase.LedgerUseCase
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(ledgerUC *usecase.LedgerUseCase) *InvoiceHandler {
	return &InvoiceHandler{ledgerUC: ledgerUC}
}

// List lists metadata for every imported invoice.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.ledgerUC.Invoices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list invoices", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoicesFromDomain(invoices))
}

// Upsert stores or refreshes a month's invoice metadata.
func (h *InvoiceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	var req dto.UpsertInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	invoice, err := h.ledgerUC.UpsertInvoice(r.Context(), month, req.FileName, req.DueDate)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to store invoice metadata", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}
