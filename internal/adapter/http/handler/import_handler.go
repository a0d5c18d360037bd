package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/billsplit/internal/adapter/http/dto"
	"github.com/iho/billsplit/internal/usecase"
)

// ImportService defines the import operations the handler needs.
type ImportService interface {
	Reconcile(ctx context.Context, input usecase.ReconcileInput) (*usecase.ReconcileReport, error)
}

// ImportHandler handles invoice import requests.
type ImportHandler struct {
	reconcileUC ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(reconcileUC ImportService) *ImportHandler {
	return &ImportHandler{reconcileUC: reconcileUC}
}

// Import reconciles a batch of extracted invoice lines.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req dto.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	report, err := h.reconcileUC.Reconcile(r.Context(), req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to import invoice", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ImportReportFromUseCase(report))
}
