package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/billsplit/internal/adapter/http/dto"
	"github.com/iho/billsplit/internal/usecase"
)

// MaintenanceService defines the maintenance operations the handler needs.
type MaintenanceService interface {
	Run(ctx context.Context, referenceMonth string) (*usecase.MaintenanceReport, error)
}

// MaintenanceHandler handles maintenance HTTP requests.
type MaintenanceHandler struct {
	maintenanceUC MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(maintenanceUC MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceUC: maintenanceUC}
}

// Run deduplicates future projections and backfills missing ones.
func (h *MaintenanceHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.MaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	report, err := h.maintenanceUC.Run(r.Context(), req.ReferenceMonth)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to run maintenance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.MaintenanceReportResponse{
		ReferenceMonth: report.ReferenceMonth,
		Deduped:        report.Deduped,
		Backfilled:     report.Backfilled,
	})
}
