package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/billsplit/internal/adapter/http/dto"
	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
)

type maintenanceServiceStub struct {
	runFn func(ctx context.Context, referenceMonth string) (*usecase.MaintenanceReport, error)
}

func (s *maintenanceServiceStub) Run(ctx context.Context, referenceMonth string) (*usecase.MaintenanceReport, error) {
	return s.runFn(ctx, referenceMonth)
}

func TestMaintenanceHandler_Run(t *testing.T) {
	handler := NewMaintenanceHandler(&maintenanceServiceStub{
		runFn: func(ctx context.Context, referenceMonth string) (*usecase.MaintenanceReport, error) {
			if referenceMonth != "2024-03" {
				t.Fatalf("expected month 2024-03, got %s", referenceMonth)
			}
			return &usecase.MaintenanceReport{
				ReferenceMonth: "2024-03",
				Deduped:        3,
				Backfilled:     2,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.MaintenanceRequest{ReferenceMonth: "2024-03"})
	req := httptest.NewRequest(http.MethodPost, "/maintenance", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Run(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.MaintenanceReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Deduped != 3 || resp.Backfilled != 2 {
		t.Fatalf("unexpected report: %+v", resp)
	}
}

func TestMaintenanceHandler_Run_InvalidMonth(t *testing.T) {
	handler := NewMaintenanceHandler(&maintenanceServiceStub{
		runFn: func(ctx context.Context, referenceMonth string) (*usecase.MaintenanceReport, error) {
			return nil, domain.ErrInvalidMonth
		},
	})

	body, _ := json.Marshal(dto.MaintenanceRequest{ReferenceMonth: "not-a-month"})
	req := httptest.NewRequest(http.MethodPost, "/maintenance", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Run(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
