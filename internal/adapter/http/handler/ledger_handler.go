package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/billsplit/internal/adapter/http/dto"
	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
)

// LedgerService defines the month-level operations the handler needs.
type LedgerService interface {
	ComputeLedger(ctx context.Context, month string) (*usecase.LedgerSummary, error)
	OpenInstallments(ctx context.Context, month string) (*usecase.InstallmentReport, error)
	CloseMonth(ctx context.Context, month string) (*usecase.CloseResult, error)
	Closings(ctx context.Context, month string) ([]*domain.MonthlyClosing, error)
	Transactions(ctx context.Context, month string) ([]*domain.Transaction, error)
	DeleteMonth(ctx context.Context, month string) (int64, error)
}

// LedgerHandler handles balance and month-level HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Summary returns the full balance picture of one month.
func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	summary, err := h.ledgerUC.ComputeLedger(r.Context(), month)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to compute ledger", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerSummaryFromUseCase(summary))
}

// OpenInstallments lists the open installment plans visible in a month.
func (h *LedgerHandler) OpenInstallments(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	report, err := h.ledgerUC.OpenInstallments(r.Context(), month)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list installments", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.InstallmentReportFromUseCase(report))
}

// Close snapshots both parties' final balances for a month.
func (h *LedgerHandler) Close(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	result, err := h.ledgerUC.CloseMonth(r.Context(), month)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to close month", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.CloseMonthFromUseCase(result))
}

// ListClosings lists the closing snapshots recorded for a month.
func (h *LedgerHandler) ListClosings(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	closings, err := h.ledgerUC.Closings(r.Context(), month)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list closings", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ClosingsFromDomain(closings))
}

// ListTransactions lists the transactions booked in a month.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	transactions, err := h.ledgerUC.Transactions(r.Context(), month)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list transactions", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}

// DeleteMonth wipes every transaction booked in a month.
func (h *LedgerHandler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if month == "" {
		writeError(w, http.StatusBadRequest, "missing month", "")
		return
	}

	removed, err := h.ledgerUC.DeleteMonth(r.Context(), month)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete month", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteMonthResponse{Month: month, Removed: removed})
}
