package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID                 string          `json:"id"`
	Date               string          `json:"date"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	CurrentInstallment int             `json:"current_installment,omitempty"`
	TotalInstallments  int             `json:"total_installments,omitempty"`
	ReferenceMonth     string          `json:"reference_month"`
	Owner              string          `json:"owner"`
	Category           string          `json:"category,omitempty"`
	UniqueHash         string          `json:"unique_hash"`
	SourceFile         string          `json:"source_file,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                 t.ID,
		Date:               t.Date,
		Description:        t.Description,
		Amount:             t.Amount,
		CurrentInstallment: t.CurrentInstallment,
		TotalInstallments:  t.TotalInstallments,
		ReferenceMonth:     t.ReferenceMonth,
		Owner:              string(t.Owner),
		Category:           t.Category,
		UniqueHash:         t.UniqueHash,
		SourceFile:         t.SourceFile,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// ImportReportResponse represents the outcome of an import batch.
type ImportReportResponse struct {
	ReferenceMonth string             `json:"reference_month"`
	Candidates     int                `json:"candidates"`
	Created        int                `json:"created"`
	Merged         int                `json:"merged"`
	Skipped        int                `json:"skipped"`
	Noise          int                `json:"noise"`
	Failed         int                `json:"failed"`
	Projected      int                `json:"projected"`
	Failures       []CandidateFailure `json:"failures,omitempty"`
	FinishedAt     time.Time          `json:"finished_at"`
}

// CandidateFailure is one candidate the import could not persist.
type CandidateFailure struct {
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// ImportReportFromUseCase converts a reconcile report to a response.
func ImportReportFromUseCase(r *usecase.ReconcileReport) *ImportReportResponse {
	resp := &ImportReportResponse{
		ReferenceMonth: r.ReferenceMonth,
		Candidates:     r.Candidates,
		Created:        r.Created,
		Merged:         r.Merged,
		Skipped:        r.Skipped,
		Noise:          r.Noise,
		Failed:         r.Failed,
		Projected:      r.Projected,
		FinishedAt:     r.FinishedAt,
	}

	for _, f := range r.Failures {
		resp.Failures = append(resp.Failures, CandidateFailure{
			Description: f.Description,
			Reason:      f.Reason,
		})
	}

	return resp
}

// MonthForecastResponse is one month of expected installment charges.
type MonthForecastResponse struct {
	Month string          `json:"month"`
	Eu    decimal.Decimal `json:"eu"`
	Dinda decimal.Decimal `json:"dinda"`
	Total decimal.Decimal `json:"total"`
}

// LedgerSummaryResponse represents a month's full balance picture.
type LedgerSummaryResponse struct {
	Month string `json:"month"`

	InvoiceTotal decimal.Decimal `json:"invoice_total"`
	ShareEu      decimal.Decimal `json:"share_eu"`
	ShareDinda   decimal.Decimal `json:"share_dinda"`
	PendingCount int             `json:"pending_count"`

	PaidEu             decimal.Decimal `json:"paid_eu"`
	PaidDinda          decimal.Decimal `json:"paid_dinda"`
	WithdrawnEu        decimal.Decimal `json:"withdrawn_eu"`
	WithdrawnDinda     decimal.Decimal `json:"withdrawn_dinda"`
	EffectivePaidEu    decimal.Decimal `json:"effective_paid_eu"`
	EffectivePaidDinda decimal.Decimal `json:"effective_paid_dinda"`

	PriorBalanceEu decimal.Decimal `json:"prior_balance_eu"`
	PriorCreditEu  decimal.Decimal `json:"prior_credit_eu"`
	PriorDebtEu    decimal.Decimal `json:"prior_debt_eu"`

	BalanceEu    decimal.Decimal `json:"balance_eu"`
	BalanceDinda decimal.Decimal `json:"balance_dinda"`

	FinalInstallmentsTotal decimal.Decimal `json:"final_installments_total"`

	Forecast []MonthForecastResponse `json:"forecast"`
}

// LedgerSummaryFromUseCase converts a ledger summary to a response.
func LedgerSummaryFromUseCase(s *usecase.LedgerSummary) *LedgerSummaryResponse {
	resp := &LedgerSummaryResponse{
		Month:                  s.Month,
		InvoiceTotal:           s.InvoiceTotal,
		ShareEu:                s.ShareEu,
		ShareDinda:             s.ShareDinda,
		PendingCount:           s.PendingCount,
		PaidEu:                 s.PaidEu,
		PaidDinda:              s.PaidDinda,
		WithdrawnEu:            s.WithdrawnEu,
		WithdrawnDinda:         s.WithdrawnDinda,
		EffectivePaidEu:        s.EffectivePaidEu,
		EffectivePaidDinda:     s.EffectivePaidDinda,
		PriorBalanceEu:         s.PriorBalanceEu,
		PriorCreditEu:          s.PriorCreditEu,
		PriorDebtEu:            s.PriorDebtEu,
		BalanceEu:              s.BalanceEu,
		BalanceDinda:           s.BalanceDinda,
		FinalInstallmentsTotal: s.FinalInstallmentsTotal,
	}

	for _, f := range s.Forecast {
		resp.Forecast = append(resp.Forecast, MonthForecastResponse{
			Month: f.Month,
			Eu:    f.Eu,
			Dinda: f.Dinda,
			Total: f.Total,
		})
	}

	return resp
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	Payer          string          `json:"payer"`
	ReferenceMonth string          `json:"reference_month"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:             p.ID,
		Date:           p.Date,
		Amount:         p.Amount,
		Payer:          string(p.Payer),
		ReferenceMonth: p.ReferenceMonth,
		Note:           p.Note,
		CreatedAt:      p.CreatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.Payment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// WithdrawalResponse represents a withdrawal in API responses.
type WithdrawalResponse struct {
	ID             string          `json:"id"`
	Date           string          `json:"date"`
	Amount         decimal.Decimal `json:"amount"`
	Taker          string          `json:"taker"`
	ReferenceMonth string          `json:"reference_month"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// WithdrawalFromDomain converts a domain withdrawal to a response.
func WithdrawalFromDomain(w *domain.Withdrawal) *WithdrawalResponse {
	return &WithdrawalResponse{
		ID:             w.ID,
		Date:           w.Date,
		Amount:         w.Amount,
		Taker:          string(w.Taker),
		ReferenceMonth: w.ReferenceMonth,
		Note:           w.Note,
		CreatedAt:      w.CreatedAt,
	}
}

// WithdrawalsFromDomain converts domain withdrawals to responses.
func WithdrawalsFromDomain(withdrawals []*domain.Withdrawal) []*WithdrawalResponse {
	result := make([]*WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		result[i] = WithdrawalFromDomain(w)
	}
	return result
}

// InvoiceResponse represents imported invoice metadata.
type InvoiceResponse struct {
	ReferenceMonth string    `json:"reference_month"`
	FileName       string    `json:"file_name,omitempty"`
	DueDate        string    `json:"due_date,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// InvoiceFromDomain converts a domain invoice to a response.
func InvoiceFromDomain(inv *domain.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ReferenceMonth: inv.ReferenceMonth,
		FileName:       inv.FileName,
		DueDate:        inv.DueDate,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

// InvoicesFromDomain converts domain invoices to responses.
func InvoicesFromDomain(invoices []*domain.Invoice) []*InvoiceResponse {
	result := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		result[i] = InvoiceFromDomain(inv)
	}
	return result
}

// MaintenanceReportResponse represents a maintenance run's outcome.
type MaintenanceReportResponse struct {
	ReferenceMonth string `json:"reference_month"`
	Deduped        int    `json:"deduped"`
	Backfilled     int    `json:"backfilled"`
}

// ClosingResponse represents a monthly closing snapshot.
type ClosingResponse struct {
	ID           string          `json:"id"`
	Month        string          `json:"month"`
	Party        string          `json:"party"`
	FinalBalance decimal.Decimal `json:"final_balance"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CloseMonthResponse represents the outcome of closing a month.
type CloseMonthResponse struct {
	Closings []ClosingResponse      `json:"closings"`
	Summary  *LedgerSummaryResponse `json:"summary"`
}

// ClosingsFromDomain converts closing snapshots to responses.
func ClosingsFromDomain(closings []*domain.MonthlyClosing) []ClosingResponse {
	out := make([]ClosingResponse, 0, len(closings))
	for _, c := range closings {
		out = append(out, ClosingResponse{
			ID:           c.ID,
			Month:        c.Month,
			Party:        string(c.Party),
			FinalBalance: c.FinalBalance,
			CreatedAt:    c.CreatedAt,
		})
	}

	return out
}

// CloseMonthFromUseCase converts a close result to a response.
func CloseMonthFromUseCase(r *usecase.CloseResult) *CloseMonthResponse {
	return &CloseMonthResponse{
		Closings: ClosingsFromDomain(r.Closings),
		Summary:  LedgerSummaryFromUseCase(r.Summary),
	}
}

// InstallmentReportResponse lists open installment plans in a month.
type InstallmentReportResponse struct {
	Month          string                 `json:"month"`
	Eu             []*TransactionResponse `json:"eu"`
	Dinda          []*TransactionResponse `json:"dinda"`
	RemainingEu    decimal.Decimal        `json:"remaining_eu"`
	RemainingDinda decimal.Decimal        `json:"remaining_dinda"`
}

// InstallmentReportFromUseCase converts an installment report to a response.
func InstallmentReportFromUseCase(r *usecase.InstallmentReport) *InstallmentReportResponse {
	return &InstallmentReportResponse{
		Month:          r.Month,
		Eu:             TransactionsFromDomain(r.Eu),
		Dinda:          TransactionsFromDomain(r.Dinda),
		RemainingEu:    r.RemainingEu,
		RemainingDinda: r.RemainingDinda,
	}
}

// RuleResponse represents a classification rule.
type RuleResponse struct {
	ID             string    `json:"id"`
	Pattern        string    `json:"pattern"`
	SuggestedOwner string    `json:"suggested_owner"`
	Category       string    `json:"category,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RulesFromDomain converts domain rules to responses.
func RulesFromDomain(rules []*domain.ClassificationRule) []*RuleResponse {
	result := make([]*RuleResponse, len(rules))
	for i, rule := range rules {
		result[i] = &RuleResponse{
			ID:             rule.ID,
			Pattern:        rule.Pattern,
			SuggestedOwner: string(rule.SuggestedOwner),
			Category:       rule.Category,
			CreatedAt:      rule.CreatedAt,
		}
	}
	return result
}

// DeleteMonthResponse reports how many transactions a month wipe removed.
type DeleteMonthResponse struct {
	Month   string `json:"month"`
	Removed int64  `json:"removed"`
}

// ClassifyPendingResponse reports how many transactions were assigned.
type ClassifyPendingResponse struct {
	Month   string `json:"month"`
	Owner   string `json:"owner"`
	Updated int    `json:"updated"`
}
