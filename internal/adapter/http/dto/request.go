package dto

import (
	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
)

// CandidateItem is one extracted invoice line.
type CandidateItem struct {
	Date               string `json:"date"`
	Description        string `json:"description"`
	Amount             string `json:"amount"`
	CurrentInstallment int    `json:"current_installment,omitempty"`
	TotalInstallments  int    `json:"total_installments,omitempty"`
}

// ImportRequest represents an invoice import batch.
type ImportRequest struct {
	ReferenceMonth string          `json:"reference_month"`
	FileName       string          `json:"file_name,omitempty"`
	Candidates     []CandidateItem `json:"candidates"`
}

// ToUseCaseInput converts to use case input.
func (r *ImportRequest) ToUseCaseInput() usecase.ReconcileInput {
	candidates := make([]domain.Candidate, len(r.Candidates))
	for i, c := range r.Candidates {
		candidates[i] = domain.Candidate{
			Date:               c.Date,
			Description:        c.Description,
			Amount:             c.Amount,
			CurrentInstallment: c.CurrentInstallment,
			TotalInstallments:  c.TotalInstallments,
		}
	}

	return usecase.ReconcileInput{
		ReferenceMonth: r.ReferenceMonth,
		FileName:       r.FileName,
		Candidates:     candidates,
	}
}

// CreatePaymentRequest represents a request to record a payment.
type CreatePaymentRequest struct {
	Date           string `json:"date"`
	Amount         string `json:"amount"`
	Payer          string `json:"payer"`
	ReferenceMonth string `json:"reference_month"`
	Note           string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePaymentRequest) ToUseCaseInput() usecase.PaymentInput {
	return usecase.PaymentInput{
		Date:           r.Date,
		Amount:         r.Amount,
		Payer:          domain.Owner(r.Payer),
		ReferenceMonth: r.ReferenceMonth,
		Note:           r.Note,
	}
}

// CreateWithdrawalRequest represents a request to record a withdrawal.
type CreateWithdrawalRequest struct {
	Date           string `json:"date"`
	Amount         string `json:"amount"`
	Taker          string `json:"taker"`
	ReferenceMonth string `json:"reference_month"`
	Note           string `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWithdrawalRequest) ToUseCaseInput() usecase.WithdrawalInput {
	return usecase.WithdrawalInput{
		Date:           r.Date,
		Amount:         r.Amount,
		Taker:          domain.Owner(r.Taker),
		ReferenceMonth: r.ReferenceMonth,
		Note:           r.Note,
	}
}

// ClassifyRequest represents an owner assignment for one transaction.
type ClassifyRequest struct {
	Owner    string `json:"owner"`
	Category string `json:"category,omitempty"`
	Learn    bool   `json:"learn,omitempty"`
}

// ClassifyPendingRequest assigns every pending transaction of a month.
type ClassifyPendingRequest struct {
	Owner string `json:"owner"`
}

// UpsertInvoiceRequest sets a month's invoice metadata.
type UpsertInvoiceRequest struct {
	FileName string `json:"file_name,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
}

// MaintenanceRequest triggers a sanitize plus backfill run.
type MaintenanceRequest struct {
	ReferenceMonth string `json:"reference_month"`
}
