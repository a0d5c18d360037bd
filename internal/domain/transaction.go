package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Owner identifies which party a ledger item belongs to.
type Owner string

const (
	OwnerEu      Owner = "eu"
	OwnerDinda   Owner = "dinda"
	OwnerPending Owner = "pendente"
)

// Valid reports whether the owner is one of the known parties.
func (o Owner) Valid() bool {
	return o == OwnerEu || o == OwnerDinda || o == OwnerPending
}

// Party reports whether the owner is a real party (not pending).
func (o Owner) Party() bool {
	return o == OwnerEu || o == OwnerDinda
}

// Transaction is a single purchase on the shared card, either confirmed by
// an invoice line or projected from an installment plan.
//
// Date is an ISO calendar date (YYYY-MM-DD) and ReferenceMonth the billing
// cycle (YYYY-MM) the purchase is charged to. Both are kept textual because
// the unique hash and all month arithmetic are defined over that form.
type Transaction struct {
	ID                 string
	Date               string
	Description        string
	Amount             decimal.Decimal
	CurrentInstallment int // 0 when the purchase is not installment-based
	TotalInstallments  int // 0 when unknown
	ReferenceMonth     string
	Owner              Owner
	Category           string
	UniqueHash         string
	SourceFile         string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasInstallment reports whether the transaction carries installment metadata.
func (t *Transaction) HasInstallment() bool {
	return t.CurrentInstallment > 0
}

// OpenInstallment reports whether future installments of this purchase remain.
func (t *Transaction) OpenInstallment() bool {
	return t.CurrentInstallment > 0 && t.TotalInstallments > 0 &&
		t.CurrentInstallment < t.TotalInstallments
}

// FinalInstallment reports whether this is the last installment of its plan.
func (t *Transaction) FinalInstallment() bool {
	return t.CurrentInstallment > 0 && t.CurrentInstallment == t.TotalInstallments
}

// RemainingInstallments returns how many installments come after this one.
func (t *Transaction) RemainingInstallments() int {
	if !t.OpenInstallment() {
		return 0
	}

	return t.TotalInstallments - t.CurrentInstallment
}

// RemainingAmount returns the total still owed after this installment.
func (t *Transaction) RemainingAmount() decimal.Decimal {
	return t.Amount.Mul(decimal.NewFromInt(int64(t.RemainingInstallments())))
}

// DedupKey returns the identity used when counting a month's transactions:
// entries with the same hash are the same logical fact and count once.
func (t *Transaction) DedupKey() string {
	if t.UniqueHash != "" {
		return t.UniqueHash
	}

	return fmt.Sprintf("%s_%s_%s", t.Date, FormatAmount(t.Amount), t.Description)
}

// TransactionPatch carries the mutable fields of a partial update.
// Nil fields are left untouched.
type TransactionPatch struct {
	Date        *string
	Description *string
	UniqueHash  *string
	Owner       *Owner
	Category    *string
}

// Candidate is one line item emitted by the external invoice-extraction
// collaborator. All fields are raw: amount and date still need
// normalization, and the line may turn out to be invoice boilerplate.
type Candidate struct {
	Date               string
	Description        string
	Amount             string
	CurrentInstallment int
	TotalInstallments  int
}
