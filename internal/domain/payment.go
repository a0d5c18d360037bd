package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is money one party put toward the shared bill. Immutable once
// created except via delete.
type Payment struct {
	ID             string
	Date           string
	Amount         decimal.Decimal
	Payer          Owner
	ReferenceMonth string
	Note           string
	CreatedAt      time.Time
}

// Validate checks the payment fields.
func (p *Payment) Validate() error {
	if !p.Payer.Party() {
		return ErrInvalidOwner
	}

	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !ValidMonth(p.ReferenceMonth) {
		return ErrInvalidMonth
	}

	return nil
}

// Withdrawal is cash one party took against the shared card. Semantically a
// payment in reverse: it shifts who effectively paid what in the month it
// belongs to.
type Withdrawal struct {
	ID             string
	Date           string
	Amount         decimal.Decimal
	Taker          Owner
	ReferenceMonth string
	Note           string
	CreatedAt      time.Time
}

// Validate checks the withdrawal fields.
func (w *Withdrawal) Validate() error {
	if !w.Taker.Party() {
		return ErrInvalidOwner
	}

	if w.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !ValidMonth(w.ReferenceMonth) {
		return ErrInvalidMonth
	}

	return nil
}
