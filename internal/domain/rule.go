package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClassificationRule maps a description pattern to the owner it usually
// belongs to. Rules are learned from manual classifications and consulted
// by case-insensitive substring match when a never-seen transaction is
// created.
type ClassificationRule struct {
	ID             string
	Pattern        string
	SuggestedOwner Owner
	Category       string
	CreatedAt      time.Time
}

// MonthlyClosing is an audit snapshot of one party's balance taken when a
// month is explicitly closed. It never feeds back into balance
// computation, which always re-derives carry-forward from raw history.
type MonthlyClosing struct {
	ID           string
	Month        string
	Party        Owner
	FinalBalance decimal.Decimal
	CreatedAt    time.Time
}

// Invoice holds per-month metadata about an imported bill: the file it came
// from and when it is due.
type Invoice struct {
	ReferenceMonth string
	FileName       string
	DueDate        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
