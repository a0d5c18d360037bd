package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount the way hashes expect it: decimal point,
// trailing zeros trimmed (29.90 -> "29.9", 100.00 -> "100").
func FormatAmount(amount decimal.Decimal) string {
	s := amount.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}

	return s
}

// ParseAmount parses a decimal string from an API payload. Unlike the
// import normalizer it is strict: anything but a plain decimal number is
// rejected with ErrInvalidAmount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	return amount, nil
}

// UniqueHash builds the natural idempotency key of a real transaction.
// It is a deterministic function of date, amount, description and the
// installment index (0 when the purchase is not installment-based), so the
// same invoice line always maps to the same key.
func UniqueHash(date string, amount decimal.Decimal, description string, currentInstallment int) string {
	return fmt.Sprintf("%s_%s_%s_%d", date, FormatAmount(amount), description, currentInstallment)
}

// ProjectionHash builds the key of a synthesized future installment. It is
// derived from the anchor entry, not from the projection's own fields, so
// re-projecting the same anchor is idempotent.
func ProjectionHash(anchorDate string, anchorAmount decimal.Decimal, installment, total int) string {
	return fmt.Sprintf("PROJ_%s_%s_%d_of_%d", anchorDate, FormatAmount(anchorAmount), installment, total)
}
