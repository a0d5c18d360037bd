// Package normalize turns the raw text emitted by the invoice-extraction
// collaborator into canonical values: decimal amounts, ISO dates and
// folded descriptions, plus the boilerplate filter that drops non-purchase
// lines. Everything here is pure.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount parses a textual monetary amount into a decimal. Invoices mix
// Brazilian ("1.234,56") and plain ("1234.56") notation:
//   - both separators present: dot is thousands, comma is decimal
//   - only comma: comma is decimal
//   - otherwise: parsed as-is
//
// Currency symbols and any other noise are stripped first. Unparseable
// input yields zero, never an error; a malformed amount must not kill an
// import batch.
func Amount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	s = b.String()

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}
