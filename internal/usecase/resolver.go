package usecase

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/normalize"
)

// amountTolerance is the absolute slack allowed when comparing a candidate
// amount against an existing entry. Projections are generated from the
// plan's stated per-installment value, which can differ from the invoiced
// value by rounding.
var amountTolerance = decimal.RequireFromString("0.05")

// normalizedCandidate is a candidate after money/date normalization,
// targeting a specific reference month.
type normalizedCandidate struct {
	Date               string
	Description        string
	Amount             decimal.Decimal
	CurrentInstallment int
	TotalInstallments  int
	ReferenceMonth     string
	Hash               string
}

func normalizeCandidate(c domain.Candidate, referenceMonth string) normalizedCandidate {
	date := normalize.Date(c.Date, referenceMonth)
	amount := normalize.Amount(c.Amount)

	return normalizedCandidate{
		Date:               date,
		Description:        c.Description,
		Amount:             amount,
		CurrentInstallment: c.CurrentInstallment,
		TotalInstallments:  c.TotalInstallments,
		ReferenceMonth:     referenceMonth,
		Hash:               domain.UniqueHash(date, amount, c.Description, c.CurrentInstallment),
	}
}

// matchAction is the decision for one candidate.
type matchAction int

const (
	// matchCreate: nothing matched, create a new transaction.
	matchCreate matchAction = iota
	// matchSkip: an entry with the exact hash already exists.
	matchSkip
	// matchMerge: one or more fuzzy candidates matched; update the winner,
	// delete the extras.
	matchMerge
)

// match is the outcome of resolving one candidate against the existing set.
type match struct {
	action matchAction
	winner *domain.Transaction
	extras []*domain.Transaction
}

// resolveCandidate decides what to do with a normalized candidate given the
// existing transaction set and the IDs already consumed by earlier
// candidates in the same batch. Pure function: iteration order over
// existing is the caller-supplied order, which makes the "first match
// wins" tie-break reproducible.
func resolveCandidate(c normalizedCandidate, existing []*domain.Transaction, consumed map[string]bool) match {
	// Exact hash anywhere in the ledger means the same fact was already
	// imported.
	for _, tx := range existing {
		if tx.UniqueHash == c.Hash {
			return match{action: matchSkip, winner: tx}
		}
	}

	// Fuzzy merge candidates: same month, not consumed by this batch.
	var candidates []*domain.Transaction

	for _, tx := range existing {
		if consumed[tx.ID] || tx.ReferenceMonth != c.ReferenceMonth {
			continue
		}

		if matchesFuzzy(c, tx) {
			candidates = append(candidates, tx)
		}
	}

	if len(candidates) == 0 {
		return match{action: matchCreate}
	}

	return match{
		action: matchMerge,
		winner: candidates[0],
		extras: candidates[1:],
	}
}

func matchesFuzzy(c normalizedCandidate, tx *domain.Transaction) bool {
	if c.CurrentInstallment > 0 {
		if tx.CurrentInstallment != c.CurrentInstallment {
			return false
		}

		// When both sides state a plan length they must agree; a missing
		// total on either side is accepted (incomplete projection).
		if c.TotalInstallments > 0 && tx.TotalInstallments > 0 &&
			tx.TotalInstallments != c.TotalInstallments {
			return false
		}
	}

	if tx.Amount.Sub(c.Amount).Abs().GreaterThan(amountTolerance) {
		return false
	}

	// For installment candidates, amount + installment index is a strong
	// enough key: the invoiced description often differs wildly from the
	// projected one. Cash purchases additionally need related
	// descriptions, or two unrelated same-priced purchases would merge.
	if c.CurrentInstallment == 0 && !relatedDescriptions(c.Description, tx.Description) {
		return false
	}

	return true
}

// relatedDescriptions reports whether two descriptions plausibly name the
// same merchant: they share a significant word ("Uber" in "Uber Trip" and
// "Uber Eats"), or one whitespace-stripped form contains the other
// ("Netflix" inside "Pag*Netflix.com"). An accepted heuristic: identical
// amounts from genuinely different merchants with overlapping tokens will
// merge.
func relatedDescriptions(a, b string) bool {
	wordsA := normalize.Words(a)
	wordsB := normalize.Words(b)

	for _, wa := range wordsA {
		for _, wb := range wordsB {
			if wa == wb {
				return true
			}
		}
	}

	compactA := normalize.Compact(a)
	compactB := normalize.Compact(b)

	return strings.Contains(compactA, compactB) || strings.Contains(compactB, compactA)
}
