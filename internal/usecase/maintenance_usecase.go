package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/infrastructure/metrics"
)

// MaintenanceUseCase repairs the projected tail of the ledger. Older
// ingestion paths produced duplicate projections and gaps in installment
// schedules; Sanitize removes the former, Backfill fills the latter.
type MaintenanceUseCase struct {
	txRepo  TransactionRepository
	idGen   IDGenerator
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewMaintenanceUseCase creates a new MaintenanceUseCase.
func NewMaintenanceUseCase(
	txRepo TransactionRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *MaintenanceUseCase {
	return &MaintenanceUseCase{txRepo: txRepo, idGen: idGen, logger: logger, metrics: m}
}

// MaintenanceReport summarizes one maintenance run.
type MaintenanceReport struct {
	ReferenceMonth string
	Deduped        int
	Backfilled     int
}

// Run executes Sanitize then Backfill against months after referenceMonth.
// Imported history up to and including the reference month is never touched.
func (uc *MaintenanceUseCase) Run(ctx context.Context, referenceMonth string) (*MaintenanceReport, error) {
	if !domain.ValidMonth(referenceMonth) {
		return nil, domain.ErrInvalidMonth
	}

	deduped, err := uc.sanitize(ctx, referenceMonth)
	if err != nil {
		return nil, err
	}

	backfilled, err := uc.backfill(ctx, referenceMonth)
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveMaintenance(deduped, backfilled)
	uc.logger.Info().
		Str("reference_month", referenceMonth).
		Int("deduped", deduped).
		Int("backfilled", backfilled).
		Msg("maintenance finished")

	return &MaintenanceReport{
		ReferenceMonth: referenceMonth,
		Deduped:        deduped,
		Backfilled:     backfilled,
	}, nil
}

// scheduleKey identifies one expected installment slot. Two rows with the
// same month, amount and installment index are the same slot regardless of
// which import produced them.
func scheduleKey(month string, tx *domain.Transaction) string {
	return fmt.Sprintf("%s_%s_%d", month, tx.Amount.StringFixed(2), tx.CurrentInstallment)
}

// sanitize deletes duplicate rows occupying the same schedule slot in
// future months, keeping the row with the longest unique hash. Projection
// hashes carry the full anchor identity and are always longer than bare
// import hashes, so the most descriptive row survives.
func (uc *MaintenanceUseCase) sanitize(ctx context.Context, referenceMonth string) (int, error) {
	transactions, err := uc.txRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]*domain.Transaction)

	for _, tx := range transactions {
		if tx.ReferenceMonth <= referenceMonth {
			continue
		}

		// Only installment rows occupy schedule slots. One-off purchases
		// in a future month can legitimately share an amount.
		if !tx.HasInstallment() {
			continue
		}

		key := scheduleKey(tx.ReferenceMonth, tx)
		groups[key] = append(groups[key], tx)
	}

	removed := 0

	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		sort.SliceStable(group, func(i, j int) bool {
			return len(group[i].UniqueHash) > len(group[j].UniqueHash)
		})

		for _, extra := range group[1:] {
			if err := uc.txRepo.Delete(ctx, extra.ID); err != nil {
				uc.logger.Warn().Err(err).Str("transaction_id", extra.ID).Msg("could not delete duplicate projection")

				continue
			}

			removed++
		}
	}

	return removed, nil
}

// backfill creates the projection rows missing from open installment
// schedules. Every row with a known installment position acts as an
// anchor; slots already occupied by any row, imported or projected, are
// left alone.
func (uc *MaintenanceUseCase) backfill(ctx context.Context, referenceMonth string) (int, error) {
	transactions, err := uc.txRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	occupied := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		occupied[scheduleKey(tx.ReferenceMonth, tx)] = true
	}

	created := 0

	for _, anchor := range transactions {
		if !anchor.OpenInstallment() {
			continue
		}

		for _, projection := range GenerateProjections(anchor, uc.idGen) {
			key := scheduleKey(projection.ReferenceMonth, projection)
			if occupied[key] {
				continue
			}

			if err := uc.txRepo.Create(ctx, projection); err != nil {
				uc.logger.Warn().Err(err).
					Str("month", projection.ReferenceMonth).
					Str("hash", projection.UniqueHash).
					Msg("could not backfill projection")

				continue
			}

			occupied[key] = true
			created++
		}
	}

	return created, nil
}
