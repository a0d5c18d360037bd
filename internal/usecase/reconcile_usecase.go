package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/infrastructure/metrics"
	"github.com/iho/billsplit/internal/normalize"
)

// ReconcileUseCase turns the noisy candidate stream of an imported invoice
// into ledger state: it filters boilerplate, normalizes amounts and dates,
// deduplicates candidates against existing entries (exact hash or fuzzy
// projection merge) and generates forward-looking installment projections.
type ReconcileUseCase struct {
	txRepo      TransactionRepository
	ruleRepo    RuleRepository
	invoiceRepo InvoiceRepository
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewReconcileUseCase creates a new ReconcileUseCase.
func NewReconcileUseCase(
	txRepo TransactionRepository,
	ruleRepo RuleRepository,
	invoiceRepo InvoiceRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		txRepo:      txRepo,
		ruleRepo:    ruleRepo,
		invoiceRepo: invoiceRepo,
		idGen:       idGen,
		logger:      logger,
		metrics:     m,
	}
}

// ReconcileInput represents one imported invoice: the extraction
// collaborator's candidate lines targeting a billing month.
type ReconcileInput struct {
	ReferenceMonth string
	FileName       string
	Candidates     []domain.Candidate
}

// CandidateFailure records a single candidate the batch could not persist.
type CandidateFailure struct {
	Description string
	Reason      string
}

// ReconcileReport summarizes what one import batch did. Failures are
// per-candidate: the batch never rolls back successful writes.
type ReconcileReport struct {
	ReferenceMonth string
	Candidates     int
	Created        int
	Merged         int
	Skipped        int
	Noise          int
	Failed         int
	Projected      int
	Failures       []CandidateFailure
	FinishedAt     time.Time
}

// Reconcile processes one import batch candidate-by-candidate. Matching
// runs against a snapshot of the store taken at batch start plus a
// consumed-ID set, so one existing entry can absorb at most one candidate;
// the store's hash-uniqueness constraint backstops anything the snapshot
// misses. Only context cancellation aborts the batch.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, input ReconcileInput) (*ReconcileReport, error) {
	if !domain.ValidMonth(input.ReferenceMonth) {
		return nil, domain.ErrInvalidMonth
	}

	uc.metrics.ObserveImport()

	if input.FileName != "" {
		err := uc.invoiceRepo.Upsert(ctx, &domain.Invoice{
			ReferenceMonth: input.ReferenceMonth,
			FileName:       input.FileName,
		})
		if err != nil {
			uc.logger.Warn().Err(err).Str("month", input.ReferenceMonth).
				Msg("could not record invoice metadata")
		}
	}

	existing, err := uc.txRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		ReferenceMonth: input.ReferenceMonth,
		Candidates:     len(input.Candidates),
	}
	consumed := make(map[string]bool)

	for _, raw := range input.Candidates {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now().UTC()

			return report, err
		}

		if normalize.IsNoise(raw.Description) {
			report.Noise++
			uc.metrics.ObserveCandidate(metrics.OutcomeNoise)

			continue
		}

		c := normalizeCandidate(raw, input.ReferenceMonth)

		switch m := resolveCandidate(c, existing, consumed); m.action {
		case matchSkip:
			consumed[m.winner.ID] = true
			report.Skipped++
			uc.metrics.ObserveCandidate(metrics.OutcomeSkipped)
		case matchMerge:
			uc.applyMerge(ctx, c, m, consumed, input.FileName, report)
		case matchCreate:
			uc.applyCreate(ctx, c, input.FileName, report)
		}
	}

	report.FinishedAt = time.Now().UTC()

	uc.logger.Info().
		Str("month", input.ReferenceMonth).
		Int("candidates", report.Candidates).
		Int("created", report.Created).
		Int("merged", report.Merged).
		Int("skipped", report.Skipped).
		Int("noise", report.Noise).
		Int("failed", report.Failed).
		Int("projected", report.Projected).
		Msg("import reconciled")

	return report, nil
}

// applyMerge updates the winning fuzzy match in place with the candidate's
// date, authoritative description and hash. Owner and category stay as
// they are: manual classification must survive re-imports. Extra matches
// (typically stale projections of the same installment) are deleted.
func (uc *ReconcileUseCase) applyMerge(
	ctx context.Context,
	c normalizedCandidate,
	m match,
	consumed map[string]bool,
	sourceFile string,
	report *ReconcileReport,
) {
	consumed[m.winner.ID] = true

	updated, err := uc.txRepo.Update(ctx, m.winner.ID, domain.TransactionPatch{
		Date:        &c.Date,
		Description: &c.Description,
		UniqueHash:  &c.Hash,
	})

	if errors.Is(err, domain.ErrTransactionNotFound) {
		// The winner vanished between snapshot and update; treat the
		// candidate as never-seen.
		uc.applyCreate(ctx, c, sourceFile, report)

		return
	}

	if err != nil {
		uc.failCandidate(report, c, err)

		return
	}

	// Only a merged winner makes its extras redundant.
	uc.deleteExtras(ctx, m.extras, consumed)

	report.Merged++
	uc.metrics.ObserveCandidate(metrics.OutcomeMerged)

	// Re-project from the merged entry so older anchors that predate
	// projection support still get their future installments.
	anchor := *updated
	anchor.ReferenceMonth = c.ReferenceMonth
	anchor.CurrentInstallment = c.CurrentInstallment
	anchor.TotalInstallments = c.TotalInstallments
	report.Projected += uc.projectInstallments(ctx, &anchor)
}

func (uc *ReconcileUseCase) applyCreate(
	ctx context.Context,
	c normalizedCandidate,
	sourceFile string,
	report *ReconcileReport,
) {
	owner := domain.OwnerPending
	category := ""

	rule, err := uc.ruleRepo.FindMatch(ctx, c.Description)
	switch {
	case err == nil:
		owner = rule.SuggestedOwner
		category = rule.Category
	case !errors.Is(err, domain.ErrRuleNotFound):
		// Rule lookup is advisory; a failing collaborator must not block
		// the import.
		uc.logger.Warn().Err(err).Str("description", c.Description).
			Msg("classification rule lookup failed")
	}

	tx := &domain.Transaction{
		ID:                 uc.idGen.Generate(),
		Date:               c.Date,
		Description:        c.Description,
		Amount:             c.Amount,
		CurrentInstallment: c.CurrentInstallment,
		TotalInstallments:  c.TotalInstallments,
		ReferenceMonth:     c.ReferenceMonth,
		Owner:              owner,
		Category:           category,
		UniqueHash:         c.Hash,
		SourceFile:         sourceFile,
	}

	err = uc.txRepo.Create(ctx, tx)
	if errors.Is(err, domain.ErrDuplicateTransaction) {
		// Someone else inserted the same fact; benign.
		report.Skipped++
		uc.metrics.ObserveCandidate(metrics.OutcomeSkipped)

		return
	}

	if err != nil {
		uc.failCandidate(report, c, err)

		return
	}

	report.Created++
	uc.metrics.ObserveCandidate(metrics.OutcomeCreated)
	report.Projected += uc.projectInstallments(ctx, tx)
}

// projectInstallments pushes the anchor's future installments through the
// same creation path as any candidate, so the store-level idempotency
// applies to them too. Returns how many were actually created.
func (uc *ReconcileUseCase) projectInstallments(ctx context.Context, anchor *domain.Transaction) int {
	created := 0

	for _, projection := range GenerateProjections(anchor, uc.idGen) {
		err := uc.txRepo.Create(ctx, projection)

		switch {
		case errors.Is(err, domain.ErrDuplicateTransaction):
			continue
		case err != nil:
			uc.logger.Warn().Err(err).
				Str("month", projection.ReferenceMonth).
				Str("description", projection.Description).
				Msg("could not create projection")
		default:
			created++
		}
	}

	uc.metrics.ObserveProjections(created)

	return created
}

func (uc *ReconcileUseCase) deleteExtras(ctx context.Context, extras []*domain.Transaction, consumed map[string]bool) {
	for _, extra := range extras {
		consumed[extra.ID] = true

		err := uc.txRepo.Delete(ctx, extra.ID)
		if err != nil && !errors.Is(err, domain.ErrTransactionNotFound) {
			uc.logger.Warn().Err(err).Str("id", extra.ID).Msg("could not delete duplicate match")
		}
	}
}

func (uc *ReconcileUseCase) failCandidate(report *ReconcileReport, c normalizedCandidate, err error) {
	report.Failed++
	report.Failures = append(report.Failures, CandidateFailure{
		Description: c.Description,
		Reason:      err.Error(),
	})
	uc.metrics.ObserveCandidate(metrics.OutcomeFailed)
	uc.logger.Error().Err(err).Str("description", c.Description).Msg("candidate failed")
}
