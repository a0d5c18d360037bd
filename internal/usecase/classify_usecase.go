package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/billsplit/internal/domain"
)

// ClassifyUseCase assigns owners to transactions and learns rules from
// the assignments so future imports classify the same merchant on sight.
type ClassifyUseCase struct {
	txRepo   TransactionRepository
	ruleRepo RuleRepository
	idGen    IDGenerator
	logger   zerolog.Logger
}

// NewClassifyUseCase creates a new ClassifyUseCase.
func NewClassifyUseCase(
	txRepo TransactionRepository,
	ruleRepo RuleRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *ClassifyUseCase {
	return &ClassifyUseCase{txRepo: txRepo, ruleRepo: ruleRepo, idGen: idGen, logger: logger}
}

// ClassifyInput carries one classification decision.
type ClassifyInput struct {
	TransactionID string
	Owner         domain.Owner
	Category      string
	Learn         bool
}

// Classify sets the owner (and optionally category) of one transaction.
// With Learn set, the transaction's description becomes a rule pattern so
// the importer pre-classifies future charges from the same merchant.
func (uc *ClassifyUseCase) Classify(ctx context.Context, in ClassifyInput) (*domain.Transaction, error) {
	if !in.Owner.Valid() {
		return nil, domain.ErrInvalidOwner
	}

	tx, err := uc.txRepo.GetByID(ctx, in.TransactionID)
	if err != nil {
		return nil, err
	}

	patch := domain.TransactionPatch{Owner: &in.Owner}
	if in.Category != "" {
		patch.Category = &in.Category
	}

	updated, err := uc.txRepo.Update(ctx, tx.ID, patch)
	if err != nil {
		return nil, err
	}

	if in.Learn && in.Owner.Party() {
		uc.learnRule(ctx, tx.Description, in.Owner, in.Category)
	}

	return updated, nil
}

// learnRule records the description as a classification pattern. Failure
// to learn never fails the classification itself.
func (uc *ClassifyUseCase) learnRule(ctx context.Context, description string, owner domain.Owner, category string) {
	if description == "" {
		return
	}

	_, err := uc.ruleRepo.GetByPattern(ctx, description)
	if err == nil {
		return
	}

	if !errors.Is(err, domain.ErrRuleNotFound) {
		uc.logger.Warn().Err(err).Str("pattern", description).Msg("could not look up rule")

		return
	}

	rule := &domain.ClassificationRule{
		ID:             uc.idGen.Generate(),
		Pattern:        description,
		SuggestedOwner: owner,
		Category:       category,
		CreatedAt:      time.Now().UTC(),
	}

	if err := uc.ruleRepo.Create(ctx, rule); err != nil {
		uc.logger.Warn().Err(err).Str("pattern", description).Msg("could not learn rule")

		return
	}

	uc.logger.Debug().Str("pattern", description).Str("owner", string(owner)).Msg("rule learned")
}

// ClassifyPending assigns every unclassified transaction of a month to the
// given owner in one pass and returns how many were updated.
func (uc *ClassifyUseCase) ClassifyPending(ctx context.Context, month string, owner domain.Owner) (int, error) {
	if !domain.ValidMonth(month) {
		return 0, domain.ErrInvalidMonth
	}

	if !owner.Party() {
		return 0, domain.ErrInvalidOwner
	}

	transactions, err := uc.txRepo.ListByReferenceMonth(ctx, month)
	if err != nil {
		return 0, err
	}

	var ids []string
	for _, tx := range transactions {
		if tx.Owner == domain.OwnerPending {
			ids = append(ids, tx.ID)
		}
	}

	if len(ids) == 0 {
		return 0, nil
	}

	if err := uc.txRepo.UpdateOwnerMany(ctx, ids, owner); err != nil {
		return 0, err
	}

	uc.logger.Info().Str("month", month).Int("count", len(ids)).Str("owner", string(owner)).Msg("pending transactions classified")

	return len(ids), nil
}

// Rules lists all learned classification rules.
func (uc *ClassifyUseCase) Rules(ctx context.Context) ([]*domain.ClassificationRule, error) {
	return uc.ruleRepo.List(ctx)
}
