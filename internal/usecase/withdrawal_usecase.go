package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/billsplit/internal/domain"
)

// WithdrawalUseCase records and removes cash withdrawals against the card.
type WithdrawalUseCase struct {
	wdRepo WithdrawalRepository
	idGen  IDGenerator
	logger zerolog.Logger
}

// NewWithdrawalUseCase creates a new WithdrawalUseCase.
func NewWithdrawalUseCase(wdRepo WithdrawalRepository, idGen IDGenerator, logger zerolog.Logger) *WithdrawalUseCase {
	return &WithdrawalUseCase{wdRepo: wdRepo, idGen: idGen, logger: logger}
}

// WithdrawalInput carries the fields of a new withdrawal.
type WithdrawalInput struct {
	Date           string
	Amount         string
	Taker          domain.Owner
	ReferenceMonth string
	Note           string
}

// Record validates and stores a withdrawal.
func (uc *WithdrawalUseCase) Record(ctx context.Context, in WithdrawalInput) (*domain.Withdrawal, error) {
	amount, err := domain.ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	withdrawal := &domain.Withdrawal{
		ID:             uc.idGen.Generate(),
		Date:           in.Date,
		Amount:         amount,
		Taker:          in.Taker,
		ReferenceMonth: in.ReferenceMonth,
		Note:           in.Note,
		CreatedAt:      time.Now().UTC(),
	}

	if err := withdrawal.Validate(); err != nil {
		return nil, err
	}

	if err := uc.wdRepo.Create(ctx, withdrawal); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("withdrawal_id", withdrawal.ID).
		Str("taker", string(withdrawal.Taker)).
		Str("amount", withdrawal.Amount.String()).
		Str("month", withdrawal.ReferenceMonth).
		Msg("withdrawal recorded")

	return withdrawal, nil
}

// Delete removes a withdrawal by ID.
func (uc *WithdrawalUseCase) Delete(ctx context.Context, id string) error {
	return uc.wdRepo.Delete(ctx, id)
}

// ListByMonth returns a month's withdrawals.
func (uc *WithdrawalUseCase) ListByMonth(ctx context.Context, month string) ([]*domain.Withdrawal, error) {
	if !domain.ValidMonth(month) {
		return nil, domain.ErrInvalidMonth
	}

	return uc.wdRepo.ListByReferenceMonth(ctx, month)
}
