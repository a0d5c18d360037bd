package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/billsplit/internal/domain"
)

// PaymentUseCase records and removes manual payment entries.
type PaymentUseCase struct {
	paymentRepo PaymentRepository
	idGen       IDGenerator
	logger      zerolog.Logger
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(paymentRepo PaymentRepository, idGen IDGenerator, logger zerolog.Logger) *PaymentUseCase {
	return &PaymentUseCase{paymentRepo: paymentRepo, idGen: idGen, logger: logger}
}

// PaymentInput carries the fields of a new payment.
type PaymentInput struct {
	Date           string
	Amount         string
	Payer          domain.Owner
	ReferenceMonth string
	Note           string
}

// Record validates and stores a payment.
func (uc *PaymentUseCase) Record(ctx context.Context, in PaymentInput) (*domain.Payment, error) {
	amount, err := domain.ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		ID:             uc.idGen.Generate(),
		Date:           in.Date,
		Amount:         amount,
		Payer:          in.Payer,
		ReferenceMonth: in.ReferenceMonth,
		Note:           in.Note,
		CreatedAt:      time.Now().UTC(),
	}

	if err := payment.Validate(); err != nil {
		return nil, err
	}

	if err := uc.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("payment_id", payment.ID).
		Str("payer", string(payment.Payer)).
		Str("amount", payment.Amount.String()).
		Str("month", payment.ReferenceMonth).
		Msg("payment recorded")

	return payment, nil
}

// Delete removes a payment by ID.
func (uc *PaymentUseCase) Delete(ctx context.Context, id string) error {
	return uc.paymentRepo.Delete(ctx, id)
}

// ListByMonth returns a month's payments.
func (uc *PaymentUseCase) ListByMonth(ctx context.Context, month string) ([]*domain.Payment, error) {
	if !domain.ValidMonth(month) {
		return nil, domain.ErrInvalidMonth
	}

	return uc.paymentRepo.ListByReferenceMonth(ctx, month)
}
