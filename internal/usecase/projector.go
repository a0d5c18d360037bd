package usecase

import (
	"github.com/iho/billsplit/internal/domain"
)

// maxProjectedInstallments guards against misread plans like "2/999":
// beyond this gap the metadata is treated as a data-quality error and no
// projections are generated.
const maxProjectedInstallments = 60

// projectionDay is the arbitrary calendar day projected entries are dated.
const projectionDay = 10

// GenerateProjections synthesizes the future installments of an anchor
// transaction: one entry per month after the anchor's reference month,
// dated the 10th, carrying the anchor's amount, description, owner and
// category. Returns nil when the anchor has no open installments or the
// plan is implausibly long.
func GenerateProjections(anchor *domain.Transaction, idGen IDGenerator) []*domain.Transaction {
	if !anchor.OpenInstallment() {
		return nil
	}

	remaining := anchor.RemainingInstallments()
	if remaining > maxProjectedInstallments {
		return nil
	}

	projections := make([]*domain.Transaction, 0, remaining)

	for i := 1; i <= remaining; i++ {
		month := domain.AddMonths(anchor.ReferenceMonth, i)

		projections = append(projections, &domain.Transaction{
			ID:                 idGen.Generate(),
			Date:               domain.MonthDay(month, projectionDay),
			Description:        anchor.Description,
			Amount:             anchor.Amount,
			CurrentInstallment: anchor.CurrentInstallment + i,
			TotalInstallments:  anchor.TotalInstallments,
			ReferenceMonth:     month,
			Owner:              anchor.Owner,
			Category:           anchor.Category,
			UniqueHash: domain.ProjectionHash(
				anchor.Date,
				anchor.Amount,
				anchor.CurrentInstallment+i,
				anchor.TotalInstallments,
			),
		})
	}

	return projections
}
