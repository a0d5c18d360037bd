package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
	"github.com/iho/billsplit/internal/usecase/mocks"
)

func newMaintenanceFixture(t *testing.T) (*usecase.MaintenanceUseCase, *mocks.MockTransactionRepository) {
	t.Helper()

	txRepo := mocks.NewMockTransactionRepository()
	uc := usecase.NewMaintenanceUseCase(txRepo, mocks.NewMockIDGenerator(), zerolog.Nop(), nil)

	return uc, txRepo
}

func installmentTx(id, month, hash, amount string, current, total int) *domain.Transaction {
	return &domain.Transaction{
		ID:                 id,
		Date:               month + "-10",
		Description:        "PARCELA " + id,
		Amount:             decimal.RequireFromString(amount),
		CurrentInstallment: current,
		TotalInstallments:  total,
		ReferenceMonth:     month,
		Owner:              domain.OwnerEu,
		UniqueHash:         hash,
	}
}

func TestMaintenance_SanitizeKeepsLongestHash(t *testing.T) {
	uc, txRepo := newMaintenanceFixture(t)

	// Two rows in a future month occupying the same schedule slot. The
	// projection hash is longer and must survive.
	txRepo.Seed(
		installmentTx("short", "2024-05", "abc", "120.00", 3, 5),
		installmentTx("long", "2024-05", "PROJ_2024-03-01_120_3_of_5", "120.00", 3, 5),
	)

	report, err := uc.Run(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deduped)

	if _, err := txRepo.GetByID(context.Background(), "long"); err != nil {
		t.Error("long-hash row was deleted, want kept")
	}
	if _, err := txRepo.GetByID(context.Background(), "short"); err == nil {
		t.Error("short-hash row survived, want deleted")
	}
}

func TestMaintenance_SanitizeLeavesPastAndPresentAlone(t *testing.T) {
	uc, txRepo := newMaintenanceFixture(t)

	// Identical slot in the reference month itself: imported history, not
	// a projection artifact.
	txRepo.Seed(
		installmentTx("a", "2024-03", "hash-a", "50.00", 2, 2),
		installmentTx("b", "2024-03", "hash-b-longer", "50.00", 2, 2),
	)

	report, err := uc.Run(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Deduped)

	all, _ := txRepo.List(context.Background())
	assert.Len(t, all, 2)
}

func TestMaintenance_SanitizeIgnoresOneOffPurchases(t *testing.T) {
	uc, txRepo := newMaintenanceFixture(t)

	// Two distinct future purchases without installment metadata that
	// happen to share an amount. They occupy no schedule slot and must
	// both survive.
	txRepo.Seed(
		installmentTx("mercado", "2024-05", "hash-mercado", "50.00", 0, 0),
		installmentTx("posto", "2024-05", "hash-posto-longer", "50.00", 0, 0),
	)

	report, err := uc.Run(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Deduped)

	all, _ := txRepo.List(context.Background())
	assert.Len(t, all, 2)
}

func TestMaintenance_BackfillFillsScheduleGaps(t *testing.T) {
	uc, txRepo := newMaintenanceFixture(t)

	// Anchor 1/4 in may; only the june installment was ever projected, so
	// july and august are missing.
	txRepo.Seed(
		installmentTx("anchor", "2024-05", "real-hash", "80.00", 1, 4),
		installmentTx("june", "2024-06", "PROJ_2024-05-10_80_2_of_4", "80.00", 2, 4),
	)

	report, err := uc.Run(context.Background(), "2024-05")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Backfilled)

	for _, month := range []string{"2024-06", "2024-07", "2024-08"} {
		rows, _ := txRepo.ListByReferenceMonth(context.Background(), month)
		require.Len(t, rows, 1, "month %s", month)
	}

	july, _ := txRepo.ListByReferenceMonth(context.Background(), "2024-07")
	assert.Equal(t, 3, july[0].CurrentInstallment)
	assert.Equal(t, domain.OwnerEu, july[0].Owner)
}

func TestMaintenance_RunIsIdempotent(t *testing.T) {
	uc, txRepo := newMaintenanceFixture(t)

	txRepo.Seed(installmentTx("anchor", "2024-05", "real-hash", "80.00", 1, 3))

	first, err := uc.Run(context.Background(), "2024-05")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Backfilled)

	second, err := uc.Run(context.Background(), "2024-05")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Deduped)
	assert.Equal(t, 0, second.Backfilled)

	all, _ := txRepo.List(context.Background())
	assert.Len(t, all, 3)
}

func TestMaintenance_InvalidMonthRejected(t *testing.T) {
	uc, _ := newMaintenanceFixture(t)

	_, err := uc.Run(context.Background(), "maio/2024")
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}
