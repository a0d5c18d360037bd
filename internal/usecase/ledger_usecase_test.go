package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
	"github.com/iho/billsplit/internal/usecase/mocks"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ledgerTx(id, month string, owner domain.Owner, amount, hash string) *domain.Transaction {
	return &domain.Transaction{
		ID:             id,
		Date:           month + "-05",
		Description:    "COMPRA " + id,
		Amount:         dec(amount),
		ReferenceMonth: month,
		Owner:          owner,
		UniqueHash:     hash,
	}
}

func TestComputeSummary_SplitsTheMonth(t *testing.T) {
	transactions := []*domain.Transaction{
		ledgerTx("t1", "2024-03", domain.OwnerEu, "300", "h1"),
		ledgerTx("t2", "2024-03", domain.OwnerDinda, "200", "h2"),
		ledgerTx("t3", "2024-03", domain.OwnerPending, "50", "h3"),
	}
	payments := []*domain.Payment{
		{ID: "p1", Amount: dec("250"), Payer: domain.OwnerEu, ReferenceMonth: "2024-03"},
		{ID: "p2", Amount: dec("150"), Payer: domain.OwnerDinda, ReferenceMonth: "2024-03"},
	}
	withdrawals := []*domain.Withdrawal{
		{ID: "w1", Amount: dec("40"), Taker: domain.OwnerEu, ReferenceMonth: "2024-03"},
	}

	s := usecase.ComputeSummary("2024-03", transactions, payments, withdrawals)

	assert.True(t, s.InvoiceTotal.Equal(dec("550")), "invoice total = %s", s.InvoiceTotal)
	assert.True(t, s.ShareEu.Equal(dec("300")))
	assert.True(t, s.ShareDinda.Equal(dec("200")))
	assert.Equal(t, 1, s.PendingCount)

	// Eu took 40 in cash, so eu effectively paid 210 and Dinda 190.
	assert.True(t, s.EffectivePaidEu.Equal(dec("210")), "effective eu = %s", s.EffectivePaidEu)
	assert.True(t, s.EffectivePaidDinda.Equal(dec("190")), "effective dinda = %s", s.EffectivePaidDinda)
	assert.True(t, s.BalanceEu.Equal(dec("90")), "balance eu = %s", s.BalanceEu)
	assert.True(t, s.BalanceDinda.Equal(dec("10")), "balance dinda = %s", s.BalanceDinda)
}

func TestComputeSummary_OnlyEuCarriesForward(t *testing.T) {
	// February: each party bought 100, nobody paid anything.
	transactions := []*domain.Transaction{
		ledgerTx("t1", "2024-02", domain.OwnerEu, "100", "h1"),
		ledgerTx("t2", "2024-02", domain.OwnerDinda, "100", "h2"),
		ledgerTx("t3", "2024-03", domain.OwnerEu, "50", "h3"),
		ledgerTx("t4", "2024-03", domain.OwnerDinda, "50", "h4"),
	}

	s := usecase.ComputeSummary("2024-03", transactions, nil, nil)

	assert.True(t, s.PriorDebtEu.Equal(dec("100")), "prior debt eu = %s", s.PriorDebtEu)
	assert.True(t, s.BalanceEu.Equal(dec("150")), "balance eu = %s", s.BalanceEu)

	// Dinda's february debt does not follow her into march.
	assert.True(t, s.BalanceDinda.Equal(dec("50")), "balance dinda = %s", s.BalanceDinda)
}

func TestComputeSummary_PriorCreditReducesEuBalance(t *testing.T) {
	transactions := []*domain.Transaction{
		ledgerTx("t1", "2024-02", domain.OwnerEu, "100", "h1"),
		ledgerTx("t2", "2024-03", domain.OwnerEu, "80", "h2"),
	}
	payments := []*domain.Payment{
		{ID: "p1", Amount: dec("130"), Payer: domain.OwnerEu, ReferenceMonth: "2024-02"},
	}

	s := usecase.ComputeSummary("2024-03", transactions, payments, nil)

	assert.True(t, s.PriorCreditEu.Equal(dec("30")), "prior credit = %s", s.PriorCreditEu)
	assert.True(t, s.EffectivePaidEu.Equal(dec("30")), "effective eu = %s", s.EffectivePaidEu)
	assert.True(t, s.BalanceEu.Equal(dec("50")), "balance eu = %s", s.BalanceEu)
}

func TestComputeSummary_DuplicateHashCountedOnce(t *testing.T) {
	transactions := []*domain.Transaction{
		ledgerTx("t1", "2024-03", domain.OwnerEu, "100", "same"),
		ledgerTx("t2", "2024-03", domain.OwnerEu, "100", "same"),
	}

	s := usecase.ComputeSummary("2024-03", transactions, nil, nil)

	assert.True(t, s.InvoiceTotal.Equal(dec("100")), "invoice total = %s", s.InvoiceTotal)
}

func TestComputeSummary_EmptyMonthFallsBackToProjectedTotals(t *testing.T) {
	// A 1/3 plan anchored in january implies charges in february and march.
	anchor := ledgerTx("t1", "2024-01", domain.OwnerEu, "90", "h1")
	anchor.CurrentInstallment = 1
	anchor.TotalInstallments = 3

	s := usecase.ComputeSummary("2024-03", []*domain.Transaction{anchor}, nil, nil)

	assert.True(t, s.InvoiceTotal.Equal(dec("90")), "invoice total = %s", s.InvoiceTotal)
	assert.True(t, s.ShareEu.Equal(dec("90")), "share eu = %s", s.ShareEu)
}

func TestComputeSummary_ForecastCoversSixMonths(t *testing.T) {
	anchor := ledgerTx("t1", "2024-03", domain.OwnerDinda, "70", "h1")
	anchor.CurrentInstallment = 2
	anchor.TotalInstallments = 4

	s := usecase.ComputeSummary("2024-03", []*domain.Transaction{anchor}, nil, nil)

	require.Len(t, s.Forecast, 6)
	assert.Equal(t, "2024-04", s.Forecast[0].Month)
	assert.True(t, s.Forecast[0].Dinda.Equal(dec("70")))
	assert.True(t, s.Forecast[1].Dinda.Equal(dec("70")))

	// The plan ends at 4/4 in may; june onward is zero.
	assert.True(t, s.Forecast[2].Total.IsZero())
	assert.True(t, s.Forecast[5].Total.IsZero())
}

func TestComputeSummary_FinalInstallmentsTotal(t *testing.T) {
	closing := ledgerTx("t1", "2024-03", domain.OwnerEu, "120", "h1")
	closing.CurrentInstallment = 3
	closing.TotalInstallments = 3

	open := ledgerTx("t2", "2024-03", domain.OwnerEu, "80", "h2")
	open.CurrentInstallment = 1
	open.TotalInstallments = 3

	s := usecase.ComputeSummary("2024-03", []*domain.Transaction{closing, open}, nil, nil)

	assert.True(t, s.FinalInstallmentsTotal.Equal(dec("120")), "final total = %s", s.FinalInstallmentsTotal)
}

func newLedgerFixture(t *testing.T, cache usecase.Cache) (*usecase.LedgerUseCase, *mocks.MockTransactionRepository, *mocks.MockClosingRepository) {
	t.Helper()

	txRepo := mocks.NewMockTransactionRepository()
	closingRepo := mocks.NewMockClosingRepository()
	uc := usecase.NewLedgerUseCase(
		txRepo,
		mocks.NewMockPaymentRepository(),
		mocks.NewMockWithdrawalRepository(),
		closingRepo,
		mocks.NewMockInvoiceRepository(),
		mocks.NewMockIDGenerator(),
		cache,
		30*time.Second,
		zerolog.Nop(),
		nil,
	)

	return uc, txRepo, closingRepo
}

func TestComputeLedger_CacheHitShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cached, err := json.Marshal(&usecase.LedgerSummary{Month: "2024-03", InvoiceTotal: dec("42")})
	require.NoError(t, err)

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "ledger:2024-03").Return(string(cached), nil)

	uc, txRepo, _ := newLedgerFixture(t, cache)
	txRepo.ListFunc = func(ctx context.Context) ([]*domain.Transaction, error) {
		t.Fatal("store consulted despite cache hit")
		return nil, nil
	}

	s, err := uc.ComputeLedger(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.True(t, s.InvoiceTotal.Equal(dec("42")))
}

func TestComputeLedger_CacheMissComputesAndStores(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cache := mocks.NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "ledger:2024-03").Return("", errors.New("redis: nil"))
	cache.EXPECT().Set(gomock.Any(), "ledger:2024-03", gomock.Any(), 30*time.Second).Return(nil)

	uc, txRepo, _ := newLedgerFixture(t, cache)
	txRepo.Seed(ledgerTx("t1", "2024-03", domain.OwnerEu, "10", "h1"))

	s, err := uc.ComputeLedger(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.True(t, s.InvoiceTotal.Equal(dec("10")))
}

func TestCloseMonth_SnapshotsBothParties(t *testing.T) {
	uc, txRepo, closingRepo := newLedgerFixture(t, nil)
	txRepo.Seed(
		ledgerTx("t1", "2024-03", domain.OwnerEu, "100", "h1"),
		ledgerTx("t2", "2024-03", domain.OwnerDinda, "60", "h2"),
	)

	result, err := uc.CloseMonth(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Len(t, result.Closings, 2)

	stored, err := closingRepo.ListByMonth(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Len(t, stored, 2)

	byParty := map[domain.Owner]decimal.Decimal{}
	for _, c := range stored {
		byParty[c.Party] = c.FinalBalance
	}
	assert.True(t, byParty[domain.OwnerEu].Equal(dec("100")))
	assert.True(t, byParty[domain.OwnerDinda].Equal(dec("60")))
}

func TestClosings_ReturnsRecordedSnapshots(t *testing.T) {
	uc, txRepo, _ := newLedgerFixture(t, nil)
	txRepo.Seed(ledgerTx("t1", "2024-03", domain.OwnerEu, "100", "h1"))

	_, err := uc.CloseMonth(context.Background(), "2024-03")
	require.NoError(t, err)
	_, err = uc.CloseMonth(context.Background(), "2024-03")
	require.NoError(t, err)

	closings, err := uc.Closings(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Len(t, closings, 4, "every snapshot is kept")

	other, err := uc.Closings(context.Background(), "2024-04")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = uc.Closings(context.Background(), "march")
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}

func TestOpenInstallments_SplitsAndTotalsRemaining(t *testing.T) {
	uc, txRepo, _ := newLedgerFixture(t, nil)

	eu := ledgerTx("t1", "2024-03", domain.OwnerEu, "100", "h1")
	eu.CurrentInstallment = 1
	eu.TotalInstallments = 3

	dinda := ledgerTx("t2", "2024-03", domain.OwnerDinda, "50", "h2")
	dinda.CurrentInstallment = 2
	dinda.TotalInstallments = 3

	dup := ledgerTx("t3", "2024-03", domain.OwnerEu, "100", "h1")
	dup.CurrentInstallment = 1
	dup.TotalInstallments = 3

	txRepo.Seed(eu, dinda, dup)

	report, err := uc.OpenInstallments(context.Background(), "2024-03")
	require.NoError(t, err)

	require.Len(t, report.Eu, 1)
	require.Len(t, report.Dinda, 1)
	assert.True(t, report.RemainingEu.Equal(dec("200")), "remaining eu = %s", report.RemainingEu)
	assert.True(t, report.RemainingDinda.Equal(dec("50")), "remaining dinda = %s", report.RemainingDinda)
}

func TestDeleteMonth_RemovesTransactionsAndInvoice(t *testing.T) {
	uc, txRepo, _ := newLedgerFixture(t, nil)
	txRepo.Seed(
		ledgerTx("t1", "2024-03", domain.OwnerEu, "10", "h1"),
		ledgerTx("t2", "2024-03", domain.OwnerEu, "20", "h2"),
		ledgerTx("t3", "2024-04", domain.OwnerEu, "30", "h3"),
	)

	removed, err := uc.DeleteMonth(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	left, _ := txRepo.List(context.Background())
	require.Len(t, left, 1)
	assert.Equal(t, "2024-04", left[0].ReferenceMonth)
}

func TestUpsertInvoice_StoresMetadata(t *testing.T) {
	invoiceRepo := mocks.NewMockInvoiceRepository()
	uc := usecase.NewLedgerUseCase(
		mocks.NewMockTransactionRepository(),
		mocks.NewMockPaymentRepository(),
		mocks.NewMockWithdrawalRepository(),
		mocks.NewMockClosingRepository(),
		invoiceRepo,
		mocks.NewMockIDGenerator(),
		nil,
		0,
		zerolog.Nop(),
		nil,
	)

	inv, err := uc.UpsertInvoice(context.Background(), "2024-03", "fatura-marco.pdf", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "fatura-marco.pdf", inv.FileName)

	stored, err := invoiceRepo.GetByMonth(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", stored.DueDate)

	_, err = uc.UpsertInvoice(context.Background(), "march", "x.pdf", "")
	require.ErrorIs(t, err, domain.ErrInvalidMonth)

	// Setting only the due date keeps the imported file name.
	inv, err = uc.UpsertInvoice(context.Background(), "2024-03", "", "2024-03-20")
	require.NoError(t, err)
	assert.Equal(t, "fatura-marco.pdf", inv.FileName)
	assert.Equal(t, "2024-03-20", inv.DueDate)
}
