package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/billsplit/internal/domain"
	"github.com/iho/billsplit/internal/usecase"
	"github.com/iho/billsplit/internal/usecase/mocks"
)

func newClassifyFixture(t *testing.T) (*usecase.ClassifyUseCase, *mocks.MockTransactionRepository, *mocks.MockRuleRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	txRepo := mocks.NewMockTransactionRepository()
	ruleRepo := mocks.NewMockRuleRepository(ctrl)
	uc := usecase.NewClassifyUseCase(txRepo, ruleRepo, mocks.NewMockIDGenerator(), zerolog.Nop())

	return uc, txRepo, ruleRepo
}

func pendingTx(id, month, desc string) *domain.Transaction {
	return &domain.Transaction{
		ID:             id,
		Date:           month + "-05",
		Description:    desc,
		Amount:         decimal.RequireFromString("10"),
		ReferenceMonth: month,
		Owner:          domain.OwnerPending,
		UniqueHash:     "hash-" + id,
	}
}

func TestClassify_SetsOwnerAndLearnsRule(t *testing.T) {
	uc, txRepo, ruleRepo := newClassifyFixture(t)
	txRepo.Seed(pendingTx("t1", "2024-03", "UBER TRIP"))

	ruleRepo.EXPECT().GetByPattern(gomock.Any(), "UBER TRIP").
		Return(nil, domain.ErrRuleNotFound)
	ruleRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rule *domain.ClassificationRule) error {
			if rule.Pattern != "UBER TRIP" || rule.SuggestedOwner != domain.OwnerEu {
				t.Errorf("learned rule = %+v", rule)
			}
			return nil
		})

	updated, err := uc.Classify(context.Background(), usecase.ClassifyInput{
		TransactionID: "t1",
		Owner:         domain.OwnerEu,
		Category:      "transporte",
		Learn:         true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if updated.Owner != domain.OwnerEu || updated.Category != "transporte" {
		t.Errorf("owner/category = %s/%s", updated.Owner, updated.Category)
	}
}

func TestClassify_ExistingRuleNotDuplicated(t *testing.T) {
	uc, txRepo, ruleRepo := newClassifyFixture(t)
	txRepo.Seed(pendingTx("t1", "2024-03", "UBER TRIP"))

	ruleRepo.EXPECT().GetByPattern(gomock.Any(), "UBER TRIP").
		Return(&domain.ClassificationRule{Pattern: "UBER TRIP", SuggestedOwner: domain.OwnerEu}, nil)
	// No Create expected.

	if _, err := uc.Classify(context.Background(), usecase.ClassifyInput{
		TransactionID: "t1",
		Owner:         domain.OwnerEu,
		Learn:         true,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestClassify_WithoutLearnSkipsRules(t *testing.T) {
	uc, txRepo, _ := newClassifyFixture(t)
	txRepo.Seed(pendingTx("t1", "2024-03", "UBER TRIP"))

	// Rule repo must stay untouched; gomock fails on unexpected calls.
	if _, err := uc.Classify(context.Background(), usecase.ClassifyInput{
		TransactionID: "t1",
		Owner:         domain.OwnerDinda,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestClassify_UnknownTransaction(t *testing.T) {
	uc, _, _ := newClassifyFixture(t)

	_, err := uc.Classify(context.Background(), usecase.ClassifyInput{
		TransactionID: "missing",
		Owner:         domain.OwnerEu,
	})
	if err != domain.ErrTransactionNotFound {
		t.Errorf("err = %v, want ErrTransactionNotFound", err)
	}
}

func TestClassify_RejectsUnknownOwner(t *testing.T) {
	uc, _, _ := newClassifyFixture(t)

	_, err := uc.Classify(context.Background(), usecase.ClassifyInput{
		TransactionID: "t1",
		Owner:         domain.Owner("mae"),
	})
	if err != domain.ErrInvalidOwner {
		t.Errorf("err = %v, want ErrInvalidOwner", err)
	}
}

func TestClassifyPending_BulkAssignsOnlyPending(t *testing.T) {
	uc, txRepo, _ := newClassifyFixture(t)

	classified := pendingTx("t3", "2024-03", "MERCADO")
	classified.Owner = domain.OwnerDinda

	txRepo.Seed(
		pendingTx("t1", "2024-03", "PADARIA"),
		pendingTx("t2", "2024-03", "POSTO"),
		classified,
		pendingTx("t4", "2024-04", "FARMACIA"),
	)

	count, err := uc.ClassifyPending(context.Background(), "2024-03", domain.OwnerEu)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	march, _ := txRepo.ListByReferenceMonth(context.Background(), "2024-03")
	for _, tx := range march {
		if tx.ID == "t3" && tx.Owner != domain.OwnerDinda {
			t.Errorf("t3 owner = %s, want untouched dinda", tx.Owner)
		}
		if (tx.ID == "t1" || tx.ID == "t2") && tx.Owner != domain.OwnerEu {
			t.Errorf("%s owner = %s, want eu", tx.ID, tx.Owner)
		}
	}

	april, _ := txRepo.ListByReferenceMonth(context.Background(), "2024-04")
	if april[0].Owner != domain.OwnerPending {
		t.Errorf("other month reclassified: %s", april[0].Owner)
	}
}

func TestClassifyPending_RejectsPendingAsTarget(t *testing.T) {
	uc, _, _ := newClassifyFixture(t)

	if _, err := uc.ClassifyPending(context.Background(), "2024-03", domain.OwnerPending); err != domain.ErrInvalidOwner {
		t.Errorf("err = %v, want ErrInvalidOwner", err)
	}
}
