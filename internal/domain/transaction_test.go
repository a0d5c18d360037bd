package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransaction_Installments(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		total     int
		open      bool
		final     bool
		remaining int
	}{
		{name: "no installment metadata", current: 0, total: 0, open: false, final: false, remaining: 0},
		{name: "open plan", current: 3, total: 10, open: true, final: false, remaining: 7},
		{name: "final installment", current: 10, total: 10, open: false, final: true, remaining: 0},
		{name: "first of two", current: 1, total: 2, open: true, final: false, remaining: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transaction{
				Amount:             decimal.NewFromInt(100),
				CurrentInstallment: tt.current,
				TotalInstallments:  tt.total,
			}

			if got := tx.OpenInstallment(); got != tt.open {
				t.Errorf("OpenInstallment = %v, want %v", got, tt.open)
			}

			if got := tx.FinalInstallment(); got != tt.final {
				t.Errorf("FinalInstallment = %v, want %v", got, tt.final)
			}

			if got := tx.RemainingInstallments(); got != tt.remaining {
				t.Errorf("RemainingInstallments = %d, want %d", got, tt.remaining)
			}
		})
	}
}

func TestTransaction_RemainingAmount(t *testing.T) {
	tx := &Transaction{
		Amount:             decimal.NewFromInt(50),
		CurrentInstallment: 2,
		TotalInstallments:  5,
	}

	if got := tx.RemainingAmount(); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("RemainingAmount = %s, want 150", got)
	}
}

func TestTransaction_DedupKey(t *testing.T) {
	withHash := &Transaction{UniqueHash: "h1", Date: "2024-01-05"}
	if withHash.DedupKey() != "h1" {
		t.Errorf("expected hash to win, got %q", withHash.DedupKey())
	}

	amount, _ := decimal.NewFromString("12.30")
	noHash := &Transaction{Date: "2024-01-05", Amount: amount, Description: "PADARIA"}
	if got := noHash.DedupKey(); got != "2024-01-05_12.3_PADARIA" {
		t.Errorf("DedupKey = %q", got)
	}
}

func TestPayment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		payment Payment
		wantErr error
	}{
		{
			name:    "valid",
			payment: Payment{Payer: OwnerEu, Amount: decimal.NewFromInt(100), ReferenceMonth: "2024-03"},
		},
		{
			name:    "pending payer rejected",
			payment: Payment{Payer: OwnerPending, Amount: decimal.NewFromInt(100), ReferenceMonth: "2024-03"},
			wantErr: ErrInvalidOwner,
		},
		{
			name:    "zero amount",
			payment: Payment{Payer: OwnerDinda, Amount: decimal.Zero, ReferenceMonth: "2024-03"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "bad month",
			payment: Payment{Payer: OwnerDinda, Amount: decimal.NewFromInt(10), ReferenceMonth: "03/2024"},
			wantErr: ErrInvalidMonth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payment.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
