package usecase

import (
	"context"
	"time"

	"github.com/iho/billsplit/internal/domain"
)

// TransactionRepository defines data access for transactions. The store is
// the sole owner of entity state; use cases re-read what they need on every
// invocation and never cache across calls.
//
// Create must report a unique-hash conflict as
// domain.ErrDuplicateTransaction: the core treats it as "already present",
// not as a failure.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	Update(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error)
	UpdateOwnerMany(ctx context.Context, ids []string, owner domain.Owner) error
	Delete(ctx context.Context, id string) error
	DeleteByReferenceMonth(ctx context.Context, month string) (int64, error)
	List(ctx context.Context) ([]*domain.Transaction, error)
	ListByReferenceMonth(ctx context.Context, month string) ([]*domain.Transaction, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Payment, error)
	ListByReferenceMonth(ctx context.Context, month string) ([]*domain.Payment, error)
}

// WithdrawalRepository defines data access for withdrawals.
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *domain.Withdrawal) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Withdrawal, error)
	ListByReferenceMonth(ctx context.Context, month string) ([]*domain.Withdrawal, error)
}

// RuleRepository is the classification-rule collaborator. FindMatch looks
// up the first rule whose pattern is a case-insensitive substring of the
// description, returning domain.ErrRuleNotFound when nothing matches.
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.ClassificationRule) error
	FindMatch(ctx context.Context, description string) (*domain.ClassificationRule, error)
	GetByPattern(ctx context.Context, pattern string) (*domain.ClassificationRule, error)
	List(ctx context.Context) ([]*domain.ClassificationRule, error)
}

// ClosingRepository defines data access for monthly closing snapshots.
type ClosingRepository interface {
	Create(ctx context.Context, closing *domain.MonthlyClosing) error
	ListByMonth(ctx context.Context, month string) ([]*domain.MonthlyClosing, error)
}

// InvoiceRepository defines data access for per-month invoice metadata.
type InvoiceRepository interface {
	Upsert(ctx context.Context, invoice *domain.Invoice) error
	GetByMonth(ctx context.Context, month string) (*domain.Invoice, error)
	DeleteByMonth(ctx context.Context, month string) error
	List(ctx context.Context) ([]*domain.Invoice, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for read-side results.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage for the import endpoint.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
