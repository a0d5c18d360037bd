package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/billsplit/internal/domain"
)

const pgErrUniqueViolation = "23505"

const transactionColumns = `
	id, date, description, amount, current_installment, total_installments,
	reference_month, owner, category, unique_hash, source_file,
	created_at, updated_at
`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool    *pgxpool.Pool
	retrier *Retrier
}

// NewTransactionRepository creates a new TransactionRepository. Bulk
// writes retry on deadlock since imports and maintenance runs can touch
// the same months concurrently.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool, retrier: NewRetrier(zerolog.Nop())}
}

// WithRetrier replaces the default retrier, mainly to attach a logger.
func (r *TransactionRepository) WithRetrier(retrier *Retrier) *TransactionRepository {
	r.retrier = retrier
	return r
}

// Create inserts a transaction. A unique-hash conflict is reported as
// domain.ErrDuplicateTransaction.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.Date,
		tx.Description,
		decimalToNumeric(tx.Amount),
		tx.CurrentInstallment,
		tx.TotalInstallments,
		tx.ReferenceMonth,
		string(tx.Owner),
		tx.Category,
		tx.UniqueHash,
		tx.SourceFile,
		timeToPgTimestamptz(tx.CreatedAt),
		timeToPgTimestamptz(tx.UpdatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicateTransaction
		}

		return err
	}

	return nil
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return tx, nil
}

// Update applies a partial update and returns the updated row.
func (r *TransactionRepository) Update(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	sets := []string{}
	args := []any{}
	argPos := 1

	set := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if patch.Date != nil {
		set("date", *patch.Date)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.UniqueHash != nil {
		set("unique_hash", *patch.UniqueHash)
	}
	if patch.Owner != nil {
		set("owner", string(*patch.Owner))
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}

	set("updated_at", timeToPgTimestamptz(time.Now().UTC()))

	query := fmt.Sprintf(
		`UPDATE transactions SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argPos, transactionColumns,
	)
	args = append(args, id)

	row := r.pool.QueryRow(ctx, query, args...)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return tx, nil
}

// UpdateOwnerMany reassigns the owner of many transactions at once.
func (r *TransactionRepository) UpdateOwnerMany(ctx context.Context, ids []string, owner domain.Owner) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE transactions SET owner = $1, updated_at = $2 WHERE id = ANY($3)`

	return r.retrier.Retry(ctx, func() error {
		_, err := r.pool.Exec(ctx, query, string(owner), timeToPgTimestamptz(time.Now().UTC()), ids)
		return err
	})
}

// Delete removes a transaction by ID.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// DeleteByReferenceMonth removes every transaction of a month and returns
// how many were deleted.
func (r *TransactionRepository) DeleteByReferenceMonth(ctx context.Context, month string) (int64, error) {
	var removed int64

	err := r.retrier.Retry(ctx, func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE reference_month = $1`, month)
		if err != nil {
			return err
		}

		removed = tag.RowsAffected()
		return nil
	})

	return removed, err
}

// List retrieves all transactions ordered by month, then date.
func (r *TransactionRepository) List(ctx context.Context) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY reference_month, date, created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByReferenceMonth retrieves one month's transactions ordered by date.
func (r *TransactionRepository) ListByReferenceMonth(ctx context.Context, month string) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE reference_month = $1
		ORDER BY date, created_at
	`

	rows, err := r.pool.Query(ctx, query, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx        domain.Transaction
		owner     string
		amount    pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&tx.ID,
		&tx.Date,
		&tx.Description,
		&amount,
		&tx.CurrentInstallment,
		&tx.TotalInstallments,
		&tx.ReferenceMonth,
		&owner,
		&tx.Category,
		&tx.UniqueHash,
		&tx.SourceFile,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Owner = domain.Owner(owner)
	tx.Amount = numericToDecimal(amount)
	tx.CreatedAt = createdAt.Time
	tx.UpdatedAt = updatedAt.Time

	return &tx, nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
