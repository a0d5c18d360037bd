package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/billsplit/internal/domain"
)

// WithdrawalRepository implements usecase.WithdrawalRepository.
type WithdrawalRepository struct {
	pool *pgxpool.Pool
}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository(pool *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{pool: pool}
}

// Create inserts a withdrawal.
func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *domain.Withdrawal) error {
	if withdrawal.CreatedAt.IsZero() {
		withdrawal.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO withdrawals (id, date, amount, taker, reference_month, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		withdrawal.ID,
		withdrawal.Date,
		decimalToNumeric(withdrawal.Amount),
		string(withdrawal.Taker),
		withdrawal.ReferenceMonth,
		withdrawal.Note,
		timeToPgTimestamptz(withdrawal.CreatedAt),
	)

	return err
}

// Delete removes a withdrawal by ID.
func (r *WithdrawalRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM withdrawals WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrWithdrawalNotFound
	}

	return nil
}

// List retrieves all withdrawals ordered by month, then date.
func (r *WithdrawalRepository) List(ctx context.Context) ([]*domain.Withdrawal, error) {
	query := `
		SELECT id, date, amount, taker, reference_month, note, created_at
		FROM withdrawals
		ORDER BY reference_month, date, created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWithdrawals(rows)
}

// ListByReferenceMonth retrieves one month's withdrawals.
func (r *WithdrawalRepository) ListByReferenceMonth(ctx context.Context, month string) ([]*domain.Withdrawal, error) {
	query := `
		SELECT id, date, amount, taker, reference_month, note, created_at
		FROM withdrawals
		WHERE reference_month = $1
		ORDER BY date, created_at
	`

	rows, err := r.pool.Query(ctx, query, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWithdrawals(rows)
}

func collectWithdrawals(rows pgx.Rows) ([]*domain.Withdrawal, error) {
	var withdrawals []*domain.Withdrawal

	for rows.Next() {
		var (
			w         domain.Withdrawal
			taker     string
			amount    pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(&w.ID, &w.Date, &amount, &taker, &w.ReferenceMonth, &w.Note, &createdAt)
		if err != nil {
			return nil, err
		}

		w.Taker = domain.Owner(taker)
		w.Amount = numericToDecimal(amount)
		w.CreatedAt = createdAt.Time
		withdrawals = append(withdrawals, &w)
	}

	return withdrawals, rows.Err()
}
