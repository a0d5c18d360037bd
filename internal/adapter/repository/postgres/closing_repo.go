package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/billsplit/internal/domain"
)

// ClosingRepository implements usecase.ClosingRepository.
type ClosingRepository struct {
	pool *pgxpool.Pool
}

// NewClosingRepository creates a new ClosingRepository.
func NewClosingRepository(pool *pgxpool.Pool) *ClosingRepository {
	return &ClosingRepository{pool: pool}
}

// Create inserts a monthly closing snapshot.
func (r *ClosingRepository) Create(ctx context.Context, closing *domain.MonthlyClosing) error {
	if closing.CreatedAt.IsZero() {
		closing.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO monthly_closings (id, month, party, final_balance, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		closing.ID,
		closing.Month,
		string(closing.Party),
		decimalToNumeric(closing.FinalBalance),
		timeToPgTimestamptz(closing.CreatedAt),
	)

	return err
}

// ListByMonth retrieves a month's closing snapshots, newest first.
func (r *ClosingRepository) ListByMonth(ctx context.Context, month string) ([]*domain.MonthlyClosing, error) {
	query := `
		SELECT id, month, party, final_balance, created_at
		FROM monthly_closings
		WHERE month = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closings []*domain.MonthlyClosing

	for rows.Next() {
		var (
			c         domain.MonthlyClosing
			party     string
			balance   pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(&c.ID, &c.Month, &party, &balance, &createdAt)
		if err != nil {
			return nil, err
		}

		c.Party = domain.Owner(party)
		c.FinalBalance = numericToDecimal(balance)
		c.CreatedAt = createdAt.Time
		closings = append(closings, &c)
	}

	return closings, rows.Err()
}
