package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/billsplit/internal/domain"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO payments (id, date, amount, payer, reference_month, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.Date,
		decimalToNumeric(payment.Amount),
		string(payment.Payer),
		payment.ReferenceMonth,
		payment.Note,
		timeToPgTimestamptz(payment.CreatedAt),
	)

	return err
}

// Delete removes a payment by ID.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// List retrieves all payments ordered by month, then date.
func (r *PaymentRepository) List(ctx context.Context) ([]*domain.Payment, error) {
	query := `
		SELECT id, date, amount, payer, reference_month, note, created_at
		FROM payments
		ORDER BY reference_month, date, created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

// ListByReferenceMonth retrieves one month's payments.
func (r *PaymentRepository) ListByReferenceMonth(ctx context.Context, month string) ([]*domain.Payment, error) {
	query := `
		SELECT id, date, amount, payer, reference_month, note, created_at
		FROM payments
		WHERE reference_month = $1
		ORDER BY date, created_at
	`

	rows, err := r.pool.Query(ctx, query, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

func collectPayments(rows pgx.Rows) ([]*domain.Payment, error) {
	var payments []*domain.Payment

	for rows.Next() {
		var (
			p         domain.Payment
			payer     string
			amount    pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(&p.ID, &p.Date, &amount, &payer, &p.ReferenceMonth, &p.Note, &createdAt)
		if err != nil {
			return nil, err
		}

		p.Payer = domain.Owner(payer)
		p.Amount = numericToDecimal(amount)
		p.CreatedAt = createdAt.Time
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}
