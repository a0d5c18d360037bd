package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/billsplit/internal/domain"
)

// InvoiceRepository implements usecase.InvoiceRepository. Invoices are
// keyed by month: re-importing a month replaces its metadata.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

// Upsert inserts or replaces a month's invoice metadata.
func (r *InvoiceRepository) Upsert(ctx context.Context, invoice *domain.Invoice) error {
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now

	query := `
		INSERT INTO invoices (reference_month, file_name, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (reference_month) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			due_date = EXCLUDED.due_date,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		invoice.ReferenceMonth,
		invoice.FileName,
		invoice.DueDate,
		timeToPgTimestamptz(invoice.CreatedAt),
		timeToPgTimestamptz(invoice.UpdatedAt),
	)

	return err
}

// GetByMonth retrieves a month's invoice metadata.
func (r *InvoiceRepository) GetByMonth(ctx context.Context, month string) (*domain.Invoice, error) {
	query := `
		SELECT reference_month, file_name, due_date, created_at, updated_at
		FROM invoices
		WHERE reference_month = $1
	`

	var (
		invoice   domain.Invoice
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, query, month).Scan(
		&invoice.ReferenceMonth,
		&invoice.FileName,
		&invoice.DueDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}

		return nil, err
	}

	invoice.CreatedAt = createdAt.Time
	invoice.UpdatedAt = updatedAt.Time

	return &invoice, nil
}

// DeleteByMonth removes a month's invoice metadata.
func (r *InvoiceRepository) DeleteByMonth(ctx context.Context, month string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE reference_month = $1`, month)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}

	return nil
}

// List retrieves all invoice metadata, newest month first.
func (r *InvoiceRepository) List(ctx context.Context) ([]*domain.Invoice, error) {
	query := `
		SELECT reference_month, file_name, due_date, created_at, updated_at
		FROM invoices
		ORDER BY reference_month DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*domain.Invoice

	for rows.Next() {
		var (
			invoice   domain.Invoice
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)

		err := rows.Scan(&invoice.ReferenceMonth, &invoice.FileName, &invoice.DueDate, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}

		invoice.CreatedAt = createdAt.Time
		invoice.UpdatedAt = updatedAt.Time
		invoices = append(invoices, &invoice)
	}

	return invoices, rows.Err()
}
