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

// RuleRepository implements usecase.RuleRepository.
type RuleRepository struct {
	pool *pgxpool.Pool
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

// Create inserts a classification rule.
func (r *RuleRepository) Create(ctx context.Context, rule *domain.ClassificationRule) error {
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO classification_rules (id, pattern, suggested_owner, category, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pattern) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		rule.ID,
		rule.Pattern,
		string(rule.SuggestedOwner),
		rule.Category,
		timeToPgTimestamptz(rule.CreatedAt),
	)

	return err
}

// FindMatch returns the oldest rule whose pattern appears in the
// description, case-insensitively.
func (r *RuleRepository) FindMatch(ctx context.Context, description string) (*domain.ClassificationRule, error) {
	query := `
		SELECT id, pattern, suggested_owner, category, created_at
		FROM classification_rules
		WHERE POSITION(LOWER(pattern) IN LOWER($1)) > 0
		ORDER BY created_at
		LIMIT 1
	`

	return r.scanRule(r.pool.QueryRow(ctx, query, description))
}

// GetByPattern returns the rule with the exact pattern, case-insensitively.
func (r *RuleRepository) GetByPattern(ctx context.Context, pattern string) (*domain.ClassificationRule, error) {
	query := `
		SELECT id, pattern, suggested_owner, category, created_at
		FROM classification_rules
		WHERE LOWER(pattern) = LOWER($1)
	`

	return r.scanRule(r.pool.QueryRow(ctx, query, pattern))
}

// List retrieves all rules, oldest first.
func (r *RuleRepository) List(ctx context.Context) ([]*domain.ClassificationRule, error) {
	query := `
		SELECT id, pattern, suggested_owner, category, created_at
		FROM classification_rules
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.ClassificationRule

	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func (r *RuleRepository) scanRule(row pgx.Row) (*domain.ClassificationRule, error) {
	var (
		rule      domain.ClassificationRule
		owner     string
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&rule.ID, &rule.Pattern, &owner, &rule.Category, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRuleNotFound
		}

		return nil, err
	}

	rule.SuggestedOwner = domain.Owner(owner)
	rule.CreatedAt = createdAt.Time

	return &rule, nil
}
