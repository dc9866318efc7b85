package rulestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gavelhq/gavel/internal/compliance"
)

// Compile-time check to verify that PostgresStore implements RuleRepository.
// If the interface changes and the struct doesn't, the build fails here.
var _ RuleRepository = (*PostgresStore)(nil)

// ruleColumns is the canonical column list shared by every SELECT and
// RETURNING clause, so scanRule stays in sync with the queries.
const ruleColumns = `
	id, court_id, name, description, source, category,
	priority, status, jurisdiction, citation,
	effective_date, expiration_date, supersedes_rule_id,
	conditions, actions, triggers, created_at, updated_at`

// PostgresStore is the implementation of RuleRepository backed by PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new repository instance with the given
// connection pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	if db == nil {
		panic("rulestore: database pool cannot be nil")
	}
	return &PostgresStore{db: db}
}

// CreateRule inserts a new rule into the database. It uses the RETURNING
// clause to get the server-generated ID and timestamps efficiently.
func (s *PostgresStore) CreateRule(ctx context.Context, r *compliance.Rule) error {
	query := `
		INSERT INTO rules (
			court_id, name, description, source, category,
			priority, status, jurisdiction, citation,
			effective_date, expiration_date, supersedes_rule_id,
			conditions, actions, triggers
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRow(ctx, query,
		r.CourtID,
		r.Name,
		r.Description,
		r.Source,
		r.Category,
		r.Priority,
		r.Status,
		r.Jurisdiction,
		r.Citation,
		r.EffectiveDate,
		r.ExpirationDate,
		r.SupersedesRuleID,
		r.Conditions,
		r.Actions,
		r.Triggers,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)

	if err != nil {
		// Handle specific database errors explicitly.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// Error Code 23505: unique_violation
			if pgErr.Code == "23505" {
				return fmt.Errorf("rule %q already exists in court %q", r.Name, r.CourtID)
			}
		}
		return fmt.Errorf("failed to insert rule: %w", err)
	}

	return nil
}

// GetRule retrieves one rule by ID within a court.
func (s *PostgresStore) GetRule(ctx context.Context, courtID string, id uuid.UUID) (*compliance.Rule, error) {
	query := `SELECT` + ruleColumns + `
		FROM rules
		WHERE id = $1 AND court_id = $2
	`

	row := s.db.QueryRow(ctx, query, id, courtID)
	r, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return r, nil
}

// ListRules retrieves rules for a court matching the filter.
func (s *PostgresStore) ListRules(ctx context.Context, courtID string, filter ListFilter) ([]compliance.Rule, error) {
	// Filters are appended as numbered predicates so the query stays a
	// single prepared statement per filter combination.
	query := `SELECT` + ruleColumns + ` FROM rules WHERE court_id = $1`
	args := []any{courtID}

	if filter.ActiveOnly {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, compliance.StatusActive)
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, filter.Category)
	}
	if filter.Source != "" {
		query += fmt.Sprintf(" AND source = $%d", len(args)+1)
		args = append(args, filter.Source)
	}
	if filter.Jurisdiction != "" {
		query += fmt.Sprintf(" AND jurisdiction = $%d", len(args)+1)
		args = append(args, filter.Jurisdiction)
	}
	query += " ORDER BY priority DESC, name"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	// Ensure rows are closed to prevent connection leaks in the pool.
	defer rows.Close()

	return collectRules(rows)
}

// ListActiveRules retrieves the Active rules for a court, ordered by
// priority descending then name.
func (s *PostgresStore) ListActiveRules(ctx context.Context, courtID string) ([]compliance.Rule, error) {
	return s.ListRules(ctx, courtID, ListFilter{ActiveOnly: true})
}

// UpdateRule overwrites the stored row and refreshes updated_at.
func (s *PostgresStore) UpdateRule(ctx context.Context, r *compliance.Rule) error {
	query := `
		UPDATE rules SET
			name = $3, description = $4, source = $5, category = $6,
			priority = $7, status = $8, jurisdiction = $9, citation = $10,
			effective_date = $11, expiration_date = $12, supersedes_rule_id = $13,
			conditions = $14, actions = $15, triggers = $16, updated_at = NOW()
		WHERE id = $1 AND court_id = $2
		RETURNING updated_at
	`

	err := s.db.QueryRow(ctx, query,
		r.ID,
		r.CourtID,
		r.Name,
		r.Description,
		r.Source,
		r.Category,
		r.Priority,
		r.Status,
		r.Jurisdiction,
		r.Citation,
		r.EffectiveDate,
		r.ExpirationDate,
		r.SupersedesRuleID,
		r.Conditions,
		r.Actions,
		r.Triggers,
	).Scan(&r.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update rule: %w", err)
	}
	return nil
}

// DeleteRule removes a rule from the database.
func (s *PostgresStore) DeleteRule(ctx context.Context, courtID string, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM rules WHERE id = $1 AND court_id = $2`, id, courtID)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCourtIDs returns the distinct court IDs present in the rules table.
func (s *PostgresStore) ListCourtIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT court_id FROM rules ORDER BY court_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list court ids: %w", err)
	}
	defer rows.Close()

	var courts []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan court id: %w", err)
		}
		courts = append(courts, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return courts, nil
}

func collectRules(rows pgx.Rows) ([]compliance.Rule, error) {
	rules := make([]compliance.Rule, 0, 16)
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		rules = append(rules, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return rules, nil
}

func scanRule(row pgx.Row) (*compliance.Rule, error) {
	var r compliance.Rule
	err := row.Scan(
		&r.ID,
		&r.CourtID,
		&r.Name,
		&r.Description,
		&r.Source,
		&r.Category,
		&r.Priority,
		&r.Status,
		&r.Jurisdiction,
		&r.Citation,
		&r.EffectiveDate,
		&r.ExpirationDate,
		&r.SupersedesRuleID,
		&r.Conditions,
		&r.Actions,
		&r.Triggers,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
