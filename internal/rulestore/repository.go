// Package rulestore provides the Data Access Layer (Repository) for
// procedural rules. It handles all direct interactions with the PostgreSQL
// database using the pgx driver, plus an in-memory implementation for tests
// and embedded use.
package rulestore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/compliance"
)

// ErrNotFound is returned when a rule lookup matches no row.
var ErrNotFound = errors.New("rulestore: rule not found")

// ListFilter narrows a rule listing. Zero-value fields are not applied.
type ListFilter struct {
	Category     string
	Source       string
	Jurisdiction string
	ActiveOnly   bool
}

// RuleRepository defines the interface for rule persistence operations.
// Using an interface allows for dependency injection and easier mocking in
// tests. All rules are scoped to a court; there are no cross-court reads.
type RuleRepository interface {
	// CreateRule inserts a new rule and populates the ID and timestamps
	// in the struct.
	CreateRule(ctx context.Context, r *compliance.Rule) error

	// GetRule retrieves one rule by ID within a court. Returns ErrNotFound
	// if no row matches.
	GetRule(ctx context.Context, courtID string, id uuid.UUID) (*compliance.Rule, error)

	// ListRules retrieves rules for a court matching the filter, ordered by
	// priority descending then name (deterministic).
	ListRules(ctx context.Context, courtID string, filter ListFilter) ([]compliance.Rule, error)

	// ListActiveRules retrieves the Active rules for a court, the set the
	// evaluation engine runs against.
	ListActiveRules(ctx context.Context, courtID string) ([]compliance.Rule, error)

	// UpdateRule overwrites the stored row for r.ID within its court and
	// refreshes UpdatedAt. Returns ErrNotFound if no row matches.
	UpdateRule(ctx context.Context, r *compliance.Rule) error

	// DeleteRule removes a rule. Returns ErrNotFound if no row matches.
	DeleteRule(ctx context.Context, courtID string, id uuid.UUID) error

	// ListCourtIDs returns the distinct court IDs that have at least one
	// rule. Used by the syncer to know which cache keys to refresh.
	ListCourtIDs(ctx context.Context) ([]string, error)
}
