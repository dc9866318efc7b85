//go:build integration

// Package rulestore_test contains integration tests for the Data Access
// Layer. We use the '_test' suffix to enforce black-box testing, ensuring we
// only access the exported API of the rulestore package.
package rulestore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/compliance"
	"github.com/gavelhq/gavel/internal/rulestore"
	"github.com/gavelhq/gavel/internal/testsupport"
)

func baseRule(courtID, name string) *compliance.Rule {
	return &compliance.Rule{
		CourtID:    courtID,
		Name:       name,
		Source:     "local_rule",
		Category:   "filing",
		Priority:   40,
		Status:     compliance.StatusActive,
		Conditions: json.RawMessage(`[{"type":"always"}]`),
		Actions:    json.RawMessage(`[]`),
		Triggers:   json.RawMessage(`["case_filed"]`),
	}
}

// TestPostgresStore_Integration orchestrates the integration tests for the
// repository. It spins up a real PostgreSQL container once and runs
// scenarios against it.
func TestPostgresStore_Integration(t *testing.T) {
	ctx := context.Background()

	// Relative path from 'internal/rulestore' to the 'migrations' folder in root.
	migrationsPath := "../../migrations"

	pgContainer, err := testsupport.StartPostgresContainer(ctx, migrationsPath)
	require.NoError(t, err, "failed to start postgres container")

	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	repo := rulestore.NewPostgresStore(pgContainer.DB)

	// Scenarios run sequentially; they share the same container state.

	t.Run("CreateRule_Success_WithDefaults", func(t *testing.T) {
		rule := baseRule("district-9", "Integration Rule")

		err := repo.CreateRule(ctx, rule)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, rule.ID, "expected DB to assign an ID")
		assert.False(t, rule.CreatedAt.IsZero(), "expected DB to assign CreatedAt")
		assert.False(t, rule.UpdatedAt.IsZero(), "expected DB to assign UpdatedAt")

		// Deep verification: query the DB directly to prove persistence.
		var (
			name     string
			status   string
			triggers []byte
		)
		query := `SELECT name, status, triggers FROM rules WHERE id = $1`
		err = pgContainer.DB.QueryRow(ctx, query, rule.ID).Scan(&name, &status, &triggers)
		require.NoError(t, err)
		assert.Equal(t, "Integration Rule", name)
		assert.Equal(t, compliance.StatusActive, status)
		assert.JSONEq(t, `["case_filed"]`, string(triggers))
	})

	t.Run("CreateRule_DuplicateName_Conflict", func(t *testing.T) {
		dup := baseRule("district-9", "Integration Rule")
		err := repo.CreateRule(ctx, dup)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")

		// Same name in a different court is allowed.
		other := baseRule("district-1", "Integration Rule")
		require.NoError(t, repo.CreateRule(ctx, other))
	})

	t.Run("GetRule_CourtScoping", func(t *testing.T) {
		rule := baseRule("district-9", "Scoped Rule")
		require.NoError(t, repo.CreateRule(ctx, rule))

		found, err := repo.GetRule(ctx, "district-9", rule.ID)
		require.NoError(t, err)
		assert.Equal(t, rule.Name, found.Name)

		_, err = repo.GetRule(ctx, "district-1", rule.ID)
		assert.ErrorIs(t, err, rulestore.ErrNotFound)

		_, err = repo.GetRule(ctx, "district-9", uuid.New())
		assert.ErrorIs(t, err, rulestore.ErrNotFound)
	})

	t.Run("ListRules_OrderingAndFilters", func(t *testing.T) {
		courtID := "district-list"

		low := baseRule(courtID, "Low Priority")
		low.Priority = 10
		require.NoError(t, repo.CreateRule(ctx, low))

		high := baseRule(courtID, "High Priority")
		high.Priority = 50
		high.Category = "fees"
		require.NoError(t, repo.CreateRule(ctx, high))

		repealed := baseRule(courtID, "Repealed Rule")
		repealed.Status = compliance.StatusRepealed
		require.NoError(t, repo.CreateRule(ctx, repealed))

		all, err := repo.ListRules(ctx, courtID, rulestore.ListFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "High Priority", all[0].Name, "priority descending")

		active, err := repo.ListActiveRules(ctx, courtID)
		require.NoError(t, err)
		assert.Len(t, active, 2)

		fees, err := repo.ListRules(ctx, courtID, rulestore.ListFilter{Category: "fees"})
		require.NoError(t, err)
		require.Len(t, fees, 1)
		assert.Equal(t, "High Priority", fees[0].Name)
	})

	t.Run("UpdateRule_RefreshesUpdatedAt", func(t *testing.T) {
		rule := baseRule("district-9", "Updatable Rule")
		require.NoError(t, repo.CreateRule(ctx, rule))
		created := rule.UpdatedAt

		rule.Priority = 55
		rule.Status = compliance.StatusSuperseded
		require.NoError(t, repo.UpdateRule(ctx, rule))
		assert.True(t, rule.UpdatedAt.After(created) || rule.UpdatedAt.Equal(created))

		found, err := repo.GetRule(ctx, "district-9", rule.ID)
		require.NoError(t, err)
		assert.Equal(t, 55, found.Priority)
		assert.Equal(t, compliance.StatusSuperseded, found.Status)

		ghost := baseRule("district-9", "Ghost")
		ghost.ID = uuid.New()
		assert.ErrorIs(t, repo.UpdateRule(ctx, ghost), rulestore.ErrNotFound)
	})

	t.Run("DeleteRule", func(t *testing.T) {
		rule := baseRule("district-9", "Deletable Rule")
		require.NoError(t, repo.CreateRule(ctx, rule))

		require.NoError(t, repo.DeleteRule(ctx, "district-9", rule.ID))
		_, err := repo.GetRule(ctx, "district-9", rule.ID)
		assert.ErrorIs(t, err, rulestore.ErrNotFound)

		assert.ErrorIs(t, repo.DeleteRule(ctx, "district-9", rule.ID), rulestore.ErrNotFound)
	})

	t.Run("ListCourtIDs", func(t *testing.T) {
		courts, err := repo.ListCourtIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, courts, "district-9")
		assert.Contains(t, courts, "district-1")
	})
}
