package rulestore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/compliance"
)

func newRule(courtID, name string, priority int, status string) *compliance.Rule {
	return &compliance.Rule{
		CourtID:    courtID,
		Name:       name,
		Source:     "local_rule",
		Category:   "filing",
		Priority:   priority,
		Status:     status,
		Conditions: json.RawMessage(`[]`),
		Actions:    json.RawMessage(`[]`),
		Triggers:   json.RawMessage(`["case_filed"]`),
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	r := newRule("district-9", "Local Rule 5.2", 40, compliance.StatusActive)
	require.NoError(t, store.CreateRule(ctx, r))
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	got, err := store.GetRule(ctx, "district-9", r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Local Rule 5.2", got.Name)

	// Court scoping: the same ID in another court is invisible.
	_, err = store.GetRule(ctx, "district-2", r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetRule(ctx, "district-9", uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListRules(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateRule(ctx, newRule("district-9", "B statute", 10, compliance.StatusActive)))
	require.NoError(t, store.CreateRule(ctx, newRule("district-9", "A standing order", 50, compliance.StatusActive)))
	require.NoError(t, store.CreateRule(ctx, newRule("district-9", "Repealed order", 50, compliance.StatusRepealed)))
	require.NoError(t, store.CreateRule(ctx, newRule("district-2", "Other court", 40, compliance.StatusActive)))

	all, err := store.ListRules(ctx, "district-9", ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Priority descending, then name.
	assert.Equal(t, "A standing order", all[0].Name)
	assert.Equal(t, "Repealed order", all[1].Name)
	assert.Equal(t, "B statute", all[2].Name)

	active, err := store.ListActiveRules(ctx, "district-9")
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "A standing order", active[0].Name)
	assert.Equal(t, "B statute", active[1].Name)
}

func TestMemoryStore_ListRulesFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	feeRule := newRule("district-9", "Fee schedule", 30, compliance.StatusActive)
	feeRule.Category = "fees"
	require.NoError(t, store.CreateRule(ctx, feeRule))

	scoped := newRule("district-9", "Division rule", 40, compliance.StatusActive)
	j := "eastern"
	scoped.Jurisdiction = &j
	require.NoError(t, store.CreateRule(ctx, scoped))

	byCategory, err := store.ListRules(ctx, "district-9", ListFilter{Category: "fees"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Fee schedule", byCategory[0].Name)

	byJurisdiction, err := store.ListRules(ctx, "district-9", ListFilter{Jurisdiction: "eastern"})
	require.NoError(t, err)
	require.Len(t, byJurisdiction, 1)
	assert.Equal(t, "Division rule", byJurisdiction[0].Name)

	none, err := store.ListRules(ctx, "district-9", ListFilter{Source: "statute"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_UpdateRule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	r := newRule("district-9", "Local Rule 5.2", 40, compliance.StatusActive)
	require.NoError(t, store.CreateRule(ctx, r))
	created := r.CreatedAt

	r.Status = compliance.StatusSuperseded
	require.NoError(t, store.UpdateRule(ctx, r))
	assert.Equal(t, created, r.CreatedAt)

	got, err := store.GetRule(ctx, "district-9", r.ID)
	require.NoError(t, err)
	assert.Equal(t, compliance.StatusSuperseded, got.Status)

	missing := newRule("district-9", "ghost", 10, compliance.StatusActive)
	missing.ID = uuid.New()
	assert.ErrorIs(t, store.UpdateRule(ctx, missing), ErrNotFound)
}

func TestMemoryStore_DeleteRule(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	r := newRule("district-9", "Local Rule 5.2", 40, compliance.StatusActive)
	require.NoError(t, store.CreateRule(ctx, r))

	assert.ErrorIs(t, store.DeleteRule(ctx, "district-2", r.ID), ErrNotFound)
	require.NoError(t, store.DeleteRule(ctx, "district-9", r.ID))

	_, err := store.GetRule(ctx, "district-9", r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ListCourtIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.CreateRule(ctx, newRule("district-9", "a", 10, compliance.StatusActive)))
	require.NoError(t, store.CreateRule(ctx, newRule("district-2", "b", 10, compliance.StatusActive)))
	require.NoError(t, store.CreateRule(ctx, newRule("district-9", "c", 10, compliance.StatusActive)))

	courts, err := store.ListCourtIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"district-2", "district-9"}, courts)
}
