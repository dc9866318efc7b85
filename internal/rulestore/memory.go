package rulestore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gavelhq/gavel/internal/compliance"
)

var _ RuleRepository = (*MemoryStore)(nil)

// MemoryStore is an in-memory RuleRepository for tests and single-process
// deployments. It mirrors the Postgres implementation's semantics: court
// scoping, ErrNotFound, and priority-then-name ordering.
type MemoryStore struct {
	mu    sync.RWMutex
	rules map[uuid.UUID]compliance.Rule
}

// NewMemoryStore creates an empty in-memory repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rules: make(map[uuid.UUID]compliance.Rule)}
}

// CreateRule stores a copy of the rule, assigning an ID and timestamps.
func (s *MemoryStore) CreateRule(_ context.Context, r *compliance.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	r.ID = uuid.New()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.rules[r.ID] = *r
	return nil
}

// GetRule retrieves one rule by ID within a court.
func (s *MemoryStore) GetRule(_ context.Context, courtID string, id uuid.UUID) (*compliance.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rules[id]
	if !ok || r.CourtID != courtID {
		return nil, ErrNotFound
	}
	out := r
	return &out, nil
}

// ListRules retrieves rules for a court matching the filter.
func (s *MemoryStore) ListRules(_ context.Context, courtID string, filter ListFilter) ([]compliance.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := make([]compliance.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.CourtID != courtID {
			continue
		}
		if filter.ActiveOnly && r.Status != compliance.StatusActive {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.Source != "" && r.Source != filter.Source {
			continue
		}
		if filter.Jurisdiction != "" && (r.Jurisdiction == nil || *r.Jurisdiction != filter.Jurisdiction) {
			continue
		}
		selected = append(selected, r)
	}

	sort.Slice(selected, func(i, j int) bool {
		if selected[i].Priority != selected[j].Priority {
			return selected[i].Priority > selected[j].Priority
		}
		return strings.Compare(selected[i].Name, selected[j].Name) < 0
	})
	return selected, nil
}

// ListActiveRules retrieves the Active rules for a court.
func (s *MemoryStore) ListActiveRules(ctx context.Context, courtID string) ([]compliance.Rule, error) {
	return s.ListRules(ctx, courtID, ListFilter{ActiveOnly: true})
}

// UpdateRule overwrites the stored rule and refreshes UpdatedAt.
func (s *MemoryStore) UpdateRule(_ context.Context, r *compliance.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rules[r.ID]
	if !ok || existing.CourtID != r.CourtID {
		return ErrNotFound
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now().UTC()
	s.rules[r.ID] = *r
	return nil
}

// DeleteRule removes a rule.
func (s *MemoryStore) DeleteRule(_ context.Context, courtID string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rules[id]
	if !ok || r.CourtID != courtID {
		return ErrNotFound
	}
	delete(s.rules, id)
	return nil
}

// ListCourtIDs returns the distinct court IDs with at least one rule.
func (s *MemoryStore) ListCourtIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.rules {
		seen[r.CourtID] = struct{}{}
	}
	courts := make([]string, 0, len(seen))
	for id := range seen {
		courts = append(courts, id)
	}
	sort.Strings(courts)
	return courts, nil
}
