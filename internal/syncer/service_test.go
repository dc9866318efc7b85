package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelhq/gavel/internal/compliance"
	"github.com/gavelhq/gavel/internal/rulestore"
)

// stubCache records SetActiveRules calls and can be scripted to fail the
// first N attempts per court.
type stubCache struct {
	mu       sync.Mutex
	sets     map[string][][]compliance.Rule
	failures map[string]int
}

func newStubCache() *stubCache {
	return &stubCache{
		sets:     make(map[string][][]compliance.Rule),
		failures: make(map[string]int),
	}
}

func (c *stubCache) GetActiveRules(context.Context, string) ([]compliance.Rule, error) {
	return nil, errors.New("not implemented")
}

func (c *stubCache) SetActiveRules(_ context.Context, courtID string, rules []compliance.Rule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures[courtID] > 0 {
		c.failures[courtID]--
		return errors.New("redis unavailable")
	}
	c.sets[courtID] = append(c.sets[courtID], rules)
	return nil
}

func (c *stubCache) Invalidate(context.Context, string) error { return nil }
func (c *stubCache) HealthCheck(context.Context) error        { return nil }
func (c *stubCache) Close() error                             { return nil }

func (c *stubCache) setsFor(courtID string) [][]compliance.Rule {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[courtID]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedRule(t *testing.T, store *rulestore.MemoryStore, courtID, name, status string) {
	t.Helper()
	r := compliance.Rule{
		CourtID:    courtID,
		Name:       name,
		Source:     "local_rule",
		Category:   "filing",
		Priority:   40,
		Status:     status,
		Conditions: json.RawMessage(`[]`),
		Actions:    json.RawMessage(`[]`),
		Triggers:   json.RawMessage(`["case_filed"]`),
	}
	require.NoError(t, store.CreateRule(context.Background(), &r))
}

func TestSyncPropagatesActiveRulesPerCourt(t *testing.T) {
	t.Parallel()

	store := rulestore.NewMemoryStore()
	seedRule(t, store, "district-1", "Rule A", compliance.StatusActive)
	seedRule(t, store, "district-1", "Rule B", compliance.StatusRepealed)
	seedRule(t, store, "district-2", "Rule C", compliance.StatusActive)

	cacheSvc := newStubCache()
	svc := New(discardLogger(), Config{
		Interval:    time.Minute,
		Concurrency: 4,
	}, store, cacheSvc)

	require.NoError(t, svc.Sync(context.Background()))

	// Only Active rules reach the cache.
	d1 := cacheSvc.setsFor("district-1")
	require.Len(t, d1, 1)
	require.Len(t, d1[0], 1)
	assert.Equal(t, "Rule A", d1[0][0].Name)

	d2 := cacheSvc.setsFor("district-2")
	require.Len(t, d2, 1)
	require.Len(t, d2[0], 1)
	assert.Equal(t, "Rule C", d2[0][0].Name)
}

func TestSyncRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	store := rulestore.NewMemoryStore()
	seedRule(t, store, "district-1", "Rule A", compliance.StatusActive)

	cacheSvc := newStubCache()
	cacheSvc.failures["district-1"] = 2

	svc := New(discardLogger(), Config{
		Interval:       time.Minute,
		MaxRetries:     3,
		BaseRetryDelay: time.Millisecond,
		Concurrency:    1,
	}, store, cacheSvc)

	require.NoError(t, svc.Sync(context.Background()))
	assert.Len(t, cacheSvc.setsFor("district-1"), 1)
}

func TestSyncGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	store := rulestore.NewMemoryStore()
	seedRule(t, store, "district-1", "Rule A", compliance.StatusActive)
	seedRule(t, store, "district-2", "Rule B", compliance.StatusActive)

	cacheSvc := newStubCache()
	cacheSvc.failures["district-1"] = 100

	svc := New(discardLogger(), Config{
		Interval:       time.Minute,
		MaxRetries:     1,
		BaseRetryDelay: time.Millisecond,
		Concurrency:    2,
	}, store, cacheSvc)

	// One court failing does not fail the cycle; the other still syncs.
	require.NoError(t, svc.Sync(context.Background()))
	assert.Empty(t, cacheSvc.setsFor("district-1"))
	assert.Len(t, cacheSvc.setsFor("district-2"), 1)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	store := rulestore.NewMemoryStore()
	svc := New(discardLogger(), Config{
		Interval:    time.Second,
		Concurrency: 1,
	}, store, newStubCache())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestNewAppliesSafeDefaults(t *testing.T) {
	t.Parallel()

	svc := New(nil, Config{}, rulestore.NewMemoryStore(), newStubCache())
	assert.Equal(t, 10*time.Second, svc.config.Interval)
	assert.Equal(t, 1, svc.config.Concurrency)
	assert.Equal(t, time.Second, svc.config.BaseRetryDelay)
}

func TestNewPanicsOnNilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		New(discardLogger(), Config{}, nil, newStubCache())
	})
	assert.Panics(t, func() {
		New(discardLogger(), Config{}, rulestore.NewMemoryStore(), nil)
	})
}
