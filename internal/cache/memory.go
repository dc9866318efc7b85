package cache

import (
	"time"

	"github.com/maypok86/otter"

	"github.com/gavelhq/gavel/internal/compliance"
	"github.com/gavelhq/gavel/internal/observability"
)

// MemoryCache is the L1 caching layer: the active rule set per court, held
// in-process behind a high-performance S3-FIFO cache (otter). A hit here
// skips both Redis and PostgreSQL on the evaluation hot path.
type MemoryCache struct {
	store otter.Cache[string, []compliance.Rule]
}

// NewMemoryCache initializes the in-memory cache with strict limits.
// capacity: Max number of court entries (hard cap to prevent OOM).
// ttl: Time-To-Live for entries (safety net for eventual consistency).
func NewMemoryCache(capacity int, ttl time.Duration) (*MemoryCache, error) {
	builder := otter.MustBuilder[string, []compliance.Rule](capacity).
		WithTTL(ttl)

	cache, err := builder.Build()
	if err != nil {
		return nil, err
	}

	return &MemoryCache{store: cache}, nil
}

// Get retrieves a court's active rule set from memory.
// Returns the rules and a boolean indicating if they were found.
func (c *MemoryCache) Get(courtID string) ([]compliance.Rule, bool) {
	rules, ok := c.store.Get(courtID)
	if ok {
		observability.CacheL1Hits.Inc()
	} else {
		observability.CacheL1Misses.Inc()
	}
	return rules, ok
}

// Set adds or updates a court's rule set in memory.
// The TTL configured in NewMemoryCache is applied automatically.
func (c *MemoryCache) Set(courtID string, rules []compliance.Rule) {
	c.store.Set(courtID, rules)
	observability.CacheL1Items.Set(float64(c.store.Size()))
}

// Del removes a court's rule set from memory.
// Used when a rule mutation invalidates the court's cached set.
func (c *MemoryCache) Del(courtID string) {
	c.store.Delete(courtID)
	observability.CacheL1Items.Set(float64(c.store.Size()))
}

// Close gracefully shuts down the cache and its background cleanup goroutines.
func (c *MemoryCache) Close() {
	c.store.Close()
}
