// Package cache provides the two-tier caching layer for active rule sets.
// It abstracts the interaction with the Redis L2 cache, handling
// serialization, key namespacing, and connection management, plus the
// in-process L1 layer in memory.go.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gavelhq/gavel/internal/compliance"
)

// KeyPrefix is the namespace used for active rule set keys in Redis.
// Example: "rules:active:district-9"
const KeyPrefix = "rules:active"

// ErrMiss is returned when a court has no cached rule set.
var ErrMiss = errors.New("cache: miss")

// Service defines the interface for L2 cache operations.
// This interface allows for dependency injection and mocking in tests.
type Service interface {
	// GetActiveRules fetches a court's cached active rule set.
	// Returns ErrMiss when the key is absent.
	GetActiveRules(ctx context.Context, courtID string) ([]compliance.Rule, error)

	// SetActiveRules stores a court's active rule set.
	SetActiveRules(ctx context.Context, courtID string, rules []compliance.Rule) error

	// Invalidate drops a court's cached rule set after a mutation.
	Invalidate(ctx context.Context, courtID string) error

	// HealthCheck pings the redis server to ensure connectivity.
	HealthCheck(ctx context.Context) error

	// Close terminates the connection.
	Close() error
}

// Compile-time check.
var _ Service = (*RedisCache)(nil)

// RedisCache implements Service using the go-redis library. Rule sets are
// stored as JSON arrays under one key per court.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an already-connected Redis client. The TTL bounds
// staleness if the syncer stops refreshing a key.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if client == nil {
		panic("cache: redis client cannot be nil")
	}
	return &RedisCache{client: client, ttl: ttl}
}

func ruleSetKey(courtID string) string {
	return fmt.Sprintf("%s:%s", KeyPrefix, courtID)
}

// GetActiveRules fetches and decodes a court's cached rule set.
func (c *RedisCache) GetActiveRules(ctx context.Context, courtID string) ([]compliance.Rule, error) {
	payload, err := c.client.Get(ctx, ruleSetKey(courtID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get rules for court %q from cache: %w", courtID, err)
	}

	var rules []compliance.Rule
	if err := json.Unmarshal(payload, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode cached rules for court %q: %w", courtID, err)
	}
	return rules, nil
}

// SetActiveRules encodes and stores a court's rule set with the configured TTL.
func (c *RedisCache) SetActiveRules(ctx context.Context, courtID string, rules []compliance.Rule) error {
	payload, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules for court %q: %w", courtID, err)
	}

	if err := c.client.Set(ctx, ruleSetKey(courtID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set rules for court %q in cache: %w", courtID, err)
	}
	return nil
}

// Invalidate drops a court's cached rule set.
func (c *RedisCache) Invalidate(ctx context.Context, courtID string) error {
	if err := c.client.Del(ctx, ruleSetKey(courtID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rules for court %q: %w", courtID, err)
	}
	return nil
}

// HealthCheck verifies the connection to the Redis server.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
