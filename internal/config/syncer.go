package config

import "time"

// SyncerConfig contains configuration for the rule-sync worker service,
// which propagates the active rule set for each court from PostgreSQL into
// the Redis L2 cache on a fixed interval.
type SyncerConfig struct {
	Enabled        bool          `envconfig:"ENABLED" default:"true"`
	Interval       time.Duration `envconfig:"INTERVAL" default:"30s" validate:"gt=0"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"3" validate:"min=0"`
	BaseRetryDelay time.Duration `envconfig:"BASE_RETRY_DELAY" default:"1s"`
	Concurrency    int           `envconfig:"CONCURRENCY" default:"10" validate:"min=1"`
}
