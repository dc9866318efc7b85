// Package syncer implements the background worker that propagates each
// court's active rule set from PostgreSQL (the source of truth) into the
// Redis L2 cache, so evaluation servers rarely touch the database.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gavelhq/gavel/internal/cache"
	"github.com/gavelhq/gavel/internal/observability"
	"github.com/gavelhq/gavel/internal/rulestore"
)

// Config holds the configuration for the Syncer service.
type Config struct {
	// Interval is the duration between sync cycles (polling).
	Interval time.Duration

	// MaxRetries is how many times one court's sync is retried before the
	// cycle gives up on it.
	MaxRetries int

	// BaseRetryDelay seeds the exponential backoff between retries.
	BaseRetryDelay time.Duration

	// Concurrency bounds how many courts sync in parallel.
	Concurrency int
}

// Service orchestrates the synchronization process.
type Service struct {
	logger *slog.Logger
	config Config
	repo   rulestore.RuleRepository
	cache  cache.Service
}

// New creates a new Syncer service.
func New(logger *slog.Logger, cfg Config, repo rulestore.RuleRepository, cacheSvc cache.Service) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	if repo == nil {
		panic("syncer: rule repository cannot be nil")
	}
	if cacheSvc == nil {
		panic("syncer: cache service cannot be nil")
	}

	if cfg.Interval < time.Second {
		cfg.Interval = 10 * time.Second // Safe default
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.BaseRetryDelay <= 0 {
		cfg.BaseRetryDelay = time.Second
	}

	return &Service{
		logger: logger,
		config: cfg,
		repo:   repo,
		cache:  cacheSvc,
	}
}

// Run starts the syncer loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("starting syncer service",
		slog.String("interval", s.config.Interval.String()),
		slog.Int("concurrency", s.config.Concurrency),
	)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run once immediately on startup
	if err := s.Sync(ctx); err != nil {
		s.logger.Error("initial sync failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("syncer service stopping...")
			return nil
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				// We log the error but don't stop the worker.
				// Retry on next tick.
				s.logger.Error("sync cycle failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Sync performs a single synchronization cycle: list the courts with rules,
// then refresh each court's cached rule set through a bounded worker pool.
// A court that keeps failing is skipped until the next cycle; the cycle
// itself only errors when the court listing is unavailable.
func (s *Service) Sync(ctx context.Context) error {
	start := time.Now()
	defer func() {
		observability.SyncerSyncDuration.Observe(time.Since(start).Seconds())
	}()

	courts, err := s.repo.ListCourtIDs(ctx)
	if err != nil {
		return err
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		synced    int
		failed    int
		workQueue = make(chan string)
	)

	for i := 0; i < s.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for court := range workQueue {
				err := s.syncCourt(ctx, court)

				mu.Lock()
				if err != nil {
					failed++
				} else {
					synced++
				}
				mu.Unlock()
			}
		}()
	}

	for _, court := range courts {
		select {
		case <-ctx.Done():
			// Stop feeding work; workers drain and exit.
			close(workQueue)
			wg.Wait()
			return ctx.Err()
		case workQueue <- court:
		}
	}
	close(workQueue)
	wg.Wait()

	if synced > 0 || failed > 0 {
		s.logger.Info("sync cycle completed",
			slog.Int("courts_synced", synced),
			slog.Int("courts_failed", failed),
			slog.String("duration", time.Since(start).String()),
		)
	}
	return nil
}

// syncCourt refreshes one court's cached rule set, retrying transient
// failures with exponential backoff.
func (s *Service) syncCourt(ctx context.Context, courtID string) error {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.config.BaseRetryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				observability.SyncerCourtsTotal.WithLabelValues("fail").Inc()
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = s.refreshCourt(ctx, courtID)
		if lastErr == nil {
			observability.SyncerCourtsTotal.WithLabelValues("success").Inc()
			return nil
		}

		s.logger.Warn("failed to sync court, will retry",
			slog.String("court_id", courtID),
			slog.Int("attempt", attempt+1),
			slog.String("error", lastErr.Error()),
		)
	}

	observability.SyncerCourtsTotal.WithLabelValues("fail").Inc()
	s.logger.Error("giving up on court for this cycle",
		slog.String("court_id", courtID),
		slog.String("error", lastErr.Error()),
	)
	return lastErr
}

func (s *Service) refreshCourt(ctx context.Context, courtID string) error {
	rules, err := s.repo.ListActiveRules(ctx, courtID)
	if err != nil {
		return err
	}
	return s.cache.SetActiveRules(ctx, courtID, rules)
}
