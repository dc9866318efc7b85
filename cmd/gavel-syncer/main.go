// gavel-syncer is the background worker that keeps the Redis L2 cache in
// step with PostgreSQL: every interval it refreshes each court's active
// rule set so evaluation servers read warm keys.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gavelhq/gavel/internal/cache"
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/database"
	"github.com/gavelhq/gavel/internal/logger"
	"github.com/gavelhq/gavel/internal/observability"
	"github.com/gavelhq/gavel/internal/rulestore"
	"github.com/gavelhq/gavel/internal/syncer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gavel-syncer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(&cfg.App)
	slog.SetDefault(log)
	cfg.LogConfig(log)

	if !cfg.Syncer.Enabled {
		log.Warn("syncer is disabled by configuration; exiting")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	pool, err := database.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := cache.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	redisCache := cache.NewRedisCache(redisClient, cfg.Cache.L2TTL)
	defer redisCache.Close()

	obs := observability.NewServer(log, &cfg.Observability,
		database.NewHealthChecker(pool),
		cache.NewHealthChecker(redisClient),
	)
	obs.Start()

	svc := syncer.New(log, syncer.Config{
		Interval:       cfg.Syncer.Interval,
		MaxRetries:     cfg.Syncer.MaxRetries,
		BaseRetryDelay: cfg.Syncer.BaseRetryDelay,
		Concurrency:    cfg.Syncer.Concurrency,
	}, rulestore.NewPostgresStore(pool), redisCache)

	// Run blocks until the context is cancelled by a signal.
	if err := svc.Run(ctx); err != nil {
		return fmt.Errorf("syncer failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("observability server shutdown failed", slog.String("error", err.Error()))
	}

	log.Info("gavel-syncer stopped")
	return nil
}
