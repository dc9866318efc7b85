// gavel-server is the rule-management and evaluation API. It serves the
// court-scoped REST endpoints, backed by PostgreSQL with a two-tier rule
// cache (in-process + Redis) on the evaluation hot path.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gavelhq/gavel/internal/api"
	"github.com/gavelhq/gavel/internal/cache"
	"github.com/gavelhq/gavel/internal/compliance"
	"github.com/gavelhq/gavel/internal/config"
	"github.com/gavelhq/gavel/internal/database"
	"github.com/gavelhq/gavel/internal/logger"
	"github.com/gavelhq/gavel/internal/observability"
	"github.com/gavelhq/gavel/internal/rulestore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gavel-server: %v\n", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	// --- PostgreSQL (source of truth) ---
	pool, err := database.NewPostgresPool(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	repo := rulestore.NewPostgresStore(pool)

	checkers := []observability.Checker{database.NewHealthChecker(pool)}

	// --- Redis L2 cache (optional; the API degrades to DB reads without it) ---
	var l2 cache.Service
	if cfg.Redis.IsConfigured() {
		redisClient, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisCache := cache.NewRedisCache(redisClient, cfg.Cache.L2TTL)
		defer redisCache.Close()

		l2 = redisCache
		checkers = append(checkers, cache.NewHealthChecker(redisClient))
	} else {
		log.Warn("redis is not configured; running without the L2 rule cache")
	}

	// --- L1 in-process cache ---
	l1, err := cache.NewMemoryCache(cfg.Cache.L1Capacity, cfg.Cache.L1TTL)
	if err != nil {
		return fmt.Errorf("failed to initialize l1 cache: %w", err)
	}
	defer l1.Close()

	// --- API ---
	engine := compliance.NewEngine(log)
	app := api.NewAPI(repo, l1, l2, engine)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           app.Router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	// --- Observability (separate admin port) ---
	obs := observability.NewServer(log, &cfg.Observability, checkers...)
	obs.Start()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting api server",
			slog.String("addr", server.Addr),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		var err error
		if cfg.Server.TLSEnabled {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("api server shutdown failed", slog.String("error", err.Error()))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("observability server shutdown failed", slog.String("error", err.Error()))
	}

	log.Info("gavel-server stopped")
	return nil
}
