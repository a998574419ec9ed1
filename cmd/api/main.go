// Copyright (c) 2026 Noveris. All rights reserved.

// Command api is the entry point for the Noveris HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and handlers.
//  7. Start the view purge worker.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noveris/noveris/internal/api"
	"github.com/noveris/noveris/internal/core/chapter"
	"github.com/noveris/noveris/internal/core/novel"
	"github.com/noveris/noveris/internal/library"
	"github.com/noveris/noveris/internal/platform/config"
	"github.com/noveris/noveris/internal/platform/constants"
	"github.com/noveris/noveris/internal/platform/metrics"
	"github.com/noveris/noveris/internal/platform/migration"
	pgstore "github.com/noveris/noveris/internal/platform/postgres"
	redisstore "github.com/noveris/noveris/internal/platform/redis"
	"github.com/noveris/noveris/internal/platform/sec"
	"github.com/noveris/noveris/internal/social/comment"
	"github.com/noveris/noveris/internal/stats/aggregate"
	"github.com/noveris/noveris/internal/stats/lifecycle"
	"github.com/noveris/noveris/internal/stats/reconcile"
	"github.com/noveris/noveris/internal/stats/view"
	"github.com/noveris/noveris/internal/users/account"
	"github.com/noveris/noveris/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialized first so subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", "noveris"))
	slog.SetDefault(log)

	log.Info("[Noveris] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "noveris"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Duration("view_window", cfg.ViewWindow),
	)

	// Root context for startup. A 30s deadline catches misconfiguration
	// quickly instead of hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Platform Services ──────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	// Repositories.
	userRepository := auth.NewUserRepository(pool)
	sessionRepository := auth.NewSessionRepository(pool)
	resetRepository := auth.NewResetTokenRepository(rdb)
	verifyRepository := auth.NewVerificationTokenRepository(rdb)
	novelRepository := novel.NewRepository(pool)
	chapterRepository := chapter.NewRepository(pool)
	aggregateRepository := aggregate.NewRepository(pool)
	viewStore := view.NewStore(pool)
	libraryRepository := library.NewRepository(pool)
	commentRepository := comment.NewRepository(pool)
	accountStats := account.NewStatsRepository(pool)
	accountSessions := account.NewSessionRepository(pool)
	reconcileStore := reconcile.NewStore(pool)

	// Statistics spine: recomputer, lifecycle coordinator, view pipeline.
	aggregateService := aggregate.NewService(aggregateRepository, log)
	coordinator := lifecycle.NewCoordinator(chapterRepository, novelRepository, aggregateService, collector, log)
	viewService := view.NewService(viewStore, chapterRepository, aggregateService, novelRepository, collector, cfg.ViewWindow, log)
	reconcileService := reconcile.NewService(reconcileStore, coordinator, log)

	// Content and community services.
	authService := auth.NewService(userRepository, sessionRepository, resetRepository, verifyRepository, jwtSvc, log)
	novelService := novel.NewService(novelRepository, chapterRepository, coordinator, log)
	chapterService := chapter.NewService(chapterRepository, novelRepository, coordinator, log)
	libraryService := library.NewService(libraryRepository, novelRepository, log)
	commentService := comment.NewService(commentRepository, novelRepository, chapterRepository, log)
	accountService := account.NewService(userRepository, accountStats, accountSessions, novelService, log)

	// ── 8. View Purge Worker ──────────────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	purgeWorker := view.NewPurgeWorker(viewStore, cfg.ViewPurgeInterval, cfg.ViewWindow+constants.ViewPurgeSlack, log)
	go purgeWorker.Run(workerCtx)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService),
		Account:   account.NewHandler(accountService),
		Novel:     novel.NewHandler(novelService),
		Chapter:   chapter.NewHandler(chapterService, viewService, libraryService),
		Library:   library.NewHandler(libraryService),
		Comment:   comment.NewHandler(commentService),
		Reconcile: reconcile.NewHandler(reconcileService),
	}

	server := api.NewServer(workerCtx, cfg, log, jwtSvc, registry, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	workerCancel()

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is
// non-nil. Limited to startup wiring; after startup every error is returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
