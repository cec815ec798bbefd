// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

// Command api is the entry point for the Lantern authentication API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL and run migrations, if configured.
//  4. Connect to Redis, if configured.
//  5. Wire the user directory and volatile repositories.
//  6. Start HTTP server with graceful shutdown.
//
// Without DATABASE_URL the server runs on the built-in demo directory, and
// without REDIS_URL the reset token and lockout state live in memory. That
// keeps local development a single-binary affair.
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

	"github.com/kimdahyun/lantern/internal/api"
	"github.com/kimdahyun/lantern/internal/auth"
	"github.com/kimdahyun/lantern/internal/platform/config"
	"github.com/kimdahyun/lantern/internal/platform/constants"
	"github.com/kimdahyun/lantern/internal/platform/migration"
	pgstore "github.com/kimdahyun/lantern/internal/platform/postgres"
	redisstore "github.com/kimdahyun/lantern/internal/platform/redis"
	"github.com/kimdahyun/lantern/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Lantern] service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lifetime context for background routines such as the rate limiter
	// cleanup. Cancelled when main returns.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. User Directory (PostgreSQL or built-in demo fixture) ───────────
	var directory auth.UserDirectory
	healthDeps := api.HealthDependencies{}

	if cfg.HasDatabase() {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		directory = auth.NewPostgresUserDirectory(pool)
		healthDeps.CheckDatabase = func() error {
			return pgstore.Ping(context.Background(), pool)
		}
	} else {
		log.Info("no DATABASE_URL configured, using in-memory demo directory")
		directory = auth.NewMemoryUserDirectory(auth.SeedUsers())
	}

	// ── 4. Volatile State (Redis or in-memory) ────────────────────────────
	var resetTokens auth.ResetTokenRepository
	var loginAttempts auth.LoginAttemptRepository

	if cfg.HasRedis() {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		resetTokens = auth.NewRedisResetTokenRepository(rdb)
		loginAttempts = auth.NewRedisLoginAttemptRepository(rdb)
		healthDeps.CheckCache = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	} else {
		log.Info("no REDIS_URL configured, using in-memory volatile state")
		resetTokens = auth.NewMemoryResetTokenRepository()
		loginAttempts = auth.NewMemoryLoginAttemptRepository()
	}

	// ── 5. Token Service ──────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 6. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(directory, resetTokens, loginAttempts, jwtSvc)
	authHandler := auth.NewHandler(authService)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, handlers)

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
