// Package main is the entry point for the growth engine service.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure growth logic without external dependencies
// - Application: the engine facade orchestrating use cases
// - Infrastructure: repositories, cache, event bus
// - Interface: HTTP endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jayai/growth-hub/config"
	"github.com/jayai/growth-hub/internal/application/engine"
	"github.com/jayai/growth-hub/internal/application/eventhandler"
	"github.com/jayai/growth-hub/internal/domain/catalog"
	"github.com/jayai/growth-hub/internal/domain/goal"
	"github.com/jayai/growth-hub/internal/domain/growth"
	"github.com/jayai/growth-hub/internal/domain/insight"
	"github.com/jayai/growth-hub/internal/infrastructure/messaging"
	"github.com/jayai/growth-hub/internal/infrastructure/persistence/memory"
	"github.com/jayai/growth-hub/internal/infrastructure/persistence/postgres"
	"github.com/jayai/growth-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/jayai/growth-hub/internal/interface/http"
	"github.com/jayai/growth-hub/pkg/circuitbreaker"
	"github.com/jayai/growth-hub/pkg/logger"
	"github.com/jayai/growth-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	level := logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		level = logger.LevelDebug
	}
	log := logger.New(os.Stdout, level)
	log.Info("starting growth engine",
		logger.String("app", cfg.App.Name),
		logger.String("version", cfg.App.Version),
		logger.String("env", string(cfg.App.Environment)),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORAGE (PostgreSQL, or in-memory when no DATABASE_URL)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		growthRepo  growth.Repository
		goalRepo    goal.Repository
		insightRepo insight.Repository
		health      httpserver.HealthChecker
	)

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")

		var conn *postgres.Connection
		connectCfg := retry.DefaultConfig()
		connectCfg.MaxAttempts = cfg.Database.ConnectMaxRetries
		connectCfg.InitialDelay = cfg.Database.ConnectRetryDelay
		connectCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn("database connect failed, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("next_in", delay),
				logger.Err(err),
			)
		}
		poolOpts := postgres.PoolOptions{
			MaxConns:        cfg.Database.MaxOpenConns,
			MinConns:        cfg.Database.MaxIdleConns,
			MaxConnLifetime: cfg.Database.ConnMaxLifetime,
			MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		}
		err = retry.Do(ctx, connectCfg, func(ctx context.Context) error {
			var connErr error
			conn, connErr = postgres.Connect(ctx, cfg.Database.URL, poolOpts)
			return connErr
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			conn.Close()
		}()

		log.Info("running database migrations...")
		if err := postgres.Migrate(ctx, conn); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		growthRepo = postgres.NewGrowthRepository(conn)
		goalRepo = postgres.NewGoalRepository(conn)
		insightRepo = postgres.NewInsightRepository(conn)
		health = conn.Ping
		log.Info("database connection established")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage")
		growthRepo = memory.NewGrowthRepository()
		goalRepo = memory.NewGoalRepository()
		insightRepo = memory.NewInsightRepository()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. PROFILE CACHE (Redis, optional)
	// ─────────────────────────────────────────────────────────────────────────
	var profileCache engine.ProfileCache

	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureProfileCache) {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, cacheErr := redis.NewCache(redisCfg)
		if cacheErr != nil {
			log.Warn("failed to connect to Redis, profile caching disabled", logger.Err(cacheErr))
		} else {
			defer cache.Close()

			breakerCfg := circuitbreaker.DefaultConfig("redis-profile-cache")
			breakerCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
				log.Warn("circuit breaker state changed",
					logger.String("breaker", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			}
			profileCache = redis.NewProfileCache(cache, circuitbreaker.New(breakerCfg))
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS AND HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBus := messaging.NewEventBus(log)
	defer func() {
		log.Info("closing event bus...")
		eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. DOMAIN CATALOG
	// ─────────────────────────────────────────────────────────────────────────
	curves := make(map[catalog.Domain]catalog.XPCurve, len(catalog.All()))
	for _, d := range catalog.All() {
		curves[d] = catalog.XPCurve{Base: cfg.Growth.XPBase, Growth: cfg.Growth.XPGrowth}
	}
	for name, override := range cfg.Growth.CurveOverrides {
		curves[catalog.Domain(name)] = catalog.XPCurve{Base: override.Base, Growth: override.Growth}
	}
	cat, err := catalog.New(curves)
	if err != nil {
		return fmt.Errorf("invalid growth curve configuration: %w", err)
	}

	if cfg.Features.IsEnabled(config.FeatureInsightOnMilestone) {
		recorder := eventhandler.NewAchievementRecorder(insightRepo, cat, log)
		if err := eventBus.Subscribe(recorder, recorder.EventTypes()...); err != nil {
			return fmt.Errorf("failed to register achievement recorder: %w", err)
		}
		log.Info("achievement recorder registered")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GROWTH ENGINE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing growth engine...")

	engineCfg := engine.Config{
		ChallengeBaseXP:     cfg.Growth.ChallengeBaseXP,
		ChallengeXPPerLevel: cfg.Growth.ChallengeXPPerLevel,
		GoalCreatedXP:       cfg.Growth.GoalCreatedXP,
		GoalCompletedXP:     cfg.Growth.GoalCompletedXP,
	}
	if !cfg.Features.IsEnabled(config.FeatureChallengeScaling) {
		engineCfg.ChallengeXPPerLevel = 0
	}

	eng, err := engine.New(engine.Params{
		Catalog:   cat,
		Config:    engineCfg,
		Records:   growthRepo,
		Goals:     goalRepo,
		Insights:  insightRepo,
		Generator: insight.NewGenerator(),
		Bus:       eventBus,
		Cache:     profileCache,
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("failed to create growth engine: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpCfg := httpserver.DefaultConfig()
	httpCfg.Host = cfg.HTTP.Host
	httpCfg.Port = cfg.HTTP.Port
	httpCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	httpCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	httpCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	httpCfg.EnableCORS = cfg.HTTP.EnableCORS
	httpCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	server := httpserver.NewServer(httpCfg, eng, health, log)

	errCh := server.StartAsync()
	log.Info("growth engine is running",
		logger.String("address", fmt.Sprintf("%s:%d", httpCfg.Host, httpCfg.Port)),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", logger.Err(err))
			return err
		}
	case <-ctx.Done():
		log.Info("context cancelled")
	}

	log.Info("starting graceful shutdown...",
		logger.Duration("timeout", cfg.App.ShutdownTimeout),
	)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}
