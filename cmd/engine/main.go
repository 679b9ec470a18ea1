// Package main is the entry point for the learning engine: the learner
// progression state machine plus the content acquisition pipeline that keeps
// the lesson catalog in sync with the upstream source.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/infoapp-hub/learning-engine/config"
	"github.com/infoapp-hub/learning-engine/internal/application/acquisition"
	"github.com/infoapp-hub/learning-engine/internal/application/commands"
	"github.com/infoapp-hub/learning-engine/internal/application/progression"
	"github.com/infoapp-hub/learning-engine/internal/application/quizflow"
	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
	"github.com/infoapp-hub/learning-engine/internal/infrastructure/messaging"
	"github.com/infoapp-hub/learning-engine/internal/infrastructure/persistence/postgres"
	rediscache "github.com/infoapp-hub/learning-engine/internal/infrastructure/persistence/redis"
	"github.com/infoapp-hub/learning-engine/internal/infrastructure/scheduler"
	"github.com/infoapp-hub/learning-engine/internal/infrastructure/scheduler/jobs"
	"github.com/infoapp-hub/learning-engine/internal/infrastructure/scraper"
)

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
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting learning engine",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (optional read-side cache)
	// ─────────────────────────────────────────────────────────────────────────
	var catalogCache *rediscache.CatalogCache
	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := rediscache.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err := rediscache.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
		} else {
			defer cache.Close()
			catalogCache = rediscache.NewCatalogCache(cache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	learnerRepo := postgres.NewLearnerRepository(dbConn)
	attemptRepo := postgres.NewAttemptRepository(dbConn)
	catalogRepo := postgres.NewCatalogRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. PROGRESSION ENGINE AND QUIZ FLOW
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing progression engine...")
	engine := progression.NewEngine(progression.Config{
		ProfileRepo: learnerRepo,
		AttemptRepo: attemptRepo,
		CatalogRepo: catalogRepo,
		Events:      eventBus,
		Logger:      log,
	})

	if err := engine.Load(ctx); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Info("no learner profile yet, waiting for onboarding")
		} else {
			return fmt.Errorf("failed to load learner profile: %w", err)
		}
	}

	quizService := quizflow.NewService(engine, catalogRepo, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ACQUISITION PIPELINE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing acquisition pipeline...")
	executor := scraper.NewCommandExecutor(scraper.CommandExecutorConfig{
		Command: cfg.Scraper.Command,
		Args:    []string{cfg.Scraper.Script},
		Dir:     cfg.Scraper.WorkDir,
		Logger:  log,
	})

	pipelineCfg := acquisition.Config{
		Executor: executor,
		Repo:     catalogRepo,
		Events:   eventBus,
		Logger:   log,
		Timeout:  cfg.Scraper.Timeout,
	}
	if catalogCache != nil {
		pipelineCfg.Cache = catalogCache
	}
	pipeline, err := acquisition.NewPipeline(pipelineCfg)
	if err != nil {
		return fmt.Errorf("failed to create acquisition pipeline: %w", err)
	}

	if cfg.Scraper.BootstrapScrape {
		if err := pipeline.Bootstrap(ctx); err != nil {
			// A failed bootstrap is not fatal: the scheduled run retries.
			log.Warn("bootstrap scrape failed", "error", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		log.Info("starting scheduler...")
		sched = scheduler.NewScheduler(scheduler.SchedulerConfig{Logger: log})

		scrapeJob := jobs.NewScrapeContentJob(pipeline, log)
		if err := sched.Register(scrapeJob, scheduler.NewIntervalSchedule(cfg.Scheduler.ScrapeInterval)); err != nil {
			return fmt.Errorf("failed to register scrape job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. COMMAND SURFACE
	// ─────────────────────────────────────────────────────────────────────────
	// The presentation layer drives the engine exclusively through this
	// handle.
	cmds, err := commands.New(commands.Config{
		Engine:   engine,
		Quizzes:  quizService,
		Pipeline: pipeline,
		Jobs:     sched,
		Logger:   log,
	})
	if err != nil {
		return fmt.Errorf("failed to create command surface: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("learning engine is running", "jobs", len(cmds.Jobs()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.Warn("scheduler stop failed", "error", err)
		}
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger configures structured logging: JSON in production for log
// aggregators, text in development for readability.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() || cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
