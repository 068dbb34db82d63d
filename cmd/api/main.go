package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/estimation"
	"landmatch_backend/internal/geocoding"
	apphttp "landmatch_backend/internal/http"
	"landmatch_backend/internal/http/router"
	"landmatch_backend/internal/properties"
	"landmatch_backend/internal/properties/repository"
	"landmatch_backend/internal/scheduler"
	"landmatch_backend/platform/config"
	"landmatch_backend/platform/db"
	"landmatch_backend/platform/logger"
	"landmatch_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)
	if !strings.EqualFold(cfg.Env, "development") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// One resolver per process: it owns the coordinate cache and the
	// external rate limit.
	resolver, closeResolver, err := geocoding.Build(cfg, log)
	if err != nil {
		log.Error("failed to initialize geocoding", "error", err)
		panic("failed to initialize geocoding: " + err.Error())
	}
	defer closeResolver()

	// Shared validator instance for dependency injection
	val := validator.New()
	if err := properties.RegisterValidations(val); err != nil {
		panic("failed to register validations: " + err.Error())
	}

	// ========================================================================
	// Domain Modules
	// ========================================================================

	table := cities.Default()
	log.Info("municipality reference loaded", "cities", table.Len())

	repo := repository.New(pool)
	estimationModule := estimation.NewModule(repo, resolver, table, val, log)

	startWarmUp(ctx, cfg, repo, resolver, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: pool,
		Modules: []apphttp.Module{
			estimationModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// startWarmUp keeps the coordinate cache warm. With Redis the scheduler
// process owns warming and is asked to run once right away. Without Redis
// nothing is shared across processes, so the API warms its own resolver.
func startWarmUp(ctx context.Context, cfg config.SchedulerConfig, lister scheduler.CityLister, resolver scheduler.CacheWarmer, log *logger.Logger) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; warming the coordinate cache in-process", "interval", cfg.GetGeocodeWarmInterval())
		go scheduler.NewWarmLoop(lister, resolver, log, cfg.GetGeocodeWarmInterval()).Run(ctx)
		return
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return
	}
	defer func() { _ = client.Close() }()

	if err := client.EnqueueGeocodeWarm(ctx, scheduler.GeocodeWarmPayload{}); err != nil {
		log.Warn("failed to enqueue coordinate cache warm-up", "error", err)
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
