package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"landmatch_backend/internal/geocoding"
	"landmatch_backend/internal/properties/repository"
	"landmatch_backend/internal/scheduler"
	"landmatch_backend/platform/config"
	"landmatch_backend/platform/db"
	"landmatch_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; the API process warms its own coordinate cache, nothing to schedule")
		return
	}
	log.Info("starting scheduler", "env", cfg.Env, "warmCron", cfg.GetGeocodeWarmCron())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	resolver, closeResolver, err := geocoding.Build(cfg, log)
	if err != nil {
		log.Error("failed to initialize geocoding", "error", err)
		panic("failed to initialize geocoding: " + err.Error())
	}
	defer closeResolver()

	repo := repository.New(pool)

	worker, err := scheduler.NewWorker(cfg, repo, resolver, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

	return errors.New(name + ": " + lastErr.Error())
}
