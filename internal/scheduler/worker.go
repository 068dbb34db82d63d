package scheduler

import (
	"context"
	"time"

	"landmatch_backend/platform/config"
	"landmatch_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	cities    CityLister
	warmer    CacheWarmer
	log       *logger.Logger
}

// NewWorker creates the asynq server processing warm-up tasks, and the
// periodic scheduler that enqueues them on cfg's cron spec.
func NewWorker(cfg config.SchedulerConfig, cities CityLister, warmer CacheWarmer, log *logger.Logger) (*Worker, error) {
	opt, err := clientOpt(cfg)
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	periodic := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
	if spec := cfg.GetGeocodeWarmCron(); spec != "" {
		task, err := NewGeocodeWarmTask(GeocodeWarmPayload{})
		if err != nil {
			return nil, err
		}
		if _, err := periodic.Register(spec, task, asynq.Queue(queue), asynq.Unique(warmTaskRetention), asynq.MaxRetry(1)); err != nil {
			return nil, err
		}
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: periodic,
		mux:       mux,
		cities:    cities,
		warmer:    warmer,
		log:       log,
	}

	mux.HandleFunc(TaskGeocodeWarm, w.handleGeocodeWarm)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	if err := w.scheduler.Start(); err != nil {
		w.log.Error("periodic scheduler failed to start", "error", err)
	}
	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleGeocodeWarm(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseGeocodeWarmPayload(task)
	if err != nil {
		return err
	}

	if id, ok := asynq.GetTaskID(ctx); ok {
		ctx = context.WithValue(ctx, logger.TaskIDKey, id)
	}

	_, err = warmCities(ctx, w.cities, w.warmer, payload.Limit, w.log)
	return err
}
