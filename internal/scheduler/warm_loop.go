package scheduler

import (
	"context"
	"time"

	"landmatch_backend/platform/logger"
)

const defaultWarmInterval = time.Hour

// WarmLoop periodically warms the coordinate cache of the resolver it is
// given. Without Redis the API runs it against its own resolver.
type WarmLoop struct {
	cities   CityLister
	warmer   CacheWarmer
	log      *logger.Logger
	interval time.Duration
}

func NewWarmLoop(cities CityLister, warmer CacheWarmer, log *logger.Logger, interval time.Duration) *WarmLoop {
	if interval <= 0 {
		interval = defaultWarmInterval
	}

	return &WarmLoop{
		cities:   cities,
		warmer:   warmer,
		log:      log,
		interval: interval,
	}
}

func (l *WarmLoop) Run(ctx context.Context) {
	if l == nil || l.cities == nil || l.warmer == nil {
		return
	}

	l.warm(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.warm(ctx)
		}
	}
}

func (l *WarmLoop) warm(ctx context.Context) {
	if _, err := warmCities(ctx, l.cities, l.warmer, 0, l.log); err != nil {
		l.log.Warn("coordinate cache warm-up failed", "error", err)
	}
}
