package scheduler

import (
	"context"
	"fmt"

	"landmatch_backend/internal/geocoding"
	"landmatch_backend/internal/properties/repository"
	"landmatch_backend/platform/logger"
)

// CityLister lists the cities that hold sold listings, most data first.
type CityLister interface {
	ListSoldCities(ctx context.Context) ([]repository.CityCount, error)
}

// CacheWarmer resolves places so later lookups hit a cache tier.
type CacheWarmer interface {
	Warm(ctx context.Context, places []geocoding.Place) geocoding.WarmStats
	CachedEntries() int
}

// warmCities resolves the coordinates of every city with sold listings, or the
// first limit of them when limit is positive.
func warmCities(ctx context.Context, lister CityLister, warmer CacheWarmer, limit int, log *logger.Logger) (geocoding.WarmStats, error) {
	counts, err := lister.ListSoldCities(ctx)
	if err != nil {
		return geocoding.WarmStats{}, fmt.Errorf("list sold cities: %w", err)
	}
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}

	places := make([]geocoding.Place, 0, len(counts))
	for _, c := range counts {
		places = append(places, geocoding.Place{City: c.City, Province: c.Province})
	}

	stats := warmer.Warm(ctx, places)
	log.WithContext(ctx).Info("coordinate cache warmed", "cities", len(places), "resolved", stats.Resolved, "unresolved", stats.Unresolved, "cached", warmer.CachedEntries())
	return stats, nil
}
