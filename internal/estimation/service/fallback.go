package service

import (
	"context"
	"math"
	"strings"

	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/geo"
	"landmatch_backend/internal/properties"
	"landmatch_backend/internal/properties/repository"
	"landmatch_backend/platform/apperr"
	"landmatch_backend/platform/logger"
)

// Resolver turns a city into a coordinate. The boolean is false when the city
// cannot be located.
type Resolver interface {
	Resolve(ctx context.Context, city, province string) (geo.Coordinate, bool)
}

// FallbackResult is the nearest alternative city with enough sold listings.
type FallbackResult struct {
	City            string
	Province        string
	DistanceKm      float64
	ComparableCount int
	Listings        []properties.SoldListing
}

// FallbackFinder searches the sold-listing set for the nearest data-rich city.
type FallbackFinder struct {
	repo     repository.Reader
	resolver Resolver
	log      *logger.Logger
}

// NewFallbackFinder creates a finder over the listing repository and a coordinate resolver.
func NewFallbackFinder(repo repository.Reader, resolver Resolver, log *logger.Logger) *FallbackFinder {
	return &FallbackFinder{repo: repo, resolver: resolver, log: log}
}

// FindNearestWithData fetches the sold listings and returns the nearest city,
// other than targetCity, holding at least minComparables of them.
// The boolean is false when no such city can be found.
func (f *FallbackFinder) FindNearestWithData(ctx context.Context, targetCity, targetProvince string, minComparables int) (FallbackResult, bool, error) {
	anchor, ok := f.resolver.Resolve(ctx, targetCity, targetProvince)
	if !ok {
		f.log.WithContext(ctx).Info("fallback target could not be located", "city", targetCity)
		return FallbackResult{}, false, nil
	}

	listings, err := f.repo.ListSoldWithFinalPrice(ctx)
	if err != nil {
		f.log.WithContext(ctx).DatabaseError("list sold properties", err)
		return FallbackResult{}, false, apperr.Unavailable("could not load sold listings", err).WithOp("estimation.FindNearestWithData")
	}

	result, found := f.nearestFrom(ctx, anchor, targetCity, listings, minComparables)
	return result, found, nil
}

// NearestAmong is FindNearestWithData over listings the caller already fetched.
func (f *FallbackFinder) NearestAmong(ctx context.Context, targetCity, targetProvince string, listings []properties.SoldListing, minComparables int) (FallbackResult, bool) {
	anchor, ok := f.resolver.Resolve(ctx, targetCity, targetProvince)
	if !ok {
		f.log.WithContext(ctx).Info("fallback target could not be located", "city", targetCity)
		return FallbackResult{}, false
	}
	return f.nearestFrom(ctx, anchor, targetCity, listings, minComparables)
}

type partition struct {
	city     string
	province string
	listings []properties.SoldListing
}

func (f *FallbackFinder) nearestFrom(ctx context.Context, anchor geo.Coordinate, targetCity string, listings []properties.SoldListing, minComparables int) (FallbackResult, bool) {
	log := f.log.WithContext(ctx)
	target := cities.Normalize(targetCity)

	// Partitions keep first-seen order for the final tie-break.
	var order []*partition
	byKey := make(map[string]*partition)
	for _, l := range listings {
		city := cities.Normalize(l.City)
		if city == target {
			continue
		}
		province := strings.TrimSpace(l.Province)
		key := city + "|" + province
		p, ok := byKey[key]
		if !ok {
			p = &partition{city: city, province: province}
			byKey[key] = p
			order = append(order, p)
		}
		p.listings = append(p.listings, l)
	}

	var (
		best  FallbackResult
		found bool
	)
	for _, p := range order {
		if len(p.listings) < minComparables {
			continue
		}

		c, ok := f.resolver.Resolve(ctx, p.city, p.province)
		if !ok {
			log.Debug("fallback candidate skipped, no coordinate", "city", p.city, "province", p.province)
			continue
		}

		distance := roundTo(geo.DistanceKm(anchor, c), 2)
		log.Debug("fallback candidate", "city", p.city, "province", p.province, "distanceKm", distance, "count", len(p.listings))

		if found && !closer(distance, len(p.listings), best) {
			continue
		}
		best = FallbackResult{
			City:            p.city,
			Province:        p.province,
			DistanceKm:      distance,
			ComparableCount: len(p.listings),
			Listings:        p.listings,
		}
		found = true
	}

	if found {
		log.Info("fallback city selected", "city", best.City, "distanceKm", best.DistanceKm, "count", best.ComparableCount)
	}
	return best, found
}

// closer reports whether a candidate beats the current best: nearer first,
// then more comparables. Equal candidates keep the earlier one.
func closer(distance float64, count int, best FallbackResult) bool {
	if distance != best.DistanceKm {
		return distance < best.DistanceKm
	}
	return count > best.ComparableCount
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
