package geocoding

import (
	"context"
	"strings"
	"time"

	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/geo"
	"landmatch_backend/platform/config"
	"landmatch_backend/platform/logger"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	tierReference = "reference"
	tierMemory    = "memory"
	tierShared    = "shared"
	tierExternal  = "external"
)

// Options tunes a Service. Zero values fall back to the production defaults.
type Options struct {
	Country     string
	MinInterval time.Duration
	NegativeTTL time.Duration
	Shared      SharedCache
	Now         func() time.Time
}

// OptionsFromConfig maps geocoding config onto Options.
func OptionsFromConfig(cfg config.GeocodingConfig) Options {
	return Options{
		Country:     cfg.GetGeocodeCountry(),
		MinInterval: cfg.GetGeocodeMinInterval(),
		NegativeTTL: cfg.GetGeocodeNegativeTTL(),
	}
}

// Service is the coordinate resolver. It owns the process-wide cache and the
// global limiter on external calls, so construct one per process and share it.
type Service struct {
	table   *cities.Table
	lookup  Lookup
	memory  *memoryCache
	shared  SharedCache
	limiter *rate.Limiter
	group   singleflight.Group
	country string
	now     func() time.Time
	log     *logger.Logger
}

// New creates a resolver over the reference table and the external lookup.
func New(table *cities.Table, lookup Lookup, opts Options, log *logger.Logger) *Service {
	if opts.Country == "" {
		opts.Country = "Belgium"
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		table:   table,
		lookup:  lookup,
		memory:  newMemoryCache(opts.NegativeTTL),
		shared:  opts.Shared,
		limiter: rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		country: opts.Country,
		now:     opts.Now,
		log:     log,
	}
}

// Resolve returns the coordinate of city, qualified by province when given.
// The boolean is false when the city cannot be located; failures never escape.
func (s *Service) Resolve(ctx context.Context, city, province string) (geo.Coordinate, bool) {
	log := s.log.WithContext(ctx)
	name := cities.Normalize(city)
	province = strings.TrimSpace(province)

	if c, ok := s.table.Coordinate(name); ok {
		log.GeocodeLookup(tierReference, name, province, true)
		return c, true
	}

	key := CacheKey(name, province)
	if entry, ok := s.memory.get(key, s.now()); ok {
		log.GeocodeLookup(tierMemory, name, province, entry.Found())
		return entryCoordinate(entry)
	}

	// Concurrent callers for the same key share one lookup.
	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		return s.resolveUncached(ctx, key, name, province), nil
	})
	return entryCoordinate(v.(Entry))
}

func (s *Service) resolveUncached(ctx context.Context, key, name, province string) Entry {
	log := s.log.WithContext(ctx)

	if entry, ok := s.memory.get(key, s.now()); ok {
		return entry
	}

	if s.shared != nil {
		entry, ok, err := s.shared.Get(ctx, key)
		if err != nil {
			log.Warn("shared geocode cache read failed", "key", key, "error", err)
		} else if ok {
			s.memory.set(key, entry)
			log.GeocodeLookup(tierShared, name, province, entry.Found())
			return entry
		}
	}

	// Once started, a lookup runs to completion even if the caller goes away:
	// other callers may be waiting on it through the singleflight group.
	callCtx := context.WithoutCancel(ctx)
	if err := s.limiter.Wait(callCtx); err != nil {
		log.GeocodeFailure(name, province, err)
		return Entry{}
	}

	result, err := s.lookup.Search(callCtx, Query{City: name, Country: s.country, State: province})
	if err != nil {
		// Transient: not cached, the next request retries.
		log.GeocodeFailure(name, province, err)
		return Entry{}
	}

	entry := Entry{ResolvedAt: s.now()}
	if result.Found {
		c := result.Coordinate
		entry.Coordinate = &c
	}
	s.store(ctx, key, entry)
	log.GeocodeLookup(tierExternal, name, province, entry.Found())
	return entry
}

func (s *Service) store(ctx context.Context, key string, entry Entry) {
	s.memory.set(key, entry)
	if s.shared == nil {
		return
	}
	if err := s.shared.Set(ctx, key, entry); err != nil {
		s.log.WithContext(ctx).Warn("shared geocode cache write failed", "key", key, "error", err)
	}
}

// CachedEntries reports the size of the in-process cache.
func (s *Service) CachedEntries() int {
	return s.memory.len()
}

// Place is a city/province pair to resolve.
type Place struct {
	City     string
	Province string
}

// WarmStats summarises a Warm run.
type WarmStats struct {
	Resolved   int
	Unresolved int
}

// Warm resolves every place in order, honouring the rate limit, so that later
// requests hit a cache tier. It stops early when ctx is cancelled.
func (s *Service) Warm(ctx context.Context, places []Place) WarmStats {
	var stats WarmStats
	for _, p := range places {
		if ctx.Err() != nil {
			break
		}
		if _, ok := s.Resolve(ctx, p.City, p.Province); ok {
			stats.Resolved++
		} else {
			stats.Unresolved++
		}
	}
	return stats
}

func entryCoordinate(entry Entry) (geo.Coordinate, bool) {
	if entry.Coordinate == nil {
		return geo.Coordinate{}, false
	}
	return *entry.Coordinate, true
}
