// Package geocoding resolves city names to coordinates. Lookups go through the
// static reference table first, then the in-process cache (and the optional
// shared Redis cache), and only then a rate-limited external geocoder.
package geocoding

import (
	"context"
	"time"

	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/geo"
)

// Query is a structured city lookup against the external geocoder.
type Query struct {
	City    string
	Country string
	State   string
}

// Result is the external geocoder's answer. Found is false when the service
// answered successfully with no match.
type Result struct {
	Found      bool
	Coordinate geo.Coordinate
}

// Lookup is the external geocoding collaborator. An error means the service
// could not be asked (transport failure, timeout, non-2xx, garbled payload),
// which is different from a successful empty answer.
type Lookup interface {
	Search(ctx context.Context, q Query) (Result, error)
}

// Entry is a cached resolution. A nil Coordinate records a confirmed miss.
type Entry struct {
	Coordinate *geo.Coordinate `json:"coordinate"`
	ResolvedAt time.Time       `json:"resolvedAt"`
}

// Found reports whether the entry holds a coordinate.
func (e Entry) Found() bool {
	return e.Coordinate != nil
}

// SharedCache is a cache tier shared between processes.
type SharedCache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry) error
}

// CacheKey builds the composite cache key: normalized city, "|", then the
// normalized province or "any".
func CacheKey(city, province string) string {
	p := cities.Normalize(province)
	if p == "" {
		p = "any"
	}
	return cities.Normalize(city) + "|" + p
}
