package service

import (
	"context"
	"sync"

	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/geo"
	"landmatch_backend/internal/properties"
)

type fakeReader struct {
	listings []properties.SoldListing
	err      error
	calls    int
}

func (f *fakeReader) ListSoldWithFinalPrice(context.Context) ([]properties.SoldListing, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.listings, nil
}

type fakeResolver struct {
	mu     sync.Mutex
	coords map[string]geo.Coordinate
	asked  []string
}

func (f *fakeResolver) Resolve(_ context.Context, city, _ string) (geo.Coordinate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := cities.Normalize(city)
	f.asked = append(f.asked, name)
	c, ok := f.coords[name]
	return c, ok
}

var (
	boom     = geo.Coordinate{Latitude: 51.0903, Longitude: 4.3697}
	niel     = geo.Coordinate{Latitude: 51.1167, Longitude: 4.3333}
	schelle  = geo.Coordinate{Latitude: 51.125, Longitude: 4.3417}
	hemiksem = geo.Coordinate{Latitude: 51.1458, Longitude: 4.3392}
	brussel  = geo.Coordinate{Latitude: 50.8503, Longitude: 4.3517}
)

func land(city, province string, size, price float64) properties.SoldListing {
	return properties.SoldListing{City: city, Province: province, Type: "Land", SizeM2: size, FinalPrice: price}
}

func building(city, province string, size, price float64) properties.SoldListing {
	return properties.SoldListing{City: city, Province: province, Type: "Building", SizeM2: size, FinalPrice: price}
}
