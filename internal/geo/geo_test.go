package geo

import (
	"math"
	"testing"
)

const tolerance = 1e-9

var (
	boom      = Coordinate{Latitude: 51.0903, Longitude: 4.3697}
	niel      = Coordinate{Latitude: 51.1167, Longitude: 4.3333}
	antwerpen = Coordinate{Latitude: 51.2194, Longitude: 4.4025}
	brussel   = Coordinate{Latitude: 50.8503, Longitude: 4.3517}
)

func TestDistanceKmIdentityIsZero(t *testing.T) {
	for _, c := range []Coordinate{boom, niel, antwerpen, {Latitude: -33.9, Longitude: 151.2}, {}} {
		if d := DistanceKm(c, c); math.Abs(d) > tolerance {
			t.Fatalf("expected zero distance for %s, got %f", c, d)
		}
	}
}

func TestDistanceKmIsSymmetric(t *testing.T) {
	pairs := [][2]Coordinate{{boom, niel}, {antwerpen, brussel}, {{Latitude: 89.9, Longitude: 0}, {Latitude: -89.9, Longitude: 179}}}
	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1])
		ba := DistanceKm(p[1], p[0])
		if math.Abs(ab-ba) > tolerance {
			t.Fatalf("expected symmetric distance, got %f vs %f", ab, ba)
		}
	}
}

func TestDistanceKmKnownValues(t *testing.T) {
	d := DistanceKm(boom, niel)
	if d < 3.5 || d > 4.5 {
		t.Fatalf("expected boom-niel around 4km, got %f", d)
	}

	d = DistanceKm(antwerpen, brussel)
	if d < 40 || d > 43 {
		t.Fatalf("expected antwerpen-brussel around 41km, got %f", d)
	}

	// A quarter of the equator.
	d = DistanceKm(Coordinate{}, Coordinate{Longitude: 90})
	want := math.Pi / 2 * EarthRadiusKm
	if math.Abs(d-want) > 1e-6 {
		t.Fatalf("expected %f, got %f", want, d)
	}
}

func TestDistanceKmSmallDeltaIsSmall(t *testing.T) {
	shifted := Coordinate{Latitude: boom.Latitude + 0.0001, Longitude: boom.Longitude}
	d := DistanceKm(boom, shifted)
	if d <= 0 || d > 0.02 {
		t.Fatalf("expected ~11m for 0.0001 degree shift, got %fkm", d)
	}
}
