package service

import (
	"context"
	"errors"
	"testing"

	"landmatch_backend/internal/geo"
	"landmatch_backend/internal/properties"
	"landmatch_backend/platform/apperr"
	"landmatch_backend/platform/logger"
)

func TestFindNearestWithDataPicksClosestEligibleCity(t *testing.T) {
	repo := &fakeReader{listings: []properties.SoldListing{
		land("boom", "Antwerpen", 1000, 100000),
		land("brussel", "Brussel", 500, 200000),
		land("brussel", "Brussel", 600, 220000),
		land("hemiksem", "Antwerpen", 700, 70000),
		land("hemiksem", "Antwerpen", 800, 80000),
		land("niel", "Antwerpen", 900, 90000),
	}}
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{
		"boom": boom, "brussel": brussel, "hemiksem": hemiksem, "niel": niel,
	}}
	finder := NewFallbackFinder(repo, resolver, logger.Discard())

	result, ok, err := finder.FindNearestWithData(context.Background(), "Boom", "Antwerpen", 2)
	if err != nil || !ok {
		t.Fatalf("expected a fallback, got ok=%v err=%v", ok, err)
	}
	// niel is nearer but has a single listing.
	if result.City != "hemiksem" || result.ComparableCount != 2 || len(result.Listings) != 2 {
		t.Fatalf("unexpected fallback %+v", result)
	}
	if result.DistanceKm <= 0 || result.DistanceKm != roundTo(result.DistanceKm, 2) {
		t.Fatalf("expected a positive distance rounded to 2 decimals, got %v", result.DistanceKm)
	}
	if repo.calls != 1 {
		t.Fatalf("expected a single bulk fetch, got %d", repo.calls)
	}
}

func TestFindNearestWithDataNeverReturnsTargetCity(t *testing.T) {
	repo := &fakeReader{listings: []properties.SoldListing{
		land("boom", "Antwerpen", 1000, 100000),
		land(" BOOM", "Antwerpen", 1000, 100000),
		land("Boom ", "Antwerpen", 1000, 100000),
	}}
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{"boom": boom}}
	finder := NewFallbackFinder(repo, resolver, logger.Discard())

	if result, ok, err := finder.FindNearestWithData(context.Background(), "boom", "Antwerpen", 2); err != nil || ok {
		t.Fatalf("expected no fallback, got %+v ok=%v err=%v", result, ok, err)
	}
}

func TestFindNearestWithDataUnresolvedTarget(t *testing.T) {
	repo := &fakeReader{listings: []properties.SoldListing{
		land("niel", "Antwerpen", 900, 90000),
		land("niel", "Antwerpen", 1000, 100000),
	}}
	finder := NewFallbackFinder(repo, &fakeResolver{coords: map[string]geo.Coordinate{"niel": niel}}, logger.Discard())

	if _, ok, err := finder.FindNearestWithData(context.Background(), "atlantis", "", 2); ok || err != nil {
		t.Fatalf("expected not found without error, got ok=%v err=%v", ok, err)
	}
	if repo.calls != 0 {
		t.Fatal("did not expect a repository call without an anchor")
	}
}

func TestFindNearestWithDataSkipsUnresolvedCandidates(t *testing.T) {
	repo := &fakeReader{listings: []properties.SoldListing{
		land("nergenshuizen", "Antwerpen", 900, 90000),
		land("nergenshuizen", "Antwerpen", 1000, 100000),
		land("brussel", "Brussel", 500, 200000),
		land("brussel", "Brussel", 600, 220000),
	}}
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{"boom": boom, "brussel": brussel}}
	finder := NewFallbackFinder(repo, resolver, logger.Discard())

	result, ok, err := finder.FindNearestWithData(context.Background(), "boom", "Antwerpen", 2)
	if err != nil || !ok || result.City != "brussel" {
		t.Fatalf("expected brussel, got %+v ok=%v err=%v", result, ok, err)
	}
}

func TestFindNearestWithDataRepositoryFailure(t *testing.T) {
	repo := &fakeReader{err: errors.New("connection refused")}
	finder := NewFallbackFinder(repo, &fakeResolver{coords: map[string]geo.Coordinate{"boom": boom}}, logger.Discard())

	_, _, err := finder.FindNearestWithData(context.Background(), "boom", "Antwerpen", 2)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestNearestAmongTieBreaks(t *testing.T) {
	same := geo.Coordinate{Latitude: 51.2, Longitude: 4.4}
	listings := []properties.SoldListing{
		land("eerste", "Antwerpen", 100, 1000),
		land("eerste", "Antwerpen", 100, 1000),
		land("tweede", "Antwerpen", 100, 1000),
		land("tweede", "Antwerpen", 100, 1000),
		land("tweede", "Antwerpen", 100, 1000),
		land("derde", "Antwerpen", 100, 1000),
		land("derde", "Antwerpen", 100, 1000),
		land("derde", "Antwerpen", 100, 1000),
	}
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{
		"boom": boom, "eerste": same, "tweede": same, "derde": same,
	}}
	finder := NewFallbackFinder(&fakeReader{}, resolver, logger.Discard())

	result, ok := finder.NearestAmong(context.Background(), "boom", "Antwerpen", listings, 2)
	if !ok {
		t.Fatal("expected a fallback")
	}
	// Equal distance: more listings wins, then first seen.
	if result.City != "tweede" {
		t.Fatalf("expected tweede, got %s", result.City)
	}
}

func TestNearestAmongPartitionsByProvince(t *testing.T) {
	listings := []properties.SoldListing{
		land("sint-jan", "Limburg", 100, 1000),
		land("sint-jan", "West-Vlaanderen", 100, 1000),
	}
	resolver := &fakeResolver{coords: map[string]geo.Coordinate{"boom": boom, "sint-jan": schelle}}
	finder := NewFallbackFinder(&fakeReader{}, resolver, logger.Discard())

	if _, ok := finder.NearestAmong(context.Background(), "boom", "Antwerpen", listings, 2); ok {
		t.Fatal("same name in different provinces must not be merged")
	}
}
