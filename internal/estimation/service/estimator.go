// Package service implements comparable-based price estimation with a
// geographic fallback for cities that lack sold listings.
package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/properties"
	"landmatch_backend/internal/properties/repository"
	"landmatch_backend/platform/apperr"
	"landmatch_backend/platform/logger"
)

const (
	// K is the number of neighbours averaged into an estimate.
	K = 5
	// MinSameCity is the number of sold listings a city needs before its own
	// data is trusted without a fallback city.
	MinSameCity = 2

	roundingStep = 50000.0
	lowerFactor  = 0.80
	upperFactor  = 1.20

	msgNoSoldListings = "No sold properties available for comparison"
	msgNoComparables  = "No comparable properties found"
)

// Request is the validated input of an estimation.
type Request struct {
	Province properties.Province
	City     string
	Type     properties.PropertyType
	SizeM2   float64
}

// ScoredCandidate is a sold listing ranked against a request.
type ScoredCandidate struct {
	Listing          properties.SoldListing
	Score            float64
	PricePerArea     float64
	IsFallbackOrigin bool
}

// Estimate is the outcome of a successful estimation. When HasRange is false
// there was not enough data and Message explains why.
type Estimate struct {
	HasRange   bool
	PriceMin   float64
	PriceMax   float64
	Fallback   *FallbackResult
	Message    string
	Neighbours []ScoredCandidate
}

// Service is the price estimator.
type Service struct {
	repo   repository.Reader
	finder *FallbackFinder
	log    *logger.Logger
}

// New creates the estimator. The fallback finder shares the repository.
func New(repo repository.Reader, resolver Resolver, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		finder: NewFallbackFinder(repo, resolver, log),
		log:    log,
	}
}

// Estimate computes a price range for req from the sold listings.
func (s *Service) Estimate(ctx context.Context, req Request) (Estimate, error) {
	if err := validateRequest(req); err != nil {
		return Estimate{}, err
	}

	log := s.log.WithContext(ctx)
	city := cities.Normalize(req.City)

	listings, err := s.repo.ListSoldWithFinalPrice(ctx)
	if err != nil {
		log.DatabaseError("list sold properties", err)
		return Estimate{}, apperr.Unavailable("could not load sold listings", err).WithOp("estimation.Estimate")
	}
	if len(listings) == 0 {
		return Estimate{Message: msgNoSoldListings}, nil
	}

	var fallback *FallbackResult
	if n := countInCity(listings, city); n < MinSameCity {
		log.Info("limited data in target city, searching fallback", "city", city, "count", n)
		if result, ok := s.finder.NearestAmong(ctx, city, string(req.Province), listings, MinSameCity); ok {
			fallback = &result
		}
	}

	candidates := score(listings, req, city, fallback)
	if len(candidates) == 0 {
		return Estimate{Message: msgNoComparables}, nil
	}

	top := candidates
	if len(top) > K {
		top = top[:K]
	}
	for i, c := range top {
		log.Debug("neighbour", "rank", i+1, "city", c.Listing.City, "score", c.Score, "pricePerArea", c.PricePerArea, "fallback", c.IsFallbackOrigin)
	}

	var sum float64
	for _, c := range top {
		sum += c.PricePerArea
	}
	base := sum / float64(len(top)) * req.SizeM2
	priceMin, priceMax := priceRange(base)

	estimate := Estimate{
		HasRange:   true,
		PriceMin:   priceMin,
		PriceMax:   priceMax,
		Fallback:   fallback,
		Neighbours: top,
	}
	if fallback != nil {
		estimate.Message = fallbackMessage(city, *fallback)
	}

	log.Info("price estimated", "city", city, "min", priceMin, "max", priceMax, "neighbours", len(top))
	return estimate, nil
}

func validateRequest(req Request) error {
	if math.IsNaN(req.SizeM2) || math.IsInf(req.SizeM2, 0) || req.SizeM2 <= 0 {
		return apperr.Validation("Size must be a positive number")
	}
	if cities.Normalize(req.City) == "" {
		return apperr.Validation("City is required")
	}
	if _, err := properties.ParseProvince(string(req.Province)); err != nil {
		return apperr.Validation(err.Error())
	}
	if _, err := properties.ParsePropertyType(string(req.Type)); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}

func countInCity(listings []properties.SoldListing, city string) int {
	n := 0
	for _, l := range listings {
		if cities.Normalize(l.City) == city {
			n++
		}
	}
	return n
}

// score ranks every comparable listing against req, best first. Listings with
// equal scores keep their fetch order.
func score(listings []properties.SoldListing, req Request, city string, fallback *FallbackResult) []ScoredCandidate {
	province := string(req.Province)
	candidates := make([]ScoredCandidate, 0, len(listings))

	for _, l := range listings {
		if !l.IsComparable() {
			continue
		}

		var s float64
		fromFallback := false
		listingCity := cities.Normalize(l.City)
		sameProvince := strings.EqualFold(strings.TrimSpace(l.Province), province)

		switch {
		case listingCity == city:
			s += 4
		case fallback != nil && listingCity == fallback.City:
			s += 3
			fromFallback = true
		case sameProvince:
			s++
		}
		// Stacks with the branch above.
		if sameProvince {
			s += 2
		}
		if strings.EqualFold(strings.TrimSpace(l.Type), string(req.Type)) {
			s++
		}
		s -= math.Abs(req.SizeM2-l.SizeM2) / 10

		candidates = append(candidates, ScoredCandidate{
			Listing:          l,
			Score:            s,
			PricePerArea:     l.FinalPrice / l.SizeM2,
			IsFallbackOrigin: fromFallback,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// priceRange applies the +/-20% band, rounds both ends to the nearest 50k and
// guarantees min < max.
func priceRange(base float64) (float64, float64) {
	lo := roundToStep(base * lowerFactor)
	hi := roundToStep(base * upperFactor)
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		lo = math.Max(0, lo-roundingStep)
		hi += roundingStep
	}
	return lo, hi
}

func roundToStep(price float64) float64 {
	return math.Round(price/roundingStep) * roundingStep
}

func fallbackMessage(city string, fallback FallbackResult) string {
	return fmt.Sprintf("Limited data in %s. Used nearby city %s (%skm away) for comparison.",
		cities.Title(city), cities.Title(fallback.City), formatKm(fallback.DistanceKm))
}

// formatKm prints the shortest form of km that keeps at least one decimal.
func formatKm(km float64) string {
	s := strconv.FormatFloat(km, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
