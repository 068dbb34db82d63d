// Package repository reads sold listings from PostgreSQL. It never writes.
package repository

import (
	"context"
	"fmt"
	"strings"

	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/properties"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reader is the single query capability the estimation engine needs.
type Reader interface {
	ListSoldWithFinalPrice(ctx context.Context) ([]properties.SoldListing, error)
}

// CityCount is the number of sold listings recorded for a city.
type CityCount struct {
	City     string
	Province string
	Count    int
}

// Repo implements Reader on a pgx pool.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new properties repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Reader.
var _ Reader = (*Repo)(nil)

const listSoldWithFinalPriceQuery = `
	SELECT city, province, type, size, final_price
	FROM properties
	WHERE sold = TRUE AND final_price IS NOT NULL
	ORDER BY property_id`

const listSoldCitiesQuery = `
	SELECT lower(trim(city)) AS city, trim(province) AS province, count(*) AS sold_count
	FROM properties
	WHERE sold = TRUE AND final_price IS NOT NULL
	GROUP BY 1, 2
	ORDER BY 3 DESC, 1`

// ListSoldWithFinalPrice returns every sold listing with a final price, in a stable order.
func (r *Repo) ListSoldWithFinalPrice(ctx context.Context) ([]properties.SoldListing, error) {
	rows, err := r.pool.Query(ctx, listSoldWithFinalPriceQuery)
	if err != nil {
		return nil, fmt.Errorf("list sold properties: %w", err)
	}

	listings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (properties.SoldListing, error) {
		var l properties.SoldListing
		if err := row.Scan(&l.City, &l.Province, &l.Type, &l.SizeM2, &l.FinalPrice); err != nil {
			return properties.SoldListing{}, err
		}
		l.City = cities.Normalize(l.City)
		l.Province = strings.TrimSpace(l.Province)
		l.Type = strings.TrimSpace(l.Type)
		return l, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan sold properties: %w", err)
	}
	return listings, nil
}

// ListSoldCities groups sold listings by city and province, most data first.
func (r *Repo) ListSoldCities(ctx context.Context) ([]CityCount, error) {
	rows, err := r.pool.Query(ctx, listSoldCitiesQuery)
	if err != nil {
		return nil, fmt.Errorf("list sold cities: %w", err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (CityCount, error) {
		var c CityCount
		err := row.Scan(&c.City, &c.Province, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan sold cities: %w", err)
	}
	return counts, nil
}
