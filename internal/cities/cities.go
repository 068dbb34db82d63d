// Package cities exposes the static reference dataset of Belgian municipalities:
// their coordinates and the province that governs them. The dataset is embedded
// in the binary, loaded once, and never mutated afterwards.
package cities

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"landmatch_backend/internal/geo"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed belgium.yaml
var belgiumYAML []byte

// Normalize returns the lookup form of a city name: NFC, trimmed, lower-case.
func Normalize(name string) string {
	// Casers are stateful and cannot be shared between goroutines.
	return cases.Lower(language.Und).String(norm.NFC.String(strings.TrimSpace(name)))
}

// Title returns a display form of a normalized city name ("sint-niklaas" -> "Sint-Niklaas").
func Title(name string) string {
	return cases.Title(language.Dutch).String(name)
}

// Reference is a single known municipality.
type Reference struct {
	Name       string
	Province   string
	Coordinate geo.Coordinate
}

// Table is the immutable lookup table. Several aliases (e.g. "bergen" and "mons")
// may map to the same coordinate.
type Table struct {
	coordinates map[string]geo.Coordinate
	provinces   map[string]string
}

type document struct {
	Coordinates map[string][2]float64 `yaml:"coordinates"`
	Provinces   map[string]string     `yaml:"provinces"`
}

// Parse builds a Table from a YAML document with `coordinates` and `provinces` maps.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse city reference data: %w", err)
	}

	t := &Table{
		coordinates: make(map[string]geo.Coordinate, len(doc.Coordinates)),
		provinces:   make(map[string]string, len(doc.Provinces)),
	}
	for name, latLon := range doc.Coordinates {
		t.coordinates[Normalize(name)] = geo.Coordinate{Latitude: latLon[0], Longitude: latLon[1]}
	}
	for name, province := range doc.Provinces {
		t.provinces[Normalize(name)] = strings.TrimSpace(province)
	}
	return t, nil
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(belgiumYAML)
})

// Default returns the embedded Belgian reference table.
func Default() *Table {
	t, err := loadDefault()
	if err != nil {
		// The embedded document is part of the build; failing here is a packaging bug.
		panic(err)
	}
	return t
}

// Coordinate looks a city up by name (case-insensitive, trimmed).
func (t *Table) Coordinate(city string) (geo.Coordinate, bool) {
	c, ok := t.coordinates[Normalize(city)]
	return c, ok
}

// Province returns the province governing the city, when known.
func (t *Table) Province(city string) (string, bool) {
	p, ok := t.provinces[Normalize(city)]
	return p, ok
}

// Lookup returns the full reference entry for a city with known coordinates.
func (t *Table) Lookup(city string) (Reference, bool) {
	name := Normalize(city)
	c, ok := t.coordinates[name]
	if !ok {
		return Reference{}, false
	}
	return Reference{Name: name, Province: t.provinces[name], Coordinate: c}, true
}

// Len reports the number of cities with known coordinates.
func (t *Table) Len() int {
	return len(t.coordinates)
}
