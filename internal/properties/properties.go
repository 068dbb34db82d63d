// Package properties holds the listing vocabulary shared by the estimation
// engine and its read-only repository.
package properties

import (
	"fmt"
	"strings"

	"landmatch_backend/platform/validator"

	govalidator "github.com/go-playground/validator/v10"
)

// PropertyType is the closed set of listing types.
type PropertyType string

const (
	TypeLand     PropertyType = "Land"
	TypeBuilding PropertyType = "Building"
)

// ParsePropertyType accepts any casing of a known type.
func ParsePropertyType(raw string) (PropertyType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "land":
		return TypeLand, nil
	case "building":
		return TypeBuilding, nil
	default:
		return "", fmt.Errorf("unknown property type %q", raw)
	}
}

// Province is the closed set of Belgian provinces (plus the Brussels region).
type Province string

const (
	ProvinceAntwerpen      Province = "Antwerpen"
	ProvinceBrussel        Province = "Brussel"
	ProvinceHenegouwen     Province = "Henegouwen"
	ProvinceLimburg        Province = "Limburg"
	ProvinceLuik           Province = "Luik"
	ProvinceLuxemburg      Province = "Luxemburg"
	ProvinceNamen          Province = "Namen"
	ProvinceOostVlaanderen Province = "Oost-Vlaanderen"
	ProvinceVlaamsBrabant  Province = "Vlaams-Brabant"
	ProvinceWaalsBrabant   Province = "Waals-Brabant"
	ProvinceWestVlaanderen Province = "West-Vlaanderen"
)

// Provinces lists every accepted province in display order.
var Provinces = []Province{
	ProvinceAntwerpen,
	ProvinceBrussel,
	ProvinceHenegouwen,
	ProvinceLimburg,
	ProvinceLuik,
	ProvinceLuxemburg,
	ProvinceNamen,
	ProvinceOostVlaanderen,
	ProvinceVlaamsBrabant,
	ProvinceWaalsBrabant,
	ProvinceWestVlaanderen,
}

// ParseProvince matches a province name case-insensitively.
func ParseProvince(raw string) (Province, error) {
	trimmed := strings.TrimSpace(raw)
	for _, p := range Provinces {
		if strings.EqualFold(string(p), trimmed) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown province %q", raw)
}

// SoldListing is a sold property with a recorded final price.
// City is stored normalized (see cities.Normalize); Province and Type keep the
// raw stored value so that rows outside the enums still take part in scoring.
type SoldListing struct {
	City       string
	Province   string
	Type       string
	SizeM2     float64
	FinalPrice float64
}

// IsComparable reports whether the listing can feed a price estimate.
func (l SoldListing) IsComparable() bool {
	return l.SizeM2 > 0 && l.FinalPrice > 0
}

// RegisterValidations adds the `province` and `property_type` tags to val.
func RegisterValidations(val *validator.Validator) error {
	if err := val.RegisterValidation("province", func(fl govalidator.FieldLevel) bool {
		_, err := ParseProvince(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	return val.RegisterValidation("property_type", func(fl govalidator.FieldLevel) bool {
		_, err := ParsePropertyType(fl.Field().String())
		return err == nil
	})
}
