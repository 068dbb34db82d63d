package transport

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var errSizeFormat = errors.New("size is not a number")

// Request DTOs

// EstimatePriceRequest accepts size as a JSON number or a numeric string.
// Size is kept raw so a malformed value is reported as such rather than as
// an undecodable body.
type EstimatePriceRequest struct {
	Province string          `json:"province" validate:"province"`
	City     string          `json:"city" validate:"min=1,max=100"`
	Type     string          `json:"type" validate:"property_type"`
	Size     json.RawMessage `json:"size"`
}

// MissingFields lists the required fields that are absent or empty, in a
// fixed order. A size of zero counts as missing.
func (r EstimatePriceRequest) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Province) == "" {
		missing = append(missing, "province")
	}
	if strings.TrimSpace(r.City) == "" {
		missing = append(missing, "city")
	}
	if r.sizeMissing() {
		missing = append(missing, "size")
	}
	if strings.TrimSpace(r.Type) == "" {
		missing = append(missing, "type")
	}
	return missing
}

// ParseSize reads size from a JSON number or a string holding one.
func (r EstimatePriceRequest) ParseSize() (float64, error) {
	raw := strings.TrimSpace(string(r.Size))
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return 0, errSizeFormat
		}
		raw = strings.TrimSpace(unquoted)
	}
	size, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errSizeFormat
	}
	return size, nil
}

// sizeMissing reports an absent, null, false or empty-string size, and a
// numeric zero.
func (r EstimatePriceRequest) sizeMissing() bool {
	raw := strings.TrimSpace(string(r.Size))
	switch raw {
	case "", "null", "false", `""`:
		return true
	}
	if strings.HasPrefix(raw, `"`) {
		return false
	}
	size, err := strconv.ParseFloat(raw, 64)
	return err == nil && size == 0
}

type ValidateCityRequest struct {
	City     string `json:"city"`
	Province string `json:"province"`
}

// Response DTOs

// EstimationResult is the wire shape of an estimation, for failures too.
type EstimationResult struct {
	Success            bool     `json:"success"`
	PriceMin           *float64 `json:"priceMin"`
	PriceMax           *float64 `json:"priceMax"`
	FallbackCity       string   `json:"fallbackCity,omitempty"`
	FallbackDistanceKm *float64 `json:"fallbackDistanceKm,omitempty"`
	Message            string   `json:"message,omitempty"`
	Error              string   `json:"error,omitempty"`
}

type ValidateCityResponse struct {
	Success bool   `json:"success"`
	Valid   bool   `json:"valid"`
	City    string `json:"city,omitempty"`
	Error   string `json:"error,omitempty"`
}
