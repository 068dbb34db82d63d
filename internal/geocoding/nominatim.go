package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"landmatch_backend/internal/geo"
	"landmatch_backend/platform/config"
	"landmatch_backend/platform/logger"
)

// NominatimClient queries the OpenStreetMap search API with structured
// city/country/state parameters.
type NominatimClient struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *http.Client
	log       *logger.Logger
}

// nominatimResponse mirrors the relevant parts of the OSM search payload.
type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// NewNominatimClient creates a client with the configured endpoint, user agent and timeout.
func NewNominatimClient(cfg config.GeocodingConfig, log *logger.Logger) *NominatimClient {
	return &NominatimClient{
		baseURL:   cfg.GetNominatimURL(),
		userAgent: cfg.GetNominatimUserAgent(),
		timeout:   cfg.GetGeocodeTimeout(),
		client:    &http.Client{Timeout: cfg.GetGeocodeTimeout()},
		log:       log,
	}
}

// Search implements Lookup. Only the first match is used.
func (c *NominatimClient) Search(ctx context.Context, q Query) (Result, error) {
	params := url.Values{}
	params.Add("city", q.City)
	params.Add("country", q.Country)
	if strings.TrimSpace(q.State) != "" {
		params.Add("state", q.State)
	}
	params.Add("format", "json")
	params.Add("limit", "1")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("nominatim request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("nominatim upstream error: %d", resp.StatusCode)
	}

	var rawResults []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResults); err != nil {
		return Result{}, fmt.Errorf("decode nominatim payload: %w", err)
	}
	if len(rawResults) == 0 {
		return Result{}, nil
	}

	coordinate, err := parseCoordinate(rawResults[0])
	if err != nil {
		return Result{}, err
	}
	c.log.WithContext(ctx).Debug("nominatim match", "city", q.City, "displayName", rawResults[0].DisplayName, "coordinate", coordinate.String())
	return Result{Found: true, Coordinate: coordinate}, nil
}

func parseCoordinate(raw nominatimResponse) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(raw.Lat), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", raw.Lat, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(raw.Lon), 64)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", raw.Lon, err)
	}
	return geo.Coordinate{Latitude: lat, Longitude: lon}, nil
}

var _ Lookup = (*NominatimClient)(nil)
