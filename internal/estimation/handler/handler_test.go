package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/estimation/service"
	"landmatch_backend/internal/estimation/transport"
	"landmatch_backend/internal/properties"
	"landmatch_backend/platform/apperr"
	"landmatch_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
)

type fakeEstimator struct {
	got      []service.Request
	estimate service.Estimate
	err      error
}

func (f *fakeEstimator) Estimate(_ context.Context, req service.Request) (service.Estimate, error) {
	f.got = append(f.got, req)
	return f.estimate, f.err
}

func newTestRouter(t *testing.T, est Estimator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	val := validator.New()
	if err := properties.RegisterValidations(val); err != nil {
		t.Fatalf("register validations: %v", err)
	}

	engine := gin.New()
	New(est, cities.Default(), val).RegisterRoutes(engine.Group("/api/v1"), func(c *gin.Context) { c.Next() })
	return engine
}

func post(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) transport.EstimationResult {
	t.Helper()
	var result transport.EstimationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return result
}

func ptr(v float64) *float64 { return &v }

func TestEstimatePriceSuccessWithFallback(t *testing.T) {
	est := &fakeEstimator{estimate: service.Estimate{
		HasRange: true,
		PriceMin: 50000,
		PriceMax: 150000,
		Fallback: &service.FallbackResult{City: "niel", DistanceKm: 3.89},
		Message:  "Limited data in Boom. Used nearby city Niel (3.89km away) for comparison.",
	}}
	engine := newTestRouter(t, est)

	rec := post(engine, "/api/v1/estimate-price", `{"province":"antwerpen","city":"Boom","type":"land","size":"1000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	want := transport.EstimationResult{
		Success:            true,
		PriceMin:           ptr(50000),
		PriceMax:           ptr(150000),
		FallbackCity:       "Niel",
		FallbackDistanceKm: ptr(3.89),
		Message:            "Limited data in Boom. Used nearby city Niel (3.89km away) for comparison.",
	}
	if diff := cmp.Diff(want, decodeResult(t, rec)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}

	wantReq := service.Request{Province: properties.ProvinceAntwerpen, City: "Boom", Type: properties.TypeLand, SizeM2: 1000}
	if len(est.got) != 1 || est.got[0] != wantReq {
		t.Fatalf("unexpected service request %+v", est.got)
	}
}

func TestEstimatePriceNoDataKeepsNullBounds(t *testing.T) {
	engine := newTestRouter(t, &fakeEstimator{estimate: service.Estimate{Message: "No sold properties available for comparison"}})

	rec := post(engine, "/api/v1/estimate-price", `{"province":"Limburg","city":"Hasselt","type":"Building","size":120}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"priceMin":null`) || !strings.Contains(rec.Body.String(), `"priceMax":null`) {
		t.Fatalf("expected explicit null bounds, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "fallbackCity") {
		t.Fatalf("did not expect fallback fields, got %s", rec.Body.String())
	}
}

func TestEstimatePriceRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "empty body", body: ``, want: "No data provided"},
		{name: "missing fields", body: `{"city":"Boom","size":0}`, want: "Missing required fields: province, size, type"},
		{name: "unknown province", body: `{"province":"Gelderland","city":"Boom","type":"Land","size":10}`, want: "province failed on 'province'"},
		{name: "unknown type", body: `{"province":"Antwerpen","city":"Boom","type":"Castle","size":10}`, want: "type failed on 'property_type'"},
		{name: "size not a number", body: `{"province":"Antwerpen","city":"Boom","type":"Land","size":"groot"}`, want: "Invalid size format"},
		{name: "size out of range", body: `{"province":"Antwerpen","city":"Boom","type":"Land","size":1e400}`, want: "Invalid size format"},
		{name: "size is an object", body: `{"province":"Antwerpen","city":"Boom","type":"Land","size":{"m2":10}}`, want: "Invalid size format"},
		{name: "malformed body", body: `{"province":"Antwerpen",`, want: "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := &fakeEstimator{}
			rec := post(newTestRouter(t, est), "/api/v1/estimate-price", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			result := decodeResult(t, rec)
			if result.Success || result.Error != tt.want {
				t.Fatalf("expected error %q, got %+v", tt.want, result)
			}
			if len(est.got) != 0 {
				t.Fatal("service must not be called on bad input")
			}
		})
	}
}

func TestEstimatePriceMapsServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{err: apperr.Validation("Size must be a positive number"), status: http.StatusBadRequest, msg: "Size must be a positive number"},
		{err: apperr.Unavailable("could not load sold listings", errors.New("down")), status: http.StatusServiceUnavailable, msg: "could not load sold listings"},
		{err: errors.New("boom"), status: http.StatusInternalServerError, msg: "internal server error"},
	}

	for _, tt := range tests {
		engine := newTestRouter(t, &fakeEstimator{err: tt.err})
		rec := post(engine, "/api/v1/estimate-price", `{"province":"Antwerpen","city":"Boom","type":"Land","size":-5}`)
		if rec.Code != tt.status {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.status, rec.Code)
		}
		if result := decodeResult(t, rec); result.Success || result.Error != tt.msg {
			t.Fatalf("%v: unexpected body %+v", tt.err, result)
		}
	}
}

func TestValidateCity(t *testing.T) {
	engine := newTestRouter(t, &fakeEstimator{})

	tests := []struct {
		body   string
		status int
		want   transport.ValidateCityResponse
	}{
		{
			body:   `{"city":" Boom ","province":"Antwerpen"}`,
			status: http.StatusOK,
			want:   transport.ValidateCityResponse{Success: true, Valid: true, City: "boom"},
		},
		{
			body:   `{"city":"boom","province":"Limburg"}`,
			status: http.StatusOK,
			want:   transport.ValidateCityResponse{Success: true, Error: "'Boom' is not in Limburg. This city is located in Antwerpen."},
		},
		{
			body:   `{"city":"Atlantis"}`,
			status: http.StatusOK,
			want:   transport.ValidateCityResponse{Success: true, Error: "'Atlantis' is not a recognized Belgian city. Please check the spelling."},
		},
		{
			body:   `{"city":"  "}`,
			status: http.StatusBadRequest,
			want:   transport.ValidateCityResponse{Error: "City name is required"},
		},
	}

	for _, tt := range tests {
		rec := post(engine, "/api/v1/cities/validate", tt.body)
		if rec.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.body, tt.status, rec.Code)
		}
		var got transport.ValidateCityResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", tt.body, diff)
		}
	}
}

func TestValidateCityStripsMarkup(t *testing.T) {
	rec := post(newTestRouter(t, &fakeEstimator{}), "/api/v1/cities/validate", `{"city":"<img src=x>Atlantis"}`)

	var got transport.ValidateCityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Contains(got.Error, "<") || !strings.Contains(got.Error, "'Atlantis'") {
		t.Fatalf("expected sanitized echo, got %q", got.Error)
	}
}
