package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/estimation/service"
	"landmatch_backend/internal/estimation/transport"
	"landmatch_backend/internal/properties"
	"landmatch_backend/platform/httpkit"
	"landmatch_backend/platform/sanitize"
	"landmatch_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgNoData         = "No data provided"
	msgInvalidRequest = "Invalid request body"
	msgInvalidSize    = "Invalid size format"
	msgCityRequired   = "City name is required"
)

// Estimator is the price estimation capability the handler needs.
type Estimator interface {
	Estimate(ctx context.Context, req service.Request) (service.Estimate, error)
}

// Handler serves the price estimation and city validation endpoints.
type Handler struct {
	svc   Estimator
	table *cities.Table
	val   *validator.Validator
}

// New creates a new estimation handler.
func New(svc Estimator, table *cities.Table, val *validator.Validator) *Handler {
	return &Handler{svc: svc, table: table, val: val}
}

// RegisterRoutes mounts the endpoints on rg. limit guards the estimation
// endpoint, which may call the external geocoder.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limit gin.HandlerFunc) {
	rg.POST("/estimate-price", limit, h.EstimatePrice)
	rg.POST("/cities/validate", h.ValidateCity)
}

// EstimatePrice handles POST /api/v1/estimate-price.
func (h *Handler) EstimatePrice(c *gin.Context) {
	var req transport.EstimatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		message := msgInvalidRequest
		if errors.Is(err, io.EOF) {
			message = msgNoData
		}
		estimationFailure(c, http.StatusBadRequest, message)
		return
	}
	req.City = sanitize.Name(req.City)
	if missing := req.MissingFields(); len(missing) > 0 {
		estimationFailure(c, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	size, err := req.ParseSize()
	if err != nil {
		estimationFailure(c, http.StatusBadRequest, msgInvalidSize)
		return
	}
	if err := h.val.Struct(req); err != nil {
		estimationFailure(c, http.StatusBadRequest, validator.Describe(err))
		return
	}

	province, _ := properties.ParseProvince(req.Province)
	propertyType, _ := properties.ParsePropertyType(req.Type)

	estimate, err := h.svc.Estimate(c.Request.Context(), service.Request{
		Province: province,
		City:     req.City,
		Type:     propertyType,
		SizeM2:   size,
	})
	if err != nil {
		estimationFailure(c, httpkit.StatusFor(err), httpkit.MessageFor(err))
		return
	}

	httpkit.OK(c, toResult(estimate))
}

// ValidateCity handles POST /api/v1/cities/validate.
func (h *Handler) ValidateCity(c *gin.Context) {
	var req transport.ValidateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.JSON(c, http.StatusBadRequest, transport.ValidateCityResponse{Error: msgCityRequired})
		return
	}
	city := sanitize.Name(req.City)
	if city == "" {
		httpkit.JSON(c, http.StatusBadRequest, transport.ValidateCityResponse{Error: msgCityRequired})
		return
	}

	v := h.table.Validate(city, req.Province)
	if !v.Valid {
		httpkit.OK(c, transport.ValidateCityResponse{Success: true, Error: v.Reason})
		return
	}
	httpkit.OK(c, transport.ValidateCityResponse{Success: true, Valid: true, City: v.City})
}

func estimationFailure(c *gin.Context, status int, message string) {
	httpkit.JSON(c, status, transport.EstimationResult{Error: message})
}

func toResult(e service.Estimate) transport.EstimationResult {
	result := transport.EstimationResult{Success: true, Message: e.Message}
	if e.HasRange {
		lo, hi := e.PriceMin, e.PriceMax
		result.PriceMin = &lo
		result.PriceMax = &hi
	}
	if e.Fallback != nil {
		distance := e.Fallback.DistanceKm
		result.FallbackCity = cities.Title(e.Fallback.City)
		result.FallbackDistanceKm = &distance
	}
	return result
}
