// Package estimation provides the price estimation bounded context module.
package estimation

import (
	"landmatch_backend/internal/cities"
	"landmatch_backend/internal/estimation/handler"
	"landmatch_backend/internal/estimation/service"
	apphttp "landmatch_backend/internal/http"
	"landmatch_backend/internal/properties/repository"
	"landmatch_backend/platform/logger"
	"landmatch_backend/platform/validator"
)

// Module is the estimation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the estimator over the listing repository and the shared
// coordinate resolver.
func NewModule(repo repository.Reader, resolver service.Resolver, table *cities.Table, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, resolver, log)
	return &Module{handler: handler.New(svc, table, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "estimation"
}

// RegisterRoutes mounts the estimation routes on /api/v1.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1, ctx.EstimateRateLimiter.RateLimit())
}

var _ apphttp.Module = (*Module)(nil)
