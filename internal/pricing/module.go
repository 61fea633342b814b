// Package pricing provides the monthly price grid of directory services.
package pricing

import (
	"travel_backoffice/internal/events"
	apphttp "travel_backoffice/internal/http"
	"travel_backoffice/internal/pricing/handler"
	"travel_backoffice/internal/pricing/repository"
	"travel_backoffice/internal/pricing/service"
	"travel_backoffice/platform/logger"
	"travel_backoffice/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the pricing module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the pricing module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	svc.SetEventBus(eventBus)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pricing"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the price grid routes under each service.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	prices := ctx.V1.Group("/services/:id/prices")
	prices.GET("", m.handler.Grid)
	prices.PUT("", m.handler.Upsert)
	prices.GET("/lookup", m.handler.Lookup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
