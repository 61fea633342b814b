// Package services provides the service directory module: providers and the
// bookable services they offer.
package services

import (
	"travel_backoffice/internal/events"
	apphttp "travel_backoffice/internal/http"
	"travel_backoffice/internal/services/handler"
	"travel_backoffice/internal/services/repository"
	"travel_backoffice/internal/services/service"
	"travel_backoffice/platform/config"
	"travel_backoffice/platform/logger"
	"travel_backoffice/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the service directory module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the services module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.DirectoryConfig, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), cfg.GetPhoneDefaultRegion(), log)
	svc.SetEventBus(eventBus)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "services"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts provider and service routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	providers := ctx.V1.Group("/providers")
	providers.GET("", m.handler.ListProviders)
	providers.POST("", m.handler.CreateProvider)
	providers.GET("/:id", m.handler.GetProvider)
	providers.DELETE("/:id", m.handler.DeleteProvider)

	services := ctx.V1.Group("/services")
	services.GET("", m.handler.ListServices)
	services.POST("", m.handler.CreateService)
	services.GET("/:id", m.handler.GetService)
	services.PUT("/:id", m.handler.UpdateService)
	services.DELETE("/:id", m.handler.DeleteService)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
