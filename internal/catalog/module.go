// Package catalog provides the enumerated lookup groups (cities, service
// types, room types) used by forms across the back office.
package catalog

import (
	"travel_backoffice/internal/catalog/handler"
	"travel_backoffice/internal/catalog/repository"
	"travel_backoffice/internal/catalog/service"
	"travel_backoffice/internal/events"
	apphttp "travel_backoffice/internal/http"
	"travel_backoffice/platform/config"
	"travel_backoffice/platform/logger"
	"travel_backoffice/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module. rdb may be nil, in
// which case every lookup reads the database.
func NewModule(pool *pgxpool.Pool, rdb redis.Cmdable, eventBus events.Bus, val *validator.Validator, cfg config.CacheConfig, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), rdb, cfg.GetCatalogCacheTTL(), log)
	svc.SetEventBus(eventBus)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	catalogs := ctx.V1.Group("/catalogs")
	catalogs.GET("", m.handler.ListGroups)
	catalogs.GET("/:group", m.handler.GetGroup)
	catalogs.PUT("/:group/:value", m.handler.UpsertEntry)
	catalogs.DELETE("/:group/:value", m.handler.DeleteEntry)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
