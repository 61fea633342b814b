// Package quotes provides the quotations domain module: headers, items and
// the interactive item editor.
package quotes

import (
	apphttp "travel_backoffice/internal/http"
	"travel_backoffice/internal/quotes/editor"
	"travel_backoffice/internal/quotes/handler"
	"travel_backoffice/internal/quotes/repository"
	"travel_backoffice/internal/quotes/sequencer"
	"travel_backoffice/internal/quotes/service"
	"travel_backoffice/platform/config"
	"travel_backoffice/platform/events"
	"travel_backoffice/platform/logger"
	"travel_backoffice/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PrewarmGroups are the catalog groups loaded when an editor opens.
var PrewarmGroups = []string{"cities", "service_types"}

// Deps are the collaborators the module gets from other modules.
type Deps struct {
	Directory editor.Directory
	Catalog   editor.CatalogReader
	Refresher editor.TotalRefresher
}

// Module represents the quotations domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
	editors *editor.Registry
}

// NewModule creates a new quotations module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus *events.InMemoryBus, val *validator.Validator, cls *sequencer.Classifier, cfg config.EditorConfig, log *logger.Logger, deps Deps) *Module {
	repo := repository.New(pool)

	editors := editor.NewRegistry(editor.Deps{
		Store:         repo,
		Directory:     deps.Directory,
		Catalog:       deps.Catalog,
		Refresher:     deps.Refresher,
		Classifier:    cls,
		Log:           log,
		PrewarmGroups: PrewarmGroups,
	}, cfg)
	editors.RegisterHandlers(eventBus)

	svc := service.New(repo, editors, cls, log)
	svc.SetEventBus(eventBus)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		editors: editors,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Start schedules the idle editor sweep.
func (m *Module) Start() error {
	return m.editors.Start()
}

// Stop closes every open editor after draining its pending writes.
func (m *Module) Stop() {
	m.editors.Stop()
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/quotes"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
