// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"travel_backoffice/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Catalog Domain Events
// =============================================================================

// CatalogGroupChanged is published when an entry of a catalog group is
// created, updated or deleted.
type CatalogGroupChanged struct {
	BaseEvent
	Group string `json:"group"`
}

func (e CatalogGroupChanged) EventName() string { return "catalog.group.changed" }

// =============================================================================
// Service Directory Events
// =============================================================================

// ServiceChanged is published when a service, its schedule or its prices change.
type ServiceChanged struct {
	BaseEvent
	ServiceID uuid.UUID `json:"serviceId"`
	Reason    string    `json:"reason"`
}

func (e ServiceChanged) EventName() string { return "services.service.changed" }

// ServiceChanged reasons.
const (
	ServiceCreated = "created"
	ServiceUpdated = "updated"
	ServiceDeleted = "deleted"
	ServicePrices  = "prices"
)

// AffectsPrices reports whether item prices may differ after the change.
func (e ServiceChanged) AffectsPrices() bool {
	return e.Reason == ServicePrices || e.Reason == ServiceUpdated
}

// ProviderChanged is published when a provider is created, updated or deleted.
type ProviderChanged struct {
	BaseEvent
	ProviderID uuid.UUID `json:"providerId"`
}

func (e ProviderChanged) EventName() string { return "services.provider.changed" }


// =============================================================================
// Quotation Events
// =============================================================================

// QuotationDeleted is published after a quotation header and its items are removed.
type QuotationDeleted struct {
	BaseEvent
	QuotationID uuid.UUID `json:"quotationId"`
}

func (e QuotationDeleted) EventName() string { return "quotes.quotation.deleted" }
