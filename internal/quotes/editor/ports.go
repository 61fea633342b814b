// Package editor runs quotation editor sessions. A session owns the item
// list of one quotation, applies user commands one at a time and pushes the
// resulting writes to the quotation store.
package editor

import (
	"context"

	"travel_backoffice/internal/quotes/sequencer"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the quotation store as seen by the editor. Implementations return
// items in canonical shape, ordered by position.
type Store interface {
	FetchItems(ctx context.Context, quotationID uuid.UUID) ([]sequencer.Item, error)
	// InsertItem appends the item after the current last position.
	InsertItem(ctx context.Context, quotationID uuid.UUID, item sequencer.Item) (sequencer.Item, error)
	// UpdateItemDate returns the item's price at the new date.
	UpdateItemDate(ctx context.Context, itemID uuid.UUID, date civil.Date) (decimal.NullDecimal, error)
	ReorderItems(ctx context.Context, quotationID uuid.UUID, positions []sequencer.Position) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

// Directory resolves services for insertion and display.
type Directory interface {
	GetServiceInfo(ctx context.Context, id uuid.UUID) (*sequencer.ServiceInfo, error)
	ServiceLabels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	ListOptions(ctx context.Context, serviceType string) ([]sequencer.ServiceOption, error)
}

// LookupEntry is one enumerated catalog value.
type LookupEntry struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CatalogReader resolves catalog groups such as cities or service types.
type CatalogReader interface {
	ListGroup(ctx context.Context, group string) ([]LookupEntry, error)
}

// TotalRefresher schedules recomputation of the stored quotation total.
type TotalRefresher interface {
	EnqueueRefreshTotal(ctx context.Context, quotationID uuid.UUID) error
}
