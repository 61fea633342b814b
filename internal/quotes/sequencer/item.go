// Package sequencer holds the in-memory model of a quotation's ordered item
// list: reordering with date shifts, lodging night spans, rendering and totals.
// It performs no I/O; the editor package drives persistence.
package sequencer

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one line of a quotation.
type Item struct {
	// ID is assigned by the quotation store; uuid.Nil until persisted.
	ID               uuid.UUID
	ServiceRef       uuid.UUID
	City             string
	ServiceTypeLabel string
	// ScheduledDate is the check-in date for lodging, the service date otherwise.
	ScheduledDate civil.Date
	// NightCount is set only for lodging items and is always >= 1.
	NightCount  *int
	DisplayText string
	Price       decimal.NullDecimal
	IsOptional  bool

	// Derived by Classifier.Apply.
	IsLodging   bool
	PriceExempt bool
}

// HasDate reports whether the item carries a scheduled date.
func (it Item) HasDate() bool {
	return it.ScheduledDate.IsValid()
}

// EndDate returns the check-out date of a lodging item.
func (it Item) EndDate() (civil.Date, bool) {
	if !it.IsLodging || it.NightCount == nil || !it.HasDate() {
		return civil.Date{}, false
	}
	return it.ScheduledDate.AddDays(*it.NightCount), true
}

// Label returns the display text with the fallback chain
// explicit text → lookup(serviceRef) → "#<serviceRef>".
func (it Item) Label(lookup func(uuid.UUID) (string, bool)) string {
	if it.DisplayText != "" {
		return it.DisplayText
	}
	if lookup != nil {
		if text, ok := lookup(it.ServiceRef); ok && text != "" {
			return text
		}
	}
	return fmt.Sprintf("#%s", it.ServiceRef)
}

// Position maps an item id to its 1-based sequence position.
type Position struct {
	ItemID   uuid.UUID `json:"itemId"`
	Position int       `json:"position"`
}
