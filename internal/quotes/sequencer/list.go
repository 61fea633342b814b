package sequencer

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"travel_backoffice/platform/apperr"
)

// Move directions.
const (
	Earlier = -1
	Later   = 1
)

// List is the ordered item sequence of one quotation. An item's sequence
// position is always its index + 1 and is never stored separately.
// List is not safe for concurrent use; the editor serializes access.
type List struct {
	cls   *Classifier
	items []Item
}

// NewList creates an empty list using cls to derive item flags.
func NewList(cls *Classifier) *List {
	if cls == nil {
		cls = DefaultClassifier()
	}
	return &List{cls: cls}
}

// Load replaces the list wholesale.
func (l *List) Load(items []Item) {
	l.items = make([]Item, len(items))
	for i, it := range items {
		l.cls.Apply(&it)
		l.items[i] = it
	}
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.items)
}

// Items returns a copy of the current order.
func (l *List) Items() []Item {
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// At returns the item at index.
func (l *List) At(index int) (Item, error) {
	if err := l.checkIndex(index); err != nil {
		return Item{}, err
	}
	return l.items[index], nil
}

// CheckAppend validates an item before it is persisted and appended.
func (l *List) CheckAppend(item Item) error {
	l.cls.Apply(&item)
	if !item.HasDate() {
		return apperr.Validation("scheduled date is required")
	}
	if item.IsLodging && (item.NightCount == nil || *item.NightCount < 1) {
		return apperr.Validation("lodging items need a positive night count")
	}
	return nil
}

// Append adds item at the end of the list. New items always go last.
func (l *List) Append(item Item) error {
	if err := l.CheckAppend(item); err != nil {
		return err
	}
	l.cls.Apply(&item)
	l.items = append(l.items, item)
	return nil
}

// MoveResult describes what a move did.
type MoveResult struct {
	// Item is the moved item after its date shift.
	Item Item
	// Shifted is false when the item had no date and the move was a no-op.
	Shifted bool
	// Swapped reports whether the item changed position.
	Swapped bool
	// Index is the item's index after the move.
	Index int
}

// Move shifts the item at index one day in the direction of delta and swaps
// it with the neighbour in that direction when the new date strictly
// crosses the neighbour's date. Ties never swap.
func (l *List) Move(index, delta int) (MoveResult, error) {
	if delta != Earlier && delta != Later {
		return MoveResult{}, apperr.Validation("delta must be -1 or 1")
	}
	if err := l.checkIndex(index); err != nil {
		return MoveResult{}, err
	}

	moved := l.items[index]
	if !moved.HasDate() {
		return MoveResult{Item: moved, Index: index}, nil
	}

	moved.ScheduledDate = moved.ScheduledDate.AddDays(delta)
	l.items[index] = moved

	result := MoveResult{Item: moved, Shifted: true, Index: index}

	neighbour := index + delta
	if neighbour < 0 || neighbour >= len(l.items) {
		return result, nil
	}
	other := l.items[neighbour]
	if !other.HasDate() {
		return result, nil
	}

	crosses := (delta == Earlier && moved.ScheduledDate.Before(other.ScheduledDate)) ||
		(delta == Later && moved.ScheduledDate.After(other.ScheduledDate))
	if crosses {
		l.items[index], l.items[neighbour] = l.items[neighbour], l.items[index]
		result.Swapped = true
		result.Index = neighbour
	}
	return result, nil
}

// Remove deletes the item at index.
func (l *List) Remove(index int) (Item, error) {
	if err := l.checkIndex(index); err != nil {
		return Item{}, err
	}
	removed := l.items[index]
	l.items = append(l.items[:index], l.items[index+1:]...)
	return removed, nil
}

// Reprice sets the price of the item with id when it is still scheduled on
// date. It reports whether an item was updated.
func (l *List) Reprice(id uuid.UUID, date civil.Date, price decimal.NullDecimal) bool {
	for i := range l.items {
		if l.items[i].ID != id {
			continue
		}
		if l.items[i].ScheduledDate != date {
			return false
		}
		l.items[i].Price = price
		l.cls.Apply(&l.items[i])
		return true
	}
	return false
}

// Positions returns the index → position mapping of the current order.
func (l *List) Positions() []Position {
	out := make([]Position, 0, len(l.items))
	for i, it := range l.items {
		out = append(out, Position{ItemID: it.ID, Position: i + 1})
	}
	return out
}

// Total sums the prices of non-optional items. Missing, zero and negative
// prices contribute nothing.
func (l *List) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range l.items {
		if it.IsOptional || !it.Price.Valid || !it.Price.Decimal.IsPositive() {
			continue
		}
		total = total.Add(it.Price.Decimal)
	}
	return total
}

func (l *List) checkIndex(index int) error {
	if index < 0 || index >= len(l.items) {
		return apperr.NotFound("item not found").WithDetails(map[string]int{"index": index})
	}
	return nil
}
