package sequencer

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// DateLayout is the display layout for dates in rendered rows.
const DateLayout = "02/01/2006"

const emptyCell = "-"

// RowKind distinguishes group headers from item rows.
type RowKind string

const (
	RowGroupHeader RowKind = "group"
	RowItem        RowKind = "item"
)

// Row is one rendered line of the editor table.
type Row struct {
	Kind RowKind `json:"kind"`
	City string  `json:"city,omitempty"`

	// Item rows only.
	Index       int        `json:"index"`
	Position    int        `json:"position,omitempty"`
	ItemID      *uuid.UUID `json:"itemId,omitempty"`
	ServiceRef  *uuid.UUID `json:"serviceRef,omitempty"`
	ServiceType string     `json:"serviceType,omitempty"`
	DisplayText string     `json:"displayText,omitempty"`
	DateLabel   string     `json:"dateLabel,omitempty"`
	NightCount  *int       `json:"nightCount,omitempty"`
	PriceLabel  string     `json:"priceLabel,omitempty"`
	IsLodging   bool       `json:"isLodging"`
	IsOptional  bool       `json:"isOptional"`
}

// Render produces the display rows for the current order. A group header is
// emitted whenever a lodging item's city differs from the previous lodging
// item's city; non-lodging items neither trigger nor reset headers.
func (l *List) Render(lookup func(uuid.UUID) (string, bool)) []Row {
	rows := make([]Row, 0, len(l.items)+1)

	lastLodgingCity := ""
	seenLodging := false
	for i, it := range l.items {
		if it.IsLodging {
			if !seenLodging || it.City != lastLodgingCity {
				rows = append(rows, Row{Kind: RowGroupHeader, City: it.City, Index: i})
			}
			seenLodging = true
			lastLodgingCity = it.City
		}

		id := it.ID
		ref := it.ServiceRef
		rows = append(rows, Row{
			Kind:        RowItem,
			City:        it.City,
			Index:       i,
			Position:    i + 1,
			ItemID:      &id,
			ServiceRef:  &ref,
			ServiceType: it.ServiceTypeLabel,
			DisplayText: it.Label(lookup),
			DateLabel:   DateLabel(it),
			NightCount:  it.NightCount,
			PriceLabel:  PriceLabel(it),
			IsLodging:   it.IsLodging,
			IsOptional:  it.IsOptional,
		})
	}
	return rows
}

// DateLabel formats a lodging item as "start - end" and anything else as a
// single date.
func DateLabel(it Item) string {
	if !it.HasDate() {
		return emptyCell
	}
	if end, ok := it.EndDate(); ok {
		return formatDate(it.ScheduledDate) + " - " + formatDate(end)
	}
	return formatDate(it.ScheduledDate)
}

// PriceLabel is "-" for optional or unpriced items, else the price with two
// decimals.
func PriceLabel(it Item) string {
	if it.IsOptional || !it.Price.Valid {
		return emptyCell
	}
	return it.Price.Decimal.StringFixed(2)
}

func formatDate(d civil.Date) string {
	return d.In(time.UTC).Format(DateLayout)
}
