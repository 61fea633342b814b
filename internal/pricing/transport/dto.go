package transport

import "github.com/google/uuid"

// PriceEntryRequest is one grid cell to write.
type PriceEntryRequest struct {
	Category string `json:"category" validate:"max=60"`
	RoomType string `json:"roomType" validate:"max=60"`
	Year     int    `json:"year" validate:"min=2000,max=2100"`
	Month    int    `json:"month" validate:"min=1,max=12"`
	Price    string `json:"price" validate:"required,max=20"`
}

// UpsertPricesRequest writes several grid cells of one service.
type UpsertPricesRequest struct {
	Entries []PriceEntryRequest `json:"entries" validate:"required,min=1,max=480,dive"`
}

// GridRequest selects the year of a grid.
type GridRequest struct {
	Year int `form:"year" validate:"omitempty,min=2000,max=2100"`
}

// LookupRequest selects a single price.
type LookupRequest struct {
	Date     string `form:"date" validate:"required,isodate"`
	RoomType string `form:"roomType" validate:"max=60"`
}

// PriceEntryResponse is one grid cell.
type PriceEntryResponse struct {
	Category string `json:"category"`
	RoomType string `json:"roomType"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Price    string `json:"price"`
}

// GridResponse is the price grid of one service for one year.
type GridResponse struct {
	ServiceID uuid.UUID            `json:"serviceId"`
	Year      int                  `json:"year"`
	Entries   []PriceEntryResponse `json:"entries"`
}

// LookupResponse is the price that applies on a date. Price is nil when
// the grid has no matching cell.
type LookupResponse struct {
	ServiceID uuid.UUID `json:"serviceId"`
	Date      string    `json:"date"`
	RoomType  string    `json:"roomType"`
	Price     *string   `json:"price"`
}
