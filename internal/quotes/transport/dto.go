package transport

import (
	"time"

	"travel_backoffice/internal/quotes/sequencer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuotationStatus defines the status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft     QuotationStatus = "draft"
	QuotationStatusSent      QuotationStatus = "sent"
	QuotationStatusConfirmed QuotationStatus = "confirmed"
	QuotationStatusCancelled QuotationStatus = "cancelled"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// CreateQuotationRequest is the request body for creating a quotation header
type CreateQuotationRequest struct {
	ClientName  string `json:"clientName" validate:"required,min=1,max=200"`
	TravelStart string `json:"travelStart" validate:"omitempty,isodate"`
	Pax         int    `json:"pax" validate:"omitempty,min=1,max=500"`
}

// UpdateQuotationRequest is the request body for updating a quotation header
type UpdateQuotationRequest struct {
	ClientName  *string          `json:"clientName" validate:"omitempty,min=1,max=200"`
	TravelStart *string          `json:"travelStart" validate:"omitempty,isodate"`
	Pax         *int             `json:"pax" validate:"omitempty,min=1,max=500"`
	Status      *QuotationStatus `json:"status" validate:"omitempty,oneof=draft sent confirmed cancelled"`
}

// ListQuotationsRequest contains query parameters for listing quotations
type ListQuotationsRequest struct {
	Status    string `form:"status" validate:"omitempty,oneof=draft sent confirmed cancelled"`
	Search    string `form:"search" validate:"max=100"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// InsertItemRequest is the editor insertion form
type InsertItemRequest struct {
	ServiceID   uuid.UUID `json:"serviceId" validate:"required"`
	StartDate   string    `json:"startDate" validate:"required,isodate"`
	EndDate     string    `json:"endDate" validate:"omitempty,isodate"`
	IsOptional  bool      `json:"isOptional"`
	DisplayText string    `json:"displayText" validate:"max=500"`
}

// MoveItemRequest moves an item one day earlier (-1) or later (1)
type MoveItemRequest struct {
	Delta int `json:"delta" validate:"required,oneof=-1 1"`
}

// ServiceOptionsRequest filters the services offered by the insertion form
type ServiceOptionsRequest struct {
	Type  string `form:"type" validate:"required,max=100"`
	Start string `form:"start" validate:"omitempty,isodate"`
	End   string `form:"end" validate:"omitempty,isodate"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// QuotationResponse is a quotation header
type QuotationResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	ClientName  string          `json:"clientName"`
	TravelStart *string         `json:"travelStart,omitempty"`
	Pax         int             `json:"pax"`
	Status      QuotationStatus `json:"status"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// QuotationListResponse is a paginated list of quotation headers
type QuotationListResponse struct {
	Items      []QuotationResponse `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
}

// ServiceOptionResponse is one selectable service in the insertion form
type ServiceOptionResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	ServiceType string    `json:"serviceType"`
	NightCount  *int      `json:"nightCount,omitempty"`
	IsLodging   bool      `json:"isLodging"`
}

// EditorResponse is the rendered editor state
type EditorResponse struct {
	QuotationID uuid.UUID       `json:"quotationId"`
	Rows        []sequencer.Row `json:"rows"`
	Items       int             `json:"items"`
	Total       string          `json:"total"`
	Sync        SyncResponse    `json:"sync"`
}

// SyncResponse reports background persistence health
type SyncResponse struct {
	Pending      int        `json:"pending"`
	Failures     int        `json:"failures"`
	LastError    string     `json:"lastError,omitempty"`
	LastFailedAt *time.Time `json:"lastFailedAt,omitempty"`
}
