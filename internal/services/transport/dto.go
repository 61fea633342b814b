package transport

import "github.com/google/uuid"

// CreateProviderRequest contains data for registering a provider.
type CreateProviderRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	City  string  `json:"city" validate:"required,min=1,max=100"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
}

// ProviderResponse represents a provider in API responses.
type ProviderResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

// ProviderListResponse wraps a list of providers.
type ProviderListResponse struct {
	Items []ProviderResponse `json:"items"`
}

// ServiceRequest contains data for creating or replacing a service.
type ServiceRequest struct {
	ProviderID  uuid.UUID `json:"providerId" validate:"required"`
	City        string    `json:"city" validate:"required,min=1,max=100"`
	ServiceType string    `json:"serviceType" validate:"required,min=1,max=60"`
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	NightCount  *int      `json:"nightCount,omitempty" validate:"omitempty,min=1,max=60"`
	RoomType    *string   `json:"roomType,omitempty" validate:"omitempty,max=60"`
	Times       []string  `json:"times,omitempty" validate:"omitempty,max=24,dive,datetime=15:04"`
}

// ListServicesRequest filters the service listing.
type ListServicesRequest struct {
	ServiceType string `form:"type" validate:"omitempty,max=60"`
	City        string `form:"city" validate:"omitempty,max=100"`
	ProviderID  string `form:"providerId" validate:"omitempty,uuid"`
	Search      string `form:"search" validate:"omitempty,max=100"`
	Page        int    `form:"page" validate:"omitempty,min=1"`
	PageSize    int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// ServiceResponse represents a service in API responses.
type ServiceResponse struct {
	ID          uuid.UUID `json:"id"`
	ProviderID  uuid.UUID `json:"providerId"`
	City        string    `json:"city"`
	ServiceType string    `json:"serviceType"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	NightCount  *int      `json:"nightCount,omitempty"`
	RoomType    *string   `json:"roomType,omitempty"`
	Times       []string  `json:"times"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

// ServiceListResponse wraps a page of services.
type ServiceListResponse struct {
	Items      []ServiceResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
