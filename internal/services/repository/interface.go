package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Provider is a supplier of travel services (hotel chain, tour operator, airline).
type Provider struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	City      string    `db:"city"`
	Phone     *string   `db:"phone"`
	Email     *string   `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

// Service is one bookable service offered by a provider.
type Service struct {
	ID          uuid.UUID `db:"id"`
	ProviderID  uuid.UUID `db:"provider_id"`
	City        string    `db:"city"`
	ServiceType string    `db:"service_type"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	// Lodging only.
	NightCount *int    `db:"night_count"`
	RoomType   *string `db:"room_type"`
	// Offered departure times as HH:MM.
	Times     []string  `db:"-"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CreateProviderParams contains parameters for creating a provider.
type CreateProviderParams struct {
	Name  string
	City  string
	Phone *string
	Email *string
}

// ServiceParams contains parameters for creating or replacing a service.
type ServiceParams struct {
	ID          uuid.UUID
	ProviderID  uuid.UUID
	City        string
	ServiceType string
	Name        string
	Description *string
	NightCount  *int
	RoomType    *string
	Times       []string
}

// ListParams filters services.
type ListParams struct {
	ServiceType string
	City        string
	ProviderID  *uuid.UUID
	Search      string
	Offset      int
	Limit       int
}

// ProviderStore provides provider persistence.
type ProviderStore interface {
	CreateProvider(ctx context.Context, params CreateProviderParams) (Provider, error)
	GetProvider(ctx context.Context, id uuid.UUID) (Provider, error)
	ListProviders(ctx context.Context) ([]Provider, error)
	DeleteProvider(ctx context.Context, id uuid.UUID) error
}

// ServiceReader provides read operations for services.
type ServiceReader interface {
	GetService(ctx context.Context, id uuid.UUID) (Service, error)
	GetServices(ctx context.Context, ids []uuid.UUID) ([]Service, error)
	ListServices(ctx context.Context, params ListParams) ([]Service, int, error)
}

// ServiceWriter provides write operations for services.
type ServiceWriter interface {
	CreateService(ctx context.Context, params ServiceParams) (Service, error)
	UpdateService(ctx context.Context, params ServiceParams) (Service, error)
	DeleteService(ctx context.Context, id uuid.UUID) error
}

// Repository combines all service directory repository operations.
type Repository interface {
	ProviderStore
	ServiceReader
	ServiceWriter
}
