package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"travel_backoffice/internal/quotes/editor"
	"travel_backoffice/internal/quotes/sequencer"
	svcrepo "travel_backoffice/internal/services/repository"
)

// serviceDirectory is the part of the services module the editor needs.
type serviceDirectory interface {
	Lookup(ctx context.Context, id uuid.UUID) (svcrepo.Service, error)
	Labels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	Options(ctx context.Context, serviceType string) ([]svcrepo.Service, error)
}

// QuotesDirectory adapts the service directory for quotation editors,
// satisfying editor.Directory.
type QuotesDirectory struct {
	services serviceDirectory
}

// NewQuotesDirectory creates a new directory adapter.
func NewQuotesDirectory(services serviceDirectory) *QuotesDirectory {
	return &QuotesDirectory{services: services}
}

var _ editor.Directory = (*QuotesDirectory)(nil)

// GetServiceInfo resolves the service chosen in the insertion form.
func (a *QuotesDirectory) GetServiceInfo(ctx context.Context, id uuid.UUID) (*sequencer.ServiceInfo, error) {
	svc, err := a.services.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sequencer.ServiceInfo{
		ID:          svc.ID,
		Name:        svc.Name,
		City:        svc.City,
		ServiceType: svc.ServiceType,
	}, nil
}

// ServiceLabels returns display names for the given services.
func (a *QuotesDirectory) ServiceLabels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	labels, err := a.services.Labels(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("directory adapter: labels: %w", err)
	}
	return labels, nil
}

// ListOptions returns the insertable services of one type.
func (a *QuotesDirectory) ListOptions(ctx context.Context, serviceType string) ([]sequencer.ServiceOption, error) {
	items, err := a.services.Options(ctx, serviceType)
	if err != nil {
		return nil, fmt.Errorf("directory adapter: options: %w", err)
	}

	opts := make([]sequencer.ServiceOption, 0, len(items))
	for _, svc := range items {
		opts = append(opts, sequencer.ServiceOption{
			ID:          svc.ID,
			Name:        svc.Name,
			City:        svc.City,
			ServiceType: svc.ServiceType,
			NightCount:  svc.NightCount,
		})
	}
	return opts, nil
}
