package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"travel_backoffice/internal/events"
	"travel_backoffice/internal/services/repository"
	"travel_backoffice/internal/services/transport"
	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/logger"
	"travel_backoffice/platform/phone"
	"travel_backoffice/platform/sanitize"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// optionsLimit caps the editor's option list for one service type.
	optionsLimit = 500
)

// Service provides business logic for providers and services.
type Service struct {
	repo     repository.Repository
	region   string
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new service directory service. region is the default
// phone region for numbers written without a country prefix.
func New(repo repository.Repository, region string, log *logger.Logger) *Service {
	return &Service{repo: repo, region: region, log: log}
}

// SetEventBus sets the bus used to announce directory changes.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// CreateProvider registers a provider, normalizing its phone number.
func (s *Service) CreateProvider(ctx context.Context, req transport.CreateProviderRequest) (transport.ProviderResponse, error) {
	params := repository.CreateProviderParams{
		Name:  sanitize.Text(req.Name),
		City:  strings.TrimSpace(req.City),
		Email: req.Email,
	}
	if req.Phone != nil {
		normalized, err := phone.NormalizeE164(*req.Phone, s.region)
		if err != nil {
			if errors.Is(err, phone.ErrInvalid) {
				return transport.ProviderResponse{}, apperr.Validation("phone number is not valid")
			}
			return transport.ProviderResponse{}, err
		}
		if normalized != "" {
			params.Phone = &normalized
		}
	}

	p, err := s.repo.CreateProvider(ctx, params)
	if err != nil {
		return transport.ProviderResponse{}, err
	}

	s.log.Info("provider created", "id", p.ID, "name", p.Name)
	s.publish(ctx, events.ProviderChanged{BaseEvent: events.NewBaseEvent(), ProviderID: p.ID})
	return toProviderResponse(p), nil
}

// GetProvider retrieves a provider by ID.
func (s *Service) GetProvider(ctx context.Context, id uuid.UUID) (transport.ProviderResponse, error) {
	p, err := s.repo.GetProvider(ctx, id)
	if err != nil {
		return transport.ProviderResponse{}, err
	}
	return toProviderResponse(p), nil
}

// ListProviders retrieves all providers.
func (s *Service) ListProviders(ctx context.Context) (transport.ProviderListResponse, error) {
	providers, err := s.repo.ListProviders(ctx)
	if err != nil {
		return transport.ProviderListResponse{}, err
	}
	resp := transport.ProviderListResponse{Items: make([]transport.ProviderResponse, 0, len(providers))}
	for _, p := range providers {
		resp.Items = append(resp.Items, toProviderResponse(p))
	}
	return resp, nil
}

// DeleteProvider removes a provider that offers no services.
func (s *Service) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteProvider(ctx, id); err != nil {
		return err
	}
	s.log.Info("provider deleted", "id", id)
	s.publish(ctx, events.ProviderChanged{BaseEvent: events.NewBaseEvent(), ProviderID: id})
	return nil
}

// GetService retrieves a service by ID.
func (s *Service) GetService(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetService(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return toServiceResponse(svc), nil
}

// ListServices retrieves a filtered page of services.
func (s *Service) ListServices(ctx context.Context, req transport.ListServicesRequest) (transport.ServiceListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{
		ServiceType: strings.TrimSpace(req.ServiceType),
		City:        strings.TrimSpace(req.City),
		Search:      strings.TrimSpace(req.Search),
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	}
	if req.ProviderID != "" {
		providerID, err := uuid.Parse(req.ProviderID)
		if err != nil {
			return transport.ServiceListResponse{}, apperr.Validation("invalid provider ID")
		}
		params.ProviderID = &providerID
	}

	items, total, err := s.repo.ListServices(ctx, params)
	if err != nil {
		return transport.ServiceListResponse{}, err
	}

	resp := transport.ServiceListResponse{
		Items:      make([]transport.ServiceResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, svc := range items {
		resp.Items = append(resp.Items, toServiceResponse(svc))
	}
	return resp, nil
}

// CreateService registers a service for an existing provider.
func (s *Service) CreateService(ctx context.Context, req transport.ServiceRequest) (transport.ServiceResponse, error) {
	params := toParams(uuid.New(), req)
	svc, err := s.repo.CreateService(ctx, params)
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("service created", "id", svc.ID, "type", svc.ServiceType, "city", svc.City)
	s.publish(ctx, events.ServiceChanged{BaseEvent: events.NewBaseEvent(), ServiceID: svc.ID, Reason: events.ServiceCreated})
	return toServiceResponse(svc), nil
}

// UpdateService replaces a service's fields and schedule.
func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, req transport.ServiceRequest) (transport.ServiceResponse, error) {
	svc, err := s.repo.UpdateService(ctx, toParams(id, req))
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("service updated", "id", svc.ID)
	s.publish(ctx, events.ServiceChanged{BaseEvent: events.NewBaseEvent(), ServiceID: svc.ID, Reason: events.ServiceUpdated})
	return toServiceResponse(svc), nil
}

// DeleteService removes a service no quotation uses.
func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.log.Info("service deleted", "id", id)
	s.publish(ctx, events.ServiceChanged{BaseEvent: events.NewBaseEvent(), ServiceID: id, Reason: events.ServiceDeleted})
	return nil
}

// Lookup returns the raw service record.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (repository.Service, error) {
	return s.repo.GetService(ctx, id)
}

// Labels returns the display name of each known service among ids.
func (s *Service) Labels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	labels := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return labels, nil
	}
	items, err := s.repo.GetServices(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, svc := range items {
		labels[svc.ID] = svc.Name
	}
	return labels, nil
}

// Options returns the services of one type (all types when blank) for the
// editor's insertion form.
func (s *Service) Options(ctx context.Context, serviceType string) ([]repository.Service, error) {
	items, _, err := s.repo.ListServices(ctx, repository.ListParams{
		ServiceType: strings.TrimSpace(serviceType),
		Limit:       optionsLimit,
	})
	return items, err
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, event)
	}
}

func toParams(id uuid.UUID, req transport.ServiceRequest) repository.ServiceParams {
	return repository.ServiceParams{
		ID:          id,
		ProviderID:  req.ProviderID,
		City:        strings.TrimSpace(req.City),
		ServiceType: strings.TrimSpace(req.ServiceType),
		Name:        sanitize.Text(req.Name),
		Description: sanitize.TextPtr(req.Description),
		NightCount:  req.NightCount,
		RoomType:    req.RoomType,
		Times:       req.Times,
	}
}

func toProviderResponse(p repository.Provider) transport.ProviderResponse {
	return transport.ProviderResponse{
		ID:        p.ID,
		Name:      p.Name,
		City:      p.City,
		Phone:     p.Phone,
		Email:     p.Email,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func toServiceResponse(svc repository.Service) transport.ServiceResponse {
	times := svc.Times
	if times == nil {
		times = []string{}
	}
	return transport.ServiceResponse{
		ID:          svc.ID,
		ProviderID:  svc.ProviderID,
		City:        svc.City,
		ServiceType: svc.ServiceType,
		Name:        svc.Name,
		Description: svc.Description,
		NightCount:  svc.NightCount,
		RoomType:    svc.RoomType,
		Times:       times,
		CreatedAt:   svc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   svc.UpdatedAt.Format(time.RFC3339),
	}
}
