package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel_backoffice/internal/events"
	"travel_backoffice/internal/quotes/editor"
	"travel_backoffice/internal/quotes/repository"
	"travel_backoffice/internal/quotes/sequencer"
	"travel_backoffice/internal/quotes/transport"
	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/logger"
	"travel_backoffice/platform/sanitize"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the quotation persistence the service needs.
type Repository interface {
	NextCode(ctx context.Context) (string, error)
	Create(ctx context.Context, q *repository.Quotation) error
	Update(ctx context.Context, q *repository.Quotation) error
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Quotation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
	FetchItems(ctx context.Context, quotationID uuid.UUID) ([]sequencer.Item, error)
}

// Service provides business logic for quotations and their editors
type Service struct {
	repo     Repository
	editors  *editor.Registry
	cls      *sequencer.Classifier
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new quotations service
func New(repo Repository, editors *editor.Registry, cls *sequencer.Classifier, log *logger.Logger) *Service {
	if cls == nil {
		cls = sequencer.DefaultClassifier()
	}
	return &Service{repo: repo, editors: editors, cls: cls, log: log}
}

// SetEventBus injects the event bus (set after construction, like the other modules).
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Create creates a quotation header with a fresh code
func (s *Service) Create(ctx context.Context, req transport.CreateQuotationRequest) (*transport.QuotationResponse, error) {
	travelStart, err := parseOptionalDate(req.TravelStart)
	if err != nil {
		return nil, err
	}

	code, err := s.repo.NextCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate quotation code: %w", err)
	}

	pax := req.Pax
	if pax == 0 {
		pax = 1
	}

	now := time.Now()
	q := repository.Quotation{
		ID:          uuid.New(),
		Code:        code,
		ClientName:  sanitize.Text(req.ClientName),
		TravelStart: travelStart,
		Pax:         pax,
		Status:      string(transport.QuotationStatusDraft),
		Total:       decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &q); err != nil {
		return nil, err
	}

	return toResponse(&q), nil
}

// GetByID returns a quotation header
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.QuotationResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(q), nil
}

// Update applies the provided header fields
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateQuotationRequest) (*transport.QuotationResponse, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ClientName != nil {
		q.ClientName = sanitize.Text(*req.ClientName)
	}
	if req.TravelStart != nil {
		travelStart, err := parseOptionalDate(*req.TravelStart)
		if err != nil {
			return nil, err
		}
		q.TravelStart = travelStart
	}
	if req.Pax != nil {
		q.Pax = *req.Pax
	}
	if req.Status != nil {
		q.Status = string(*req.Status)
	}
	q.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return toResponse(q), nil
}

// Delete removes a quotation and any open editor on it
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.QuotationDeleted{BaseEvent: events.NewBaseEvent(), QuotationID: id})
	}
	return nil
}

// List returns a page of quotation headers
func (s *Service) List(ctx context.Context, req transport.ListQuotationsRequest) (*transport.QuotationListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var status *string
	if req.Status != "" {
		status = &req.Status
	}

	result, err := s.repo.List(ctx, repository.ListParams{
		Status:    status,
		Search:    strings.TrimSpace(req.Search),
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]transport.QuotationResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, *toResponse(&result.Items[i]))
	}
	return &transport.QuotationListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// RefreshTotal recomputes the header total from the stored items, using the
// same rules as the editor.
func (s *Service) RefreshTotal(ctx context.Context, quotationID uuid.UUID) (decimal.Decimal, error) {
	items, err := s.repo.FetchItems(ctx, quotationID)
	if err != nil {
		return decimal.Zero, err
	}

	list := sequencer.NewList(s.cls)
	list.Load(items)
	total := list.Total()

	if err := s.repo.UpdateTotal(ctx, quotationID, total); err != nil {
		return decimal.Zero, err
	}
	if s.log != nil {
		s.log.Debug("quotation total refreshed", "quotation_id", quotationID, "total", total.StringFixed(2))
	}
	return total, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	d, err := sequencer.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return nil, err
	}
	if !d.IsValid() {
		return nil, nil
	}
	t := d.In(time.UTC)
	return &t, nil
}

func toResponse(q *repository.Quotation) *transport.QuotationResponse {
	resp := &transport.QuotationResponse{
		ID:         q.ID,
		Code:       q.Code,
		ClientName: q.ClientName,
		Pax:        q.Pax,
		Status:     transport.QuotationStatus(q.Status),
		Total:      q.Total,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
	if q.TravelStart != nil {
		formatted := q.TravelStart.Format("2006-01-02")
		resp.TravelStart = &formatted
	}
	return resp
}

// ensure the repository satisfies both contracts it is used through
var (
	_ Repository   = (*repository.Repository)(nil)
	_ editor.Store = (*repository.Repository)(nil)
)

// errEditorUnavailable is returned when the module runs without editor support.
var errEditorUnavailable = apperr.Internal("quotation editor not configured")
