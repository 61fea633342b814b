package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"travel_backoffice/internal/events"
	"travel_backoffice/internal/pricing/repository"
	"travel_backoffice/internal/pricing/transport"
	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/logger"
)

// Service provides business logic for service price grids.
type Service struct {
	repo     repository.Repository
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new pricing service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// SetEventBus sets the bus used to announce price changes.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Upsert writes the requested grid cells of serviceID. The whole request is
// rejected when any price is malformed or negative, or when a cell appears twice.
func (s *Service) Upsert(ctx context.Context, serviceID uuid.UUID, req transport.UpsertPricesRequest) (int, error) {
	type cellKey struct {
		category, roomType string
		year, month        int
	}

	entries := make([]repository.Entry, 0, len(req.Entries))
	seen := make(map[cellKey]struct{}, len(req.Entries))
	for i, e := range req.Entries {
		price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
		if err != nil {
			return 0, apperr.Validation(fmt.Sprintf("entry %d: price is not a number", i))
		}
		if price.IsNegative() {
			return 0, apperr.Validation(fmt.Sprintf("entry %d: price must not be negative", i))
		}
		if e.Month < 1 || e.Month > 12 || e.Year < 2000 || e.Year > 2100 {
			return 0, apperr.Validation(fmt.Sprintf("entry %d: month or year out of range", i))
		}

		key := cellKey{strings.TrimSpace(e.Category), strings.TrimSpace(e.RoomType), e.Year, e.Month}
		if _, dup := seen[key]; dup {
			return 0, apperr.Validation(fmt.Sprintf("entry %d: duplicate cell", i))
		}
		seen[key] = struct{}{}

		entries = append(entries, repository.Entry{
			ServiceID: serviceID,
			Category:  key.category,
			RoomType:  key.roomType,
			Year:      e.Year,
			Month:     e.Month,
			Price:     price.Round(2),
		})
	}

	if err := s.repo.Upsert(ctx, serviceID, entries); err != nil {
		return 0, err
	}

	s.log.Info("prices updated", "serviceId", serviceID, "entries", len(entries))
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.ServiceChanged{BaseEvent: events.NewBaseEvent(), ServiceID: serviceID, Reason: events.ServicePrices})
	}
	return len(entries), nil
}

// Grid returns the price grid of serviceID for a year; the current year
// when year is zero.
func (s *Service) Grid(ctx context.Context, serviceID uuid.UUID, year int) (transport.GridResponse, error) {
	if year == 0 {
		year = s.now().Year()
	}
	entries, err := s.repo.Grid(ctx, serviceID, year)
	if err != nil {
		return transport.GridResponse{}, err
	}

	resp := transport.GridResponse{
		ServiceID: serviceID,
		Year:      year,
		Entries:   make([]transport.PriceEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, transport.PriceEntryResponse{
			Category: e.Category,
			RoomType: e.RoomType,
			Year:     e.Year,
			Month:    e.Month,
			Price:    e.Price.StringFixed(2),
		})
	}
	return resp, nil
}

// Lookup returns the price of serviceID for roomType on date.
func (s *Service) Lookup(ctx context.Context, serviceID uuid.UUID, req transport.LookupRequest) (transport.LookupResponse, error) {
	date, err := civil.ParseDate(req.Date)
	if err != nil {
		return transport.LookupResponse{}, apperr.Validation("date must use the YYYY-MM-DD format")
	}
	roomType := strings.TrimSpace(req.RoomType)

	price, err := s.repo.Lookup(ctx, serviceID, roomType, date)
	if err != nil {
		return transport.LookupResponse{}, err
	}

	resp := transport.LookupResponse{ServiceID: serviceID, Date: date.String(), RoomType: roomType}
	if price.Valid {
		formatted := price.Decimal.StringFixed(2)
		resp.Price = &formatted
	}
	return resp, nil
}
