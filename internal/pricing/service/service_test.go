package service

import (
	"context"
	"testing"
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

type fakeRepo struct {
	written  []repository.Entry
	grid     []repository.Entry
	gridYear int
	price    decimal.NullDecimal
	lookedUp civil.Date
}

func (f *fakeRepo) Upsert(_ context.Context, _ uuid.UUID, entries []repository.Entry) error {
	f.written = append(f.written, entries...)
	return nil
}

func (f *fakeRepo) Grid(_ context.Context, _ uuid.UUID, year int) ([]repository.Entry, error) {
	f.gridYear = year
	return f.grid, nil
}

func (f *fakeRepo) Lookup(_ context.Context, _ uuid.UUID, _ string, date civil.Date) (decimal.NullDecimal, error) {
	f.lookedUp = date
	return f.price, nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func TestUpsertWritesAndPublishes(t *testing.T) {
	repo := &fakeRepo{}
	bus := &recordingBus{}
	svc := New(repo, logger.Nop())
	svc.SetEventBus(bus)
	serviceID := uuid.New()

	n, err := svc.Upsert(context.Background(), serviceID, transport.UpsertPricesRequest{Entries: []transport.PriceEntryRequest{
		{RoomType: "DBL", Year: 2025, Month: 6, Price: "120.455"},
		{RoomType: "SGL", Year: 2025, Month: 6, Price: " 90 "},
	}})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if n != 2 || len(repo.written) != 2 {
		t.Fatalf("expected 2 entries written, got %d/%d", n, len(repo.written))
	}
	if !repo.written[0].Price.Equal(decimal.RequireFromString("120.46")) {
		t.Fatalf("expected price rounded to cents, got %s", repo.written[0].Price)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected one event, got %d", len(bus.published))
	}
	changed, ok := bus.published[0].(events.ServiceChanged)
	if !ok || changed.ServiceID != serviceID || changed.Reason != "prices" {
		t.Fatalf("unexpected event %+v", bus.published[0])
	}
}

func TestUpsertRejectsWholeRequest(t *testing.T) {
	cases := []struct {
		name    string
		entries []transport.PriceEntryRequest
	}{
		{"negative", []transport.PriceEntryRequest{{Year: 2025, Month: 1, Price: "10"}, {Year: 2025, Month: 2, Price: "-1"}}},
		{"malformed", []transport.PriceEntryRequest{{Year: 2025, Month: 1, Price: "ten"}}},
		{"month", []transport.PriceEntryRequest{{Year: 2025, Month: 13, Price: "10"}}},
		{"duplicate", []transport.PriceEntryRequest{{Year: 2025, Month: 1, Price: "10"}, {Year: 2025, Month: 1, Price: "11"}}},
	}

	for _, tc := range cases {
		repo := &fakeRepo{}
		svc := New(repo, logger.Nop())
		_, err := svc.Upsert(context.Background(), uuid.New(), transport.UpsertPricesRequest{Entries: tc.entries})
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
		if len(repo.written) != 0 {
			t.Fatalf("%s: nothing should be written", tc.name)
		}
	}
}

func TestGridDefaultsToCurrentYear(t *testing.T) {
	repo := &fakeRepo{grid: []repository.Entry{{Year: 2026, Month: 3, Price: decimal.NewFromInt(75)}}}
	svc := New(repo, logger.Nop())
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }

	resp, err := svc.Grid(context.Background(), uuid.New(), 0)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if repo.gridYear != 2026 || resp.Year != 2026 {
		t.Fatalf("expected current year, got %d", repo.gridYear)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Price != "75.00" {
		t.Fatalf("unexpected entries %+v", resp.Entries)
	}
}

func TestLookupMissingPrice(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, logger.Nop())

	resp, err := svc.Lookup(context.Background(), uuid.New(), transport.LookupRequest{Date: "2025-06-01"})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if resp.Price != nil {
		t.Fatalf("expected no price, got %s", *resp.Price)
	}
	if repo.lookedUp != (civil.Date{Year: 2025, Month: 6, Day: 1}) {
		t.Fatalf("unexpected lookup date %v", repo.lookedUp)
	}

	repo.price = decimal.NewNullDecimal(decimal.NewFromInt(40))
	resp, _ = svc.Lookup(context.Background(), uuid.New(), transport.LookupRequest{Date: "2025-06-01"})
	if resp.Price == nil || *resp.Price != "40.00" {
		t.Fatalf("expected 40.00, got %v", resp.Price)
	}

	if _, err := svc.Lookup(context.Background(), uuid.New(), transport.LookupRequest{Date: "2025-02-30"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
