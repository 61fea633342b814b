package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cattransport "travel_backoffice/internal/catalog/transport"
	svcrepo "travel_backoffice/internal/services/repository"
	"travel_backoffice/platform/apperr"
)

type fakeDirectory struct {
	services map[uuid.UUID]svcrepo.Service
}

func (f *fakeDirectory) Lookup(_ context.Context, id uuid.UUID) (svcrepo.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return svcrepo.Service{}, apperr.NotFound("service not found")
	}
	return svc, nil
}

func (f *fakeDirectory) Labels(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string)
	for _, id := range ids {
		if svc, ok := f.services[id]; ok {
			out[id] = svc.Name
		}
	}
	return out, nil
}

func (f *fakeDirectory) Options(_ context.Context, serviceType string) ([]svcrepo.Service, error) {
	var out []svcrepo.Service
	for _, svc := range f.services {
		if svc.ServiceType == serviceType {
			out = append(out, svc)
		}
	}
	return out, nil
}

func TestQuotesDirectoryMapsServices(t *testing.T) {
	id := uuid.New()
	three := 3
	dir := NewQuotesDirectory(&fakeDirectory{services: map[uuid.UUID]svcrepo.Service{
		id: {ID: id, Name: "Hotel Plaza", City: "Cusco", ServiceType: "Hotel", NightCount: &three},
	}})
	ctx := context.Background()

	info, err := dir.GetServiceInfo(ctx, id)
	if err != nil {
		t.Fatalf("get info: %v", err)
	}
	if info.City != "Cusco" || info.ServiceType != "Hotel" {
		t.Fatalf("unexpected info %+v", info)
	}

	if _, err := dir.GetServiceInfo(ctx, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found to pass through, got %v", err)
	}

	opts, err := dir.ListOptions(ctx, "Hotel")
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts) != 1 || opts[0].NightCount == nil || *opts[0].NightCount != 3 {
		t.Fatalf("unexpected options %+v", opts)
	}

	labels, _ := dir.ServiceLabels(ctx, []uuid.UUID{id})
	if labels[id] != "Hotel Plaza" {
		t.Fatalf("unexpected labels %v", labels)
	}
}

type fakeGroups struct{}

func (fakeGroups) ListGroup(_ context.Context, group string) (cattransport.GroupResponse, error) {
	return cattransport.GroupResponse{Group: group, Entries: []cattransport.EntryResponse{{Value: "CUZ", Label: "Cusco", SortOrder: 1}}}, nil
}

func TestQuotesCatalogMapsEntries(t *testing.T) {
	entries, err := NewQuotesCatalog(fakeGroups{}).ListGroup(context.Background(), "cities")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].Value != "CUZ" || entries[0].Label != "Cusco" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

type fakeTotals struct {
	refreshed []uuid.UUID
	err       error
}

func (f *fakeTotals) RefreshTotal(_ context.Context, id uuid.UUID) (decimal.Decimal, error) {
	f.refreshed = append(f.refreshed, id)
	return decimal.Zero, f.err
}

func TestInlineTotalRefresher(t *testing.T) {
	refresher := &InlineTotalRefresher{}
	if err := refresher.EnqueueRefreshTotal(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error before binding")
	}

	totals := &fakeTotals{}
	refresher.Totals = totals
	id := uuid.New()
	if err := refresher.EnqueueRefreshTotal(context.Background(), id); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(totals.refreshed) != 1 || totals.refreshed[0] != id {
		t.Fatalf("unexpected refreshes %v", totals.refreshed)
	}

	totals.err = errors.New("db down")
	if err := refresher.EnqueueRefreshTotal(context.Background(), id); err == nil {
		t.Fatal("expected error to propagate")
	}
}
