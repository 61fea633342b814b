package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"travel_backoffice/internal/events"
	"travel_backoffice/internal/services/repository"
	"travel_backoffice/internal/services/transport"
	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/logger"
)

type fakeRepo struct {
	providers  map[uuid.UUID]repository.Provider
	services   map[uuid.UUID]repository.Service
	listParams repository.ListParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		providers: make(map[uuid.UUID]repository.Provider),
		services:  make(map[uuid.UUID]repository.Service),
	}
}

func (f *fakeRepo) CreateProvider(_ context.Context, params repository.CreateProviderParams) (repository.Provider, error) {
	p := repository.Provider{ID: uuid.New(), Name: params.Name, City: params.City, Phone: params.Phone, Email: params.Email, CreatedAt: time.Now()}
	f.providers[p.ID] = p
	return p, nil
}

func (f *fakeRepo) GetProvider(_ context.Context, id uuid.UUID) (repository.Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return repository.Provider{}, apperr.NotFound("provider not found")
	}
	return p, nil
}

func (f *fakeRepo) ListProviders(context.Context) ([]repository.Provider, error) {
	out := make([]repository.Provider, 0, len(f.providers))
	for _, p := range f.providers {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) DeleteProvider(_ context.Context, id uuid.UUID) error {
	if _, ok := f.providers[id]; !ok {
		return apperr.NotFound("provider not found")
	}
	delete(f.providers, id)
	return nil
}

func (f *fakeRepo) GetService(_ context.Context, id uuid.UUID) (repository.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return repository.Service{}, apperr.NotFound("service not found")
	}
	return s, nil
}

func (f *fakeRepo) GetServices(_ context.Context, ids []uuid.UUID) ([]repository.Service, error) {
	var out []repository.Service
	for _, id := range ids {
		if s, ok := f.services[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListServices(_ context.Context, params repository.ListParams) ([]repository.Service, int, error) {
	f.listParams = params
	var out []repository.Service
	for _, s := range f.services {
		if params.ServiceType == "" || s.ServiceType == params.ServiceType {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) CreateService(_ context.Context, params repository.ServiceParams) (repository.Service, error) {
	if _, ok := f.providers[params.ProviderID]; !ok {
		return repository.Service{}, apperr.NotFound("provider not found")
	}
	s := toService(params)
	f.services[s.ID] = s
	return s, nil
}

func (f *fakeRepo) UpdateService(_ context.Context, params repository.ServiceParams) (repository.Service, error) {
	if _, ok := f.services[params.ID]; !ok {
		return repository.Service{}, apperr.NotFound("service not found")
	}
	s := toService(params)
	f.services[s.ID] = s
	return s, nil
}

func (f *fakeRepo) DeleteService(_ context.Context, id uuid.UUID) error {
	if _, ok := f.services[id]; !ok {
		return apperr.NotFound("service not found")
	}
	delete(f.services, id)
	return nil
}

func toService(params repository.ServiceParams) repository.Service {
	return repository.Service{
		ID:          params.ID,
		ProviderID:  params.ProviderID,
		City:        params.City,
		ServiceType: params.ServiceType,
		Name:        params.Name,
		NightCount:  params.NightCount,
		Times:       params.Times,
	}
}

// recordingBus captures published events synchronously.
type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func newTestService() (*Service, *fakeRepo, *recordingBus) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	svc := New(repo, "PE", logger.Nop())
	svc.SetEventBus(bus)
	return svc, repo, bus
}

func strPtr(s string) *string { return &s }

func TestCreateProviderNormalizesPhone(t *testing.T) {
	svc, _, bus := newTestService()

	resp, err := svc.CreateProvider(context.Background(), transport.CreateProviderRequest{
		Name:  " Hotel Andino ",
		City:  "Cusco",
		Phone: strPtr("912 345 678"),
	})
	if err != nil {
		t.Fatalf("create provider: %v", err)
	}
	if resp.Name != "Hotel Andino" {
		t.Fatalf("expected trimmed name, got %q", resp.Name)
	}
	if resp.Phone == nil || *resp.Phone != "+51912345678" {
		t.Fatalf("expected E.164 phone, got %v", resp.Phone)
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != (events.ProviderChanged{}).EventName() {
		t.Fatalf("expected ProviderChanged, got %+v", bus.published)
	}
}

func TestCreateProviderRejectsInvalidPhone(t *testing.T) {
	svc, repo, bus := newTestService()

	_, err := svc.CreateProvider(context.Background(), transport.CreateProviderRequest{Name: "X", City: "Lima", Phone: strPtr("12")})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.providers) != 0 || len(bus.published) != 0 {
		t.Fatal("nothing should be stored or published")
	}
}

func TestCreateServiceRequiresProvider(t *testing.T) {
	svc, _, bus := newTestService()

	_, err := svc.CreateService(context.Background(), transport.ServiceRequest{
		ProviderID: uuid.New(), City: "Cusco", ServiceType: "Tour", Name: "City tour",
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(bus.published) != 0 {
		t.Fatal("no event expected on failure")
	}
}

func TestServiceLifecyclePublishesChanges(t *testing.T) {
	svc, _, bus := newTestService()
	ctx := context.Background()

	provider, _ := svc.CreateProvider(ctx, transport.CreateProviderRequest{Name: "Inka Tours", City: "Cusco"})
	created, err := svc.CreateService(ctx, transport.ServiceRequest{
		ProviderID: provider.ID, City: "Cusco", ServiceType: "Tour", Name: "Valle Sagrado", Times: []string{"08:00"},
	})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	if len(created.Times) != 1 {
		t.Fatalf("expected times to round trip, got %v", created.Times)
	}

	if _, err := svc.UpdateService(ctx, created.ID, transport.ServiceRequest{
		ProviderID: provider.ID, City: "Cusco", ServiceType: "Tour", Name: "Valle Sagrado VIP",
	}); err != nil {
		t.Fatalf("update service: %v", err)
	}
	if err := svc.DeleteService(ctx, created.ID); err != nil {
		t.Fatalf("delete service: %v", err)
	}

	var reasons []string
	for _, e := range bus.published {
		if changed, ok := e.(events.ServiceChanged); ok {
			if changed.ServiceID != created.ID {
				t.Fatalf("unexpected service id %s", changed.ServiceID)
			}
			reasons = append(reasons, changed.Reason)
		}
	}
	if len(reasons) != 3 || reasons[0] != "created" || reasons[1] != "updated" || reasons[2] != "deleted" {
		t.Fatalf("unexpected change reasons %v", reasons)
	}
}

func TestCreateServiceReturnsEmptyTimes(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	provider, _ := svc.CreateProvider(ctx, transport.CreateProviderRequest{Name: "P", City: "Lima"})
	created, err := svc.CreateService(ctx, transport.ServiceRequest{ProviderID: provider.ID, City: "Lima", ServiceType: "Hotel", Name: "H"})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	if created.Times == nil {
		t.Fatal("times should serialize as an empty list")
	}
}

func TestListServicesPaging(t *testing.T) {
	svc, repo, _ := newTestService()

	resp, err := svc.ListServices(context.Background(), transport.ListServicesRequest{Page: 3, PageSize: 500})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.PageSize != maxPageSize || repo.listParams.Offset != 2*maxPageSize || repo.listParams.Limit != maxPageSize {
		t.Fatalf("unexpected paging %+v / %+v", resp, repo.listParams)
	}

	if _, err := svc.ListServices(context.Background(), transport.ListServicesRequest{ProviderID: "nope"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLabelsSkipsUnknownServices(t *testing.T) {
	svc, repo, _ := newTestService()
	known := uuid.New()
	repo.services[known] = repository.Service{ID: known, Name: "Machu Picchu"}

	labels, err := svc.Labels(context.Background(), []uuid.UUID{known, uuid.New()})
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	if len(labels) != 1 || labels[known] != "Machu Picchu" {
		t.Fatalf("unexpected labels %v", labels)
	}
}

func TestOptionsFiltersByType(t *testing.T) {
	svc, repo, _ := newTestService()
	hotel, tour := uuid.New(), uuid.New()
	repo.services[hotel] = repository.Service{ID: hotel, ServiceType: "Hotel"}
	repo.services[tour] = repository.Service{ID: tour, ServiceType: "Tour"}

	opts, err := svc.Options(context.Background(), " Hotel ")
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts) != 1 || opts[0].ID != hotel {
		t.Fatalf("unexpected options %+v", opts)
	}
	if repo.listParams.Limit != optionsLimit {
		t.Fatalf("expected options limit, got %d", repo.listParams.Limit)
	}
}
