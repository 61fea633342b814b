package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"travel_backoffice/internal/quotes/sequencer"
	"travel_backoffice/platform/apperr"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("store down")

type fakeStore struct {
	mu        sync.Mutex
	items     []sequencer.Item
	calls     []string
	failDate  error
	failOrder error
	failIns   error
	failDel   error
	// dateGate, when set, blocks UpdateItemDate until it is closed.
	dateGate chan struct{}
	orders   [][]sequencer.Position
	// priceAt prices an item at a new date; defaults to the loaded price.
	priceAt func(itemID uuid.UUID, date civil.Date) decimal.NullDecimal
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeStore) FetchItems(_ context.Context, _ uuid.UUID) ([]sequencer.Item, error) {
	f.record("fetch")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sequencer.Item, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeStore) InsertItem(_ context.Context, _ uuid.UUID, item sequencer.Item) (sequencer.Item, error) {
	f.record("insert")
	if f.failIns != nil {
		return sequencer.Item{}, f.failIns
	}
	item.ID = uuid.New()
	item.Price = decimal.NewNullDecimal(decimal.NewFromInt(50))
	return item, nil
}

func (f *fakeStore) UpdateItemDate(ctx context.Context, itemID uuid.UUID, date civil.Date) (decimal.NullDecimal, error) {
	if f.dateGate != nil {
		select {
		case <-f.dateGate:
		case <-ctx.Done():
			f.record("date-timeout")
			return decimal.NullDecimal{}, ctx.Err()
		}
	}
	f.record(fmt.Sprintf("date %s %s", itemID, date))
	if f.failDate != nil {
		return decimal.NullDecimal{}, f.failDate
	}
	if f.priceAt != nil {
		return f.priceAt(itemID, date), nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ID == itemID {
			return it.Price, nil
		}
	}
	return decimal.NullDecimal{}, apperr.NotFound("quotation item not found")
}

func (f *fakeStore) ReorderItems(_ context.Context, _ uuid.UUID, positions []sequencer.Position) error {
	f.record("reorder")
	f.mu.Lock()
	f.orders = append(f.orders, positions)
	f.mu.Unlock()
	return f.failOrder
}

func (f *fakeStore) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	f.record("delete " + itemID.String())
	return f.failDel
}

type fakeDirectory struct {
	services map[uuid.UUID]*sequencer.ServiceInfo
	options  []sequencer.ServiceOption
	listed   int
}

func (d *fakeDirectory) GetServiceInfo(_ context.Context, id uuid.UUID) (*sequencer.ServiceInfo, error) {
	svc, ok := d.services[id]
	if !ok {
		return nil, apperr.NotFound("service not found")
	}
	return svc, nil
}

func (d *fakeDirectory) ServiceLabels(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if svc, ok := d.services[id]; ok {
			out[id] = svc.Name
		}
	}
	return out, nil
}

func (d *fakeDirectory) ListOptions(_ context.Context, _ string) ([]sequencer.ServiceOption, error) {
	d.listed++
	return d.options, nil
}

type fakeCatalog struct {
	mu    sync.Mutex
	reads map[string]int
}

func (c *fakeCatalog) ListGroup(_ context.Context, group string) ([]LookupEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reads == nil {
		c.reads = make(map[string]int)
	}
	c.reads[group]++
	return []LookupEntry{{Value: "LIM", Label: "Lima"}}, nil
}

func (c *fakeCatalog) Reads(group string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads[group]
}

type fakeRefresher struct {
	mu    sync.Mutex
	count int
}

func (r *fakeRefresher) EnqueueRefreshTotal(context.Context, uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return nil
}

func (r *fakeRefresher) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

type testEditorConfig struct{}

func (testEditorConfig) GetPersistTimeout() time.Duration { return time.Second }
func (testEditorConfig) GetSessionIdleTTL() time.Duration { return time.Minute }
func (testEditorConfig) GetSessionSweepSpec() string      { return "@every 1h" }

func day(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func tourItem(name string, date civil.Date) sequencer.Item {
	return sequencer.Item{
		ID:               uuid.New(),
		ServiceRef:       uuid.New(),
		City:             "Cusco",
		ServiceTypeLabel: "Tour",
		ScheduledDate:    date,
		DisplayText:      name,
		Price:            decimal.NewNullDecimal(decimal.NewFromInt(100)),
	}
}

func openSession(t *testing.T, store *fakeStore, dir *fakeDirectory, refresher TotalRefresher) *Session {
	t.Helper()
	if dir == nil {
		dir = &fakeDirectory{}
	}
	s, err := Open(context.Background(), Deps{
		Store:          store,
		Directory:      dir,
		Refresher:      refresher,
		PersistTimeout: time.Second,
	}, uuid.New())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func flush(t *testing.T, s *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func rowTexts(snap Snapshot) []string {
	var out []string
	for _, row := range snap.Rows {
		if row.Kind == sequencer.RowItem {
			out = append(out, row.DisplayText)
		}
	}
	return out
}
