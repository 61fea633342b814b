package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"travel_backoffice/internal/quotes/sequencer"
	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/logger"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrSessionClosed is returned for commands sent to a closed session.
var ErrSessionClosed = errors.New("editor session closed")

const defaultPersistTimeout = 5 * time.Second

// Deps are the collaborators shared by every session.
type Deps struct {
	Store          Store
	Directory      Directory
	Catalog        CatalogReader
	Refresher      TotalRefresher
	Classifier     *sequencer.Classifier
	Log            *logger.Logger
	PersistTimeout time.Duration
	// PrewarmGroups are catalog groups loaded into the session cache on open.
	PrewarmGroups []string
}

// SyncStatus reports background persistence health for the session.
type SyncStatus struct {
	Pending      int
	Failures     int
	LastError    string
	LastFailedAt *time.Time
}

// Snapshot is the rendered state of a session.
type Snapshot struct {
	QuotationID uuid.UUID
	Rows        []sequencer.Row
	Items       int
	Total       decimal.Decimal
	Sync        SyncStatus
}

type command struct {
	fn   func()
	done chan struct{}
}

// Session is one open editor for one quotation. Commands run one at a time
// on the session goroutine, in arrival order. Date shifts and reorders are
// handed to a Writer and never block the caller; inserts and deletes wait
// for the store.
type Session struct {
	quotationID uuid.UUID
	deps        Deps
	log         *logger.Logger
	cls         *sequencer.Classifier
	cache       *Cache
	writer      *Writer

	// owned by the loop goroutine
	list    *sequencer.List
	status  SyncStatus
	removed map[string]struct{}

	cmds      chan command
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	lastUsed  atomic.Int64
}

// Open loads the quotation's items and starts a session. Service labels and
// the prewarm catalog groups are fetched concurrently with the items.
func Open(ctx context.Context, deps Deps, quotationID uuid.UUID) (*Session, error) {
	if deps.Classifier == nil {
		deps.Classifier = sequencer.DefaultClassifier()
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = defaultPersistTimeout
	}

	s := &Session{
		quotationID: quotationID,
		deps:        deps,
		log:         deps.Log.WithQuotation(quotationID.String()),
		cls:         deps.Classifier,
		cache:       NewCache(),
		list:        sequencer.NewList(deps.Classifier),
		removed:     make(map[string]struct{}),
		cmds:        make(chan command),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.list.Load(items)

	s.writer = NewWriter(deps.PersistTimeout, s.postResult)
	s.touch()
	go s.loop()
	return s, nil
}

func (s *Session) load(ctx context.Context) ([]sequencer.Item, error) {
	var items []sequencer.Item

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := s.deps.Store.FetchItems(gctx, s.quotationID)
		if err != nil {
			return err
		}
		items = fetched
		return nil
	})
	if s.deps.Catalog != nil {
		for _, group := range s.deps.PrewarmGroups {
			group := group
			g.Go(func() error {
				// A missing catalog only degrades the form; the editor still opens.
				if _, err := s.catalogGroup(gctx, group); err != nil {
					s.log.Warn("catalog prewarm failed", "group", group, "error", err)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.warmLabels(ctx, items)
	return items, nil
}

func (s *Session) warmLabels(ctx context.Context, items []sequencer.Item) {
	if s.deps.Directory == nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if it.DisplayText != "" || seen[it.ServiceRef] {
			continue
		}
		seen[it.ServiceRef] = true
		ids = append(ids, it.ServiceRef)
	}
	if len(ids) == 0 {
		return
	}
	labels, err := s.deps.Directory.ServiceLabels(ctx, ids)
	if err != nil {
		s.log.Warn("service label lookup failed", "error", err)
		return
	}
	for id, label := range labels {
		s.cache.Put(GroupServiceLabels, id.String(), label)
	}
}

// QuotationID returns the quotation this session edits.
func (s *Session) QuotationID() uuid.UUID {
	return s.quotationID
}

// LastUsed returns when the session last received a command.
func (s *Session) LastUsed() time.Time {
	return time.Unix(0, s.lastUsed.Load())
}

func (s *Session) touch() {
	s.lastUsed.Store(time.Now().UnixNano())
}

func (s *Session) loop() {
	defer close(s.stopped)
	for {
		select {
		case cmd := <-s.cmds:
			cmd.fn()
			if cmd.done != nil {
				close(cmd.done)
			}
		case <-s.done:
			return
		}
	}
}

// do runs fn on the session goroutine and waits for it to finish.
func (s *Session) do(ctx context.Context, fn func()) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	s.touch()
	<-cmd.done
	return nil
}

// post queues fn on the session goroutine without waiting for it. Dropped
// once the session is closed.
func (s *Session) post(fn func()) {
	select {
	case s.cmds <- command{fn: fn}:
	case <-s.done:
	}
}

// postResult runs on the writer goroutine. Results of writes drained after
// Close are only logged.
func (s *Session) postResult(res WriteResult) {
	select {
	case s.cmds <- command{fn: func() { s.recordResult(res) }}:
	case <-s.done:
		if res.Err != nil {
			s.log.PersistenceFailure(res.Op, res.Target, res.Err)
		}
	}
}

func (s *Session) recordResult(res WriteResult) {
	if res.Err == nil {
		return
	}
	// A write already running when its item was deleted.
	if _, gone := s.removed[res.Target]; gone && apperr.Is(res.Err, apperr.KindNotFound) {
		return
	}
	s.log.PersistenceFailure(res.Op, res.Target, res.Err)
	at := res.At
	s.status.Failures++
	s.status.LastError = res.Op + ": " + res.Err.Error()
	s.status.LastFailedAt = &at
}

func (s *Session) snapshot() Snapshot {
	status := s.status
	status.Pending = s.writer.Pending()
	return Snapshot{
		QuotationID: s.quotationID,
		Rows:        s.list.Render(s.label),
		Items:       s.list.Len(),
		Total:       s.list.Total(),
		Sync:        status,
	}
}

func (s *Session) label(id uuid.UUID) (string, bool) {
	return Lookup[string](s.cache, GroupServiceLabels, id.String())
}

// Snapshot renders the current list.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.do(ctx, func() { snap = s.snapshot() })
	return snap, err
}

// Move shifts the item at index by one day in the direction of delta and
// reorders it when the new date crosses its neighbour. The date write is
// always issued; the reorder write only when the item changed position, and
// always after the date write.
func (s *Session) Move(ctx context.Context, index, delta int) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	doErr := s.do(ctx, func() {
		var res sequencer.MoveResult
		res, err = s.list.Move(index, delta)
		if err != nil || !res.Shifted {
			snap = s.snapshot()
			return
		}

		s.persistDate(res.Item.ID, res.Item.ScheduledDate)
		if res.Swapped {
			s.persistOrder(s.list.Positions())
		}
		s.scheduleTotalRefresh()
		snap = s.snapshot()
	})
	if doErr != nil {
		return Snapshot{}, doErr
	}
	return snap, err
}

// Insert validates req, persists the new item and appends it to the end of
// the list. The list is unchanged when validation or the store write fails.
func (s *Session) Insert(ctx context.Context, req sequencer.InsertRequest) (Snapshot, error) {
	if req.ServiceRef == uuid.Nil {
		return Snapshot{}, apperr.Validation("a service must be selected")
	}
	if !req.StartDate.IsValid() {
		return Snapshot{}, apperr.Validation("start date is required")
	}

	svc, err := s.deps.Directory.GetServiceInfo(ctx, req.ServiceRef)
	if err != nil {
		return Snapshot{}, err
	}
	item, err := s.cls.PrepareInsert(req, svc)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	doErr := s.do(ctx, func() {
		if err = s.list.CheckAppend(item); err != nil {
			return
		}

		wctx, cancel := context.WithTimeout(ctx, s.deps.PersistTimeout)
		created, insertErr := s.deps.Store.InsertItem(wctx, s.quotationID, item)
		cancel()
		if insertErr != nil {
			s.log.PersistenceFailure("insert_item", s.quotationID.String(), insertErr)
			err = blockingFailure("item could not be saved", insertErr)
			return
		}

		if err = s.list.Append(created); err != nil {
			return
		}
		s.cache.Put(GroupServiceLabels, svc.ID.String(), svc.Name)
		s.scheduleTotalRefresh()
		snap = s.snapshot()
	})
	if doErr != nil {
		return Snapshot{}, doErr
	}
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Delete removes the item at index from the store and then from the list.
// The list is unchanged when the store does not confirm the delete. Queued
// writes for the deleted item and stale reorders are dropped; a compact
// reorder is queued when earlier writes could still land after the delete.
func (s *Session) Delete(ctx context.Context, index int) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	doErr := s.do(ctx, func() {
		var item sequencer.Item
		item, err = s.list.At(index)
		if err != nil {
			return
		}

		wctx, cancel := context.WithTimeout(ctx, s.deps.PersistTimeout)
		deleteErr := s.deps.Store.DeleteItem(wctx, item.ID)
		cancel()
		if deleteErr != nil {
			s.log.PersistenceFailure("delete_item", item.ID.String(), deleteErr)
			err = blockingFailure("item could not be deleted", deleteErr)
			return
		}

		if _, err = s.list.Remove(index); err != nil {
			return
		}
		target := item.ID.String()
		s.removed[target] = struct{}{}
		dropped := s.writer.Discard(func(op, t string) bool {
			return t == target || op == OpReorder
		})
		if s.list.Len() > 0 && (dropped > 0 || !s.writer.Idle()) {
			s.persistOrder(s.list.Positions())
		}
		s.scheduleTotalRefresh()
		snap = s.snapshot()
	})
	if doErr != nil {
		return Snapshot{}, doErr
	}
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Options lists the services a user can pick in the insertion form,
// filtered by type and, for lodging with both dates set, by night count.
func (s *Session) Options(ctx context.Context, serviceType string, start, end civil.Date) ([]sequencer.ServiceOption, error) {
	s.touch()
	options, ok := Lookup[[]sequencer.ServiceOption](s.cache, GroupServiceOptions, serviceType)
	if !ok {
		loaded, err := s.deps.Directory.ListOptions(ctx, serviceType)
		if err != nil {
			return nil, err
		}
		s.cache.Put(GroupServiceOptions, serviceType, loaded)
		options = loaded
	}
	return s.cls.FilterOptions(options, serviceType, start, end), nil
}

// Catalog returns a catalog group through the session cache.
func (s *Session) Catalog(ctx context.Context, group string) ([]LookupEntry, error) {
	s.touch()
	return s.catalogGroup(ctx, group)
}

func (s *Session) catalogGroup(ctx context.Context, group string) ([]LookupEntry, error) {
	if entries, ok := Lookup[[]LookupEntry](s.cache, CatalogGroup(group), group); ok {
		return entries, nil
	}
	if s.deps.Catalog == nil {
		return nil, apperr.NotFound("catalog not available")
	}
	entries, err := s.deps.Catalog.ListGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	s.cache.Put(CatalogGroup(group), group, entries)
	return entries, nil
}

// Invalidate drops a cache group. Safe to call from any goroutine.
func (s *Session) Invalidate(group string) {
	s.cache.Invalidate(group)
}

// Flush waits until every write issued so far has completed.
func (s *Session) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// RefreshPrices re-reads item prices from the store. An item whose local
// date differs from the stored one keeps its price until its own date write
// lands.
func (s *Session) RefreshPrices(ctx context.Context) error {
	items, err := s.deps.Store.FetchItems(ctx, s.quotationID)
	if err != nil {
		return err
	}
	return s.do(ctx, func() {
		for _, it := range items {
			s.list.Reprice(it.ID, it.ScheduledDate, it.Price)
		}
	})
}

// Close stops accepting commands, then drains pending writes.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
		s.writer.Close()
	})
}

func (s *Session) persistDate(itemID uuid.UUID, date civil.Date) {
	store := s.deps.Store
	s.enqueue(OpUpdateDate, itemID.String(), func(ctx context.Context) error {
		price, err := store.UpdateItemDate(ctx, itemID, date)
		if err != nil {
			return err
		}
		s.post(func() { s.list.Reprice(itemID, date, price) })
		return nil
	})
}

func (s *Session) persistOrder(positions []sequencer.Position) {
	store := s.deps.Store
	quotationID := s.quotationID
	s.enqueue(OpReorder, quotationID.String(), func(ctx context.Context) error {
		return store.ReorderItems(ctx, quotationID, positions)
	})
}

// scheduleTotalRefresh queues the refresh behind the writes it depends on.
func (s *Session) scheduleTotalRefresh() {
	if s.deps.Refresher == nil {
		return
	}
	refresher := s.deps.Refresher
	quotationID := s.quotationID
	s.enqueue(OpRefreshTotal, quotationID.String(), func(ctx context.Context) error {
		return refresher.EnqueueRefreshTotal(ctx, quotationID)
	})
}

func (s *Session) enqueue(op, target string, fn func(ctx context.Context) error) {
	if err := s.writer.Enqueue(op, target, fn); err != nil {
		s.recordResult(WriteResult{Op: op, Target: target, Err: err, At: time.Now()})
	}
}

func blockingFailure(message string, err error) error {
	if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindValidation) {
		return err
	}
	return apperr.Unavailable(message, err)
}
