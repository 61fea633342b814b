package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"travel_backoffice/internal/events"
	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/config"
	"travel_backoffice/platform/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Registry keeps the open editor session of each quotation.
type Registry struct {
	deps      Deps
	idleTTL   time.Duration
	sweepSpec string
	log       *logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	cron     *cron.Cron
}

// NewRegistry creates an empty registry.
func NewRegistry(deps Deps, cfg config.EditorConfig) *Registry {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.PersistTimeout = cfg.GetPersistTimeout()
	return &Registry{
		deps:      deps,
		idleTTL:   cfg.GetSessionIdleTTL(),
		sweepSpec: cfg.GetSessionSweepSpec(),
		log:       deps.Log,
		sessions:  make(map[uuid.UUID]*Session),
	}
}

// Open loads a fresh session for the quotation. An existing session is
// closed first so its pending writes land before the reload.
func (r *Registry) Open(ctx context.Context, quotationID uuid.UUID) (*Session, error) {
	r.mu.Lock()
	previous := r.sessions[quotationID]
	delete(r.sessions, quotationID)
	r.mu.Unlock()

	if previous != nil {
		previous.Close()
	}

	session, err := Open(ctx, r.deps, quotationID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	raced := r.sessions[quotationID]
	r.sessions[quotationID] = session
	r.mu.Unlock()

	if raced != nil {
		raced.Close()
	}
	r.log.Info("editor session opened", "quotation_id", quotationID)
	return session, nil
}

// Get returns the open session of the quotation.
func (r *Registry) Get(quotationID uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[quotationID]
	if !ok {
		return nil, apperr.NotFound("editor session not open")
	}
	return session, nil
}

// Close drains and removes the quotation's session.
func (r *Registry) Close(quotationID uuid.UUID) error {
	r.mu.Lock()
	session, ok := r.sessions[quotationID]
	delete(r.sessions, quotationID)
	r.mu.Unlock()

	if !ok {
		return apperr.NotFound("editor session not open")
	}
	session.Close()
	r.log.Info("editor session closed", "quotation_id", quotationID)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle since before now - idle TTL.
func (r *Registry) Sweep(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*Session
	for id, session := range r.sessions {
		if session.LastUsed().Before(cutoff) {
			idle = append(idle, session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range idle {
		session.Close()
		r.log.Info("idle editor session closed", "quotation_id", session.QuotationID())
	}
	return len(idle)
}

// Start schedules the idle sweep.
func (r *Registry) Start() error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(r.sweepSpec, func() { r.Sweep(time.Now()) }); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", r.sweepSpec, err)
	}
	c.Start()

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()
	return nil
}

// Stop halts the sweep and closes every session.
func (r *Registry) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	sessions := make([]*Session, 0, len(r.sessions))
	for id, session := range r.sessions {
		sessions = append(sessions, session)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, session := range sessions {
		session.Close()
	}
}

// RegisterHandlers invalidates session caches when directory or catalog
// data changes, reprices open lists when service prices change and drops
// sessions of deleted quotations.
func (r *Registry) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ServiceChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		r.invalidate(GroupServiceLabels, GroupServiceOptions)
		if e, ok := event.(events.ServiceChanged); ok && e.AffectsPrices() {
			r.refreshPrices(ctx)
		}
		return nil
	}))
	bus.Subscribe(events.CatalogGroupChanged{}.EventName(), events.HandlerFunc(func(_ context.Context, event events.Event) error {
		e, ok := event.(events.CatalogGroupChanged)
		if !ok {
			return nil
		}
		r.invalidate(CatalogGroup(e.Group))
		return nil
	}))
	bus.Subscribe(events.QuotationDeleted{}.EventName(), events.HandlerFunc(func(_ context.Context, event events.Event) error {
		e, ok := event.(events.QuotationDeleted)
		if !ok {
			return nil
		}
		r.discard(e.QuotationID)
		return nil
	}))
}

// discard drops a session whose quotation no longer exists.
func (r *Registry) discard(quotationID uuid.UUID) {
	r.mu.Lock()
	session, ok := r.sessions[quotationID]
	delete(r.sessions, quotationID)
	r.mu.Unlock()

	if ok {
		session.Close()
	}
}

func (r *Registry) refreshPrices(ctx context.Context) {
	for _, session := range r.snapshotSessions() {
		if err := session.RefreshPrices(ctx); err != nil && err != ErrSessionClosed {
			r.log.Warn("editor reprice failed", "quotation_id", session.QuotationID(), "error", err)
		}
	}
}

func (r *Registry) snapshotSessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

func (r *Registry) invalidate(groups ...string) {
	for _, session := range r.snapshotSessions() {
		for _, group := range groups {
			session.Invalidate(group)
		}
	}
}
