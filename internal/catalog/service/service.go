package service

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"travel_backoffice/internal/catalog/repository"
	"travel_backoffice/internal/catalog/transport"
	"travel_backoffice/internal/events"
	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/logger"
)

const (
	cacheKeyPrefix  = "catalog:"
	defaultCacheTTL = 10 * time.Minute
)

var groupPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,59}$`)

// Service provides catalog lookups with a Redis read-through cache.
// Redis failures degrade to database reads.
type Service struct {
	repo     repository.Repository
	rdb      redis.Cmdable
	ttl      time.Duration
	loads    singleflight.Group
	eventBus events.Bus
	log      *logger.Logger
}

// New creates a new catalog service. rdb may be nil to disable caching.
func New(repo repository.Repository, rdb redis.Cmdable, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{repo: repo, rdb: rdb, ttl: ttl, log: log}
}

// SetEventBus sets the bus used to announce catalog changes.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// CacheKey returns the Redis key holding group.
func CacheKey(group string) string {
	return cacheKeyPrefix + group
}

// ListGroup returns the entries of group, from cache when possible.
// Concurrent misses for one group share a single database read.
func (s *Service) ListGroup(ctx context.Context, group string) (transport.GroupResponse, error) {
	group, err := normalizeGroup(group)
	if err != nil {
		return transport.GroupResponse{}, err
	}

	if entries, ok := s.cached(ctx, group); ok {
		return transport.GroupResponse{Group: group, Entries: entries}, nil
	}

	v, err, _ := s.loads.Do(group, func() (interface{}, error) {
		rows, err := s.repo.ListGroup(ctx, group)
		if err != nil {
			return nil, err
		}
		entries := make([]transport.EntryResponse, 0, len(rows))
		for _, e := range rows {
			entries = append(entries, transport.EntryResponse{Value: e.Value, Label: e.Label, SortOrder: e.SortOrder})
		}
		s.store(ctx, group, entries)
		return entries, nil
	})
	if err != nil {
		return transport.GroupResponse{}, err
	}
	return transport.GroupResponse{Group: group, Entries: v.([]transport.EntryResponse)}, nil
}

// Groups lists the known group keys.
func (s *Service) Groups(ctx context.Context) (transport.GroupListResponse, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return transport.GroupListResponse{}, err
	}
	return transport.GroupListResponse{Groups: groups}, nil
}

// Upsert writes one value of group and drops the cached group.
func (s *Service) Upsert(ctx context.Context, group, value string, req transport.UpsertEntryRequest) (transport.EntryResponse, error) {
	group, err := normalizeGroup(group)
	if err != nil {
		return transport.EntryResponse{}, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return transport.EntryResponse{}, apperr.Validation("value is required")
	}

	e, err := s.repo.Upsert(ctx, repository.UpsertParams{
		Group:     group,
		Value:     value,
		Label:     strings.TrimSpace(req.Label),
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return transport.EntryResponse{}, err
	}

	s.changed(ctx, group)
	s.log.Info("catalog entry saved", "group", group, "value", value)
	return transport.EntryResponse{Value: e.Value, Label: e.Label, SortOrder: e.SortOrder}, nil
}

// Delete removes one value of group and drops the cached group.
func (s *Service) Delete(ctx context.Context, group, value string) error {
	group, err := normalizeGroup(group)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, group, strings.TrimSpace(value)); err != nil {
		return err
	}

	s.changed(ctx, group)
	s.log.Info("catalog entry deleted", "group", group, "value", value)
	return nil
}

func (s *Service) cached(ctx context.Context, group string) ([]transport.EntryResponse, bool) {
	if s.rdb == nil {
		return nil, false
	}
	key := CacheKey(group)
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.CacheError("get", key, err)
		}
		return nil, false
	}

	var entries []transport.EntryResponse
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.log.CacheError("decode", key, err)
		return nil, false
	}
	return entries, true
}

func (s *Service) store(ctx context.Context, group string, entries []transport.EntryResponse) {
	if s.rdb == nil {
		return
	}
	key := CacheKey(group)
	raw, err := json.Marshal(entries)
	if err != nil {
		s.log.CacheError("encode", key, err)
		return
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		s.log.CacheError("set", key, err)
	}
}

func (s *Service) changed(ctx context.Context, group string) {
	if s.rdb != nil {
		key := CacheKey(group)
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			s.log.CacheError("del", key, err)
		}
	}
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.CatalogGroupChanged{BaseEvent: events.NewBaseEvent(), Group: group})
	}
}

func normalizeGroup(group string) (string, error) {
	group = strings.ToLower(strings.TrimSpace(group))
	if !groupPattern.MatchString(group) {
		return "", apperr.Validation("catalog group must be lowercase letters, digits or underscores")
	}
	return group, nil
}
