package editor

import "sync"

// Cache groups used by sessions.
const (
	GroupServiceLabels  = "service_labels"
	GroupServiceOptions = "service_options"
	catalogGroupPrefix  = "catalog:"
)

// CatalogGroup returns the cache group holding a catalog group.
func CatalogGroup(group string) string {
	return catalogGroupPrefix + group
}

// Cache is the lookup cache of one editor session. Values are grouped by a
// semantic key so invalidation can drop one group at a time.
type Cache struct {
	mu     sync.RWMutex
	groups map[string]map[string]any
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{groups: make(map[string]map[string]any)}
}

// Put stores value under group/key.
func (c *Cache) Put(group, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, ok := c.groups[group]
	if !ok {
		entries = make(map[string]any)
		c.groups[group] = entries
	}
	entries[key] = value
}

// Get returns the value stored under group/key.
func (c *Cache) Get(group, key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.groups[group][key]
	return v, ok
}

// Invalidate drops every entry of group.
func (c *Cache) Invalidate(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.groups, group)
}

// Lookup is a typed Get.
func Lookup[T any](c *Cache, group, key string) (T, bool) {
	var zero T
	v, ok := c.Get(group, key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
