package cache

import (
	"container/list"
	"sync"
	"time"
)

type cacheEntry struct {
	key       string
	value     string
	timestamp time.Time
}

// InMemoryCache is a thread-safe in-memory cache with TTL support and an
// optional entry limit. When full, the least recently used entry is evicted.
type InMemoryCache struct {
	items      map[string]*list.Element
	order      *list.List // front is most recently used
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttlSeconds is 0 or negative, entries never expire.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	return NewBoundedInMemoryCache(ttlSeconds, 0)
}

// NewBoundedInMemoryCache creates an in-memory cache holding at most
// maxEntries entries. Zero means unbounded.
func NewBoundedInMemoryCache(ttlSeconds, maxEntries int) *InMemoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}
	return &InMemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (c *InMemoryCache) expired(e *cacheEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.timestamp) > c.ttl
}

// Get retrieves a value from the cache.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}

	entry := el.Value.(*cacheEntry)
	if c.expired(entry, time.Now()) {
		c.order.Remove(el)
		delete(c.items, key)
		return "", false
	}

	c.order.MoveToFront(el)
	return entry.value, true
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.value = value
		entry.timestamp = time.Now()
		c.order.MoveToFront(el)
		return nil
	}

	c.items[key] = c.order.PushFront(&cacheEntry{key: key, value: value, timestamp: time.Now()})

	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
	return nil
}

// Delete removes key from the cache.
func (c *InMemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Entries returns all non-expired entries.
func (c *InMemoryCache) Entries() (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]string, len(c.items))
	now := time.Now()
	for key, el := range c.items {
		entry := el.Value.(*cacheEntry)
		if c.expired(entry, now) {
			continue
		}
		result[key] = entry.value
	}
	return result, nil
}

var _ ExportableCache = (*InMemoryCache)(nil)
