package cache

import (
	"container/list"
	"context"
	"garage-site/internal/config"
	"strings"
	"sync"
	"time"
)

const (
	defaultTTL           = 5 * time.Minute
	defaultMaxSize       = 100
	defaultCleanInterval = 5 * time.Minute
)

type entry struct {
	key      string
	value    any
	storedAt time.Time
	ttl      time.Duration
	order    *list.Element
}

// Cache is a process-local TTL cache with a bounded number of keys.
// When full, inserting a new key evicts the oldest inserted key.
type Cache struct {
	mu            sync.Mutex
	items         map[string]*entry
	order         *list.List // insertion order, front is oldest
	ttl           time.Duration
	maxSize       int
	cleanInterval time.Duration
	now           func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a new Cache instance. Zero values in cfg fall back to defaults.
func New(cfg config.CacheConfig) *Cache {
	c := &Cache{
		items:         make(map[string]*entry),
		order:         list.New(),
		ttl:           cfg.TTL,
		maxSize:       cfg.MaxSize,
		cleanInterval: cfg.CleanInterval,
		now:           time.Now,
		stop:          make(chan struct{}),
	}
	if c.ttl <= 0 {
		c.ttl = defaultTTL
	}
	if c.maxSize <= 0 {
		c.maxSize = defaultMaxSize
	}
	if c.cleanInterval <= 0 {
		c.cleanInterval = defaultCleanInterval
	}
	return c
}

// Start runs Clean on a fixed interval until ctx is cancelled or Close is called.
func (c *Cache) Start(ctx context.Context) {
	ticker := time.NewTicker(c.cleanInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case <-ticker.C:
				c.Clean()
			}
		}
	}()
}

// Close stops the background sweep.
func (c *Cache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

// Set stores value under key. A ttl <= 0 uses the default TTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		e.storedAt = c.now()
		e.ttl = ttl
		return
	}

	for len(c.items) >= c.maxSize {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest.Value.(string))
	}

	e := &entry{key: key, value: value, storedAt: c.now(), ttl: ttl}
	e.order = c.order.PushBack(key)
	c.items[key] = e
}

// Get returns the value for key, or false if it is missing or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.expired(e) {
		c.removeLocked(key)
		return nil, false
	}
	return e.value, true
}

// Has reports whether key holds an unexpired value.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Delete removes a single key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

// DeletePattern removes every key containing pattern and returns how many
// keys were removed.
func (c *Cache) DeletePattern(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.items {
		if strings.Contains(key, pattern) {
			c.removeLocked(key)
			n++
		}
	}
	return n
}

// Clear removes every key.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*entry)
	c.order.Init()
}

// Keys returns the current keys, oldest first. Expired keys not yet swept are
// included.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.items))
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(string))
	}
	return keys
}

// Len returns the number of stored keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clean purges expired entries and returns how many were removed.
func (c *Cache) Clean() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.items {
		if c.expired(e) {
			c.removeLocked(key)
			n++
		}
	}
	return n
}

// expired uses a strict comparison: an entry is still valid at exactly ttl.
func (c *Cache) expired(e *entry) bool {
	return c.now().Sub(e.storedAt) > e.ttl
}

func (c *Cache) removeLocked(key string) {
	e, ok := c.items[key]
	if !ok {
		return
	}
	c.order.Remove(e.order)
	delete(c.items, key)
}
