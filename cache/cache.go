// Package cache provides the bounded response cache in front of the cloud
// dispatch path: LRU eviction, per-entry TTL, hit and eviction counters and
// an optional JSON snapshot on disk so a restart keeps warm entries.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fusionworks/fusioncoder/logging"
)

// Default sizing, matching the shipped configuration.
const (
	DefaultMaxSize = 1000
	DefaultTTL     = time.Hour
)

// Stats are the monotonic counters maintained by the cache. Counters only
// grow; rates are derived on demand.
type Stats struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
	Insertions  uint64 `json:"insertions"`
}

// HitRate is hits over total lookups, zero when nothing was looked up.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// EvictionRate is evictions over insertions, zero when nothing was inserted.
func (s Stats) EvictionRate() float64 {
	if s.Insertions == 0 {
		return 0
	}
	return float64(s.Evictions) / float64(s.Insertions)
}

// entry is one cached response with its expiry deadline.
type entry struct {
	key       string
	value     map[string]any
	expiresAt time.Time
}

// Cache is a goroutine-safe LRU with per-entry TTL. The recency list front is
// the most recently used entry.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	ll      *list.List
	items   map[string]*list.Element
	stats   Stats
	path    string
	logger  logging.Logger
	now     func() time.Time
}

// Options configures a Cache.
type Options struct {
	// MaxSize caps the entry count. Values below 1 fall back to the default.
	MaxSize int
	// TTL is the per-entry lifetime applied at Set time.
	TTL time.Duration
	// Path enables disk persistence when non-empty: a snapshot is written
	// after every mutation and reloaded at construction.
	Path string
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// New constructs a cache. When a persistence path is configured the previous
// snapshot is reloaded; a missing or corrupt snapshot yields an empty cache
// and is never fatal.
func New(optFns ...func(o *Options)) *Cache {
	opts := Options{MaxSize: DefaultMaxSize, TTL: DefaultTTL}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxSize < 1 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	c := &Cache{
		maxSize: opts.MaxSize,
		ttl:     opts.TTL,
		ll:      list.New(),
		items:   make(map[string]*list.Element),
		path:    opts.Path,
		logger:  logging.OrNoOp(opts.Logger),
		now:     time.Now,
	}
	if c.path != "" {
		c.load()
	}
	return c
}

// Key derives the stable cache key for a cloud call: a SHA-256 digest over
// the endpoint and the canonical JSON encoding of the payload. Map keys are
// serialized in sorted order, so logically equal payloads share a key.
func Key(endpoint string, payload map[string]any) (string, error) {
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("canonicalize payload: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{'\n'})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the cached value for a key. Expired entries are removed on
// access and count as both an expiration and a miss. Hits refresh recency,
// so the snapshot is rewritten on hits as well as mutations.
func (c *Cache) Get(key string) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.removeElement(el)
		c.stats.Expirations++
		c.stats.Misses++
		c.persist()
		return nil, false
	}
	c.ll.MoveToFront(el)
	c.stats.Hits++
	c.persist()
	return e.value, true
}

// Set stores a value under a key, refreshing recency and expiry for keys that
// already exist. When the cache is full the least recently used entry is
// evicted first.
func (c *Cache) Set(key string, value map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.expiresAt = expires
		c.ll.MoveToFront(el)
		c.stats.Insertions++
		c.persist()
		return
	}

	if c.ll.Len() >= c.maxSize {
		if oldest := c.ll.Back(); oldest != nil {
			c.removeElement(oldest)
			c.stats.Evictions++
		}
	}
	el := c.ll.PushFront(&entry{key: key, value: value, expiresAt: expires})
	c.items[key] = el
	c.stats.Insertions++
	c.persist()
}

// Delete removes a key when present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.removeElement(el)
		c.persist()
	}
}

// Clear drops all entries. Counters are kept; they are lifetime totals.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element)
	c.persist()
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Utilization is the current fill fraction of the cache.
func (c *Cache) Utilization() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.ll.Len()) / float64(c.maxSize)
}

func (c *Cache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	c.ll.Remove(el)
	delete(c.items, e.key)
}
