package results

import (
	"sync"
	"time"

	"github.com/fortuna/veto/internal/scrape"
)

// DefaultTTL is how long a cache entry stays valid for consumption.
const DefaultTTL = 5 * time.Minute

type entry struct {
	records   []scrape.MatchRecord
	fetchedAt time.Time
}

// Cache holds extraction output keyed by dimension. Entries are
// immutable snapshots: a refresh swaps the whole entry, never mutates
// the stored list, so concurrent fetches of the same dimension settle
// last-writer-wins.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

// NewCache creates a cache with the given TTL (DefaultTTL if zero).
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the stored records for a dimension if the entry is still
// fresh at now.
func (c *Cache) Get(d Dimension, now time.Time) ([]scrape.MatchRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[d.Key()]
	if !ok || now.Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.records, true
}

// Put replaces the entry for a dimension with a fresh snapshot.
func (c *Cache) Put(d Dimension, records []scrape.MatchRecord, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[d.Key()] = entry{records: records, fetchedAt: now}
}

// Len returns the number of populated slots (for the health endpoint).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
