// Package cache stores validation results keyed by deck content hash,
// so a daemon revalidating the same revision does not parse it twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"github.com/windtools/fstdeck/internal/deck"
	"github.com/windtools/fstdeck/internal/metrics"
)

// Result is one cached validation outcome.
type Result struct {
	DeckHash  string       `json:"deckHash"`
	Clean     bool         `json:"clean"`
	Issues    []deck.Issue `json:"issues,omitempty"`
	CheckedAt time.Time    `json:"checkedAt"`
}

// Cache provides thread-safe result storage with expiration support.
type Cache interface {
	// Get retrieves a result. The second return is false if the key is
	// absent or expired.
	Get(key string) (Result, bool)
	// Set stores a result with the specified TTL.
	Set(key string, res Result, ttl time.Duration)
	// Delete removes a result.
	Delete(key string)
	// Clear removes all results.
	Clear()
	// Stats returns cache statistics.
	Stats() Stats
	// Close releases backend resources.
	Close() error
}

// Stats holds cache performance counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Evictions   int64 `json:"evictions"`
	CurrentSize int   `json:"currentSize"`
}

// Key derives the cache key for a deck source: the hex SHA-256 of its bytes.
func Key(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

type entry struct {
	res     Result
	expires time.Time
}

// memoryCache is the in-process implementation of Cache.
type memoryCache struct {
	mu         sync.RWMutex
	maxEntries int
	entries    map[string]entry
	stop       chan struct{} // nil when no sweeper runs
	closeOnce  sync.Once

	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

// NewMemoryCache creates an in-process cache holding at most maxEntries
// results (0 means unbounded). The cleanupInterval determines how often
// expired entries are swept out; 0 disables the background sweep.
func NewMemoryCache(maxEntries int, cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		maxEntries: maxEntries,
		entries:    make(map[string]entry),
	}
	if cleanupInterval > 0 {
		c.stop = make(chan struct{})
		go c.sweep(cleanupInterval)
	}
	return c
}

func (c *memoryCache) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) Get(key string) (Result, bool) {
	c.mu.RLock()
	e, found := c.entries[key]
	c.mu.RUnlock()

	if !found || time.Now().After(e.expires) {
		c.misses.Add(1)
		metrics.IncCacheRequest("memory", "miss")
		return Result{}, false
	}

	c.hits.Add(1)
	metrics.IncCacheRequest("memory", "hit")
	return e.res, true
}

func (c *memoryCache) Set(key string, res Result, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, replacing := c.entries[key]
	if !replacing && c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictSoonestLocked()
	}

	c.entries[key] = entry{res: res, expires: time.Now().Add(ttl)}
	c.sets.Add(1)
}

// evictSoonestLocked frees one slot by dropping the entry closest to
// expiry, which sacrifices already-expired entries before live ones.
func (c *memoryCache) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for key, e := range c.entries {
		if victim == "" || e.expires.Before(soonest) {
			victim, soonest = key, e.expires
		}
	}
	if victim != "" {
		delete(c.entries, victim)
		c.evictions.Add(1)
	}
}

func (c *memoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *memoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

func (c *memoryCache) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: size,
	}
}

// Close stops the sweeper. Safe to call more than once.
func (c *memoryCache) Close() error {
	if c.stop != nil {
		c.closeOnce.Do(func() { close(c.stop) })
	}
	return nil
}

func (c *memoryCache) deleteExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int64
	for key, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	c.evictions.Add(removed)
}
