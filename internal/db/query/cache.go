package query

import (
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"

	"github.com/rebeliceyang/surveylens/internal/models"
)

// resultCache keeps results of an immutable dataset keyed by the hash of
// the SQL text. Oldest entries are evicted first.
type resultCache struct {
	max int

	mu      sync.Mutex
	entries map[uint64]cacheEntry
	order   []uint64

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheEntry struct {
	sql    string
	result models.QueryResult
}

func newResultCache(max int) *resultCache {
	return &resultCache{
		max:     max,
		entries: make(map[uint64]cacheEntry),
	}
}

func (c *resultCache) get(sql string) (models.QueryResult, bool) {
	if c.max <= 0 {
		return models.QueryResult{}, false
	}
	key := xxh3.HashString(sql)

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()

	// a hash collision is a miss
	if !ok || e.sql != sql {
		c.misses.Add(1)
		return models.QueryResult{}, false
	}
	c.hits.Add(1)
	return e.result, true
}

func (c *resultCache) put(sql string, res models.QueryResult) {
	if c.max <= 0 {
		return
	}
	key := xxh3.HashString(sql)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{sql: sql, result: res}

	for len(c.order) > c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *resultCache) stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
