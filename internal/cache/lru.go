// internal/cache/lru.go
//
// Small generic LRU.  The view engine keeps parsed template sets in one,
// requestinfo keeps parsed User-Agents in another.  All methods take an
// internal mutex, so one LRU can be shared across requests; Stats feeds
// the cache gauges on /metrics.
package cache

import "sync"

// Stats is a point-in-time snapshot of an LRU.
type Stats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// node is one entry on the recency ring; root.next is the MRU entry.
type node[K comparable, V any] struct {
	prev, next *node[K, V]
	key        K
	val        V
}

// LRU is a least-recently-used cache with a fixed capacity.
type LRU[K comparable, V any] struct {
	mu    sync.Mutex
	limit int
	items map[K]*node[K, V]
	root  node[K, V] // sentinel
	stats Stats
}

// New returns an LRU holding at most capacity entries.  Panics on
// capacity < 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be at least 1")
	}
	c := &LRU[K, V]{limit: capacity, items: make(map[K]*node[K, V], capacity)}
	c.root.next, c.root.prev = &c.root, &c.root
	return c
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.items[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.touch(n)
	return n.val, true
}

// Add inserts or replaces key, evicting the least recently used entry
// when the cache is full.
func (c *LRU[K, V]) Add(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.items[key]; ok {
		n.val = val
		c.touch(n)
		return
	}
	n := &node[K, V]{key: key, val: val}
	c.items[key] = n
	c.link(n)
	if len(c.items) > c.limit {
		old := c.root.prev
		c.unlink(old)
		delete(c.items, old.key)
		c.stats.Evictions++
	}
}

// Remove drops key if present.
func (c *LRU[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.items[key]; ok {
		c.unlink(n)
		delete(c.items, key)
	}
}

// Purge drops every entry.  Counters are kept.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
	c.root.next, c.root.prev = &c.root, &c.root
}

// Len reports the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the current counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Len = len(c.items)
	return s
}

func (c *LRU[K, V]) touch(n *node[K, V]) {
	c.unlink(n)
	c.link(n)
}

// link inserts n at the front.
func (c *LRU[K, V]) link(n *node[K, V]) {
	n.prev, n.next = &c.root, c.root.next
	c.root.next.prev = n
	c.root.next = n
}

func (c *LRU[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}
