package cache

import "sync"

// Cache is a thread-safe LRU cache bounded by total entry cost.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*lruNode[K, V]
	lru     lruList[K, V]
	limit   int64
	cost    int64
	onEvict func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding entries of up to limit total cost.
// A limit of 0 means unlimited. onEvict, if not nil, is called with the
// cache lock held for every entry removed by eviction, replacement or
// Clear; it must not call back into the cache.
func New[K comparable, V any](limit int64, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*lruNode[K, V]),
		limit:   limit,
		onEvict: onEvict,
	}
}

// Get retrieves a value and marks it as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.lru.moveToFront(node)
	return node.value, true
}

// Set stores a value with the given cost, replacing any previous value
// for key, then evicts old entries until the total cost fits the limit.
func (c *Cache[K, V]) Set(key K, value V, cost int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.remove(old)
		if c.onEvict != nil {
			c.onEvict(old.key, old.value)
		}
	}
	node := &lruNode[K, V]{key: key, value: value, cost: cost}
	c.entries[key] = node
	c.lru.pushFront(node)
	c.cost += cost

	for c.limit > 0 && c.cost > c.limit {
		victim := c.lru.oldest()
		if victim == node {
			break
		}
		c.remove(victim)
		c.evictions++
		if c.onEvict != nil {
			c.onEvict(victim.key, victim.value)
		}
	}
}

// Delete removes an entry without calling onEvict and returns its value.
func (c *Cache[K, V]) Delete(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.remove(node)
	return node.value, true
}

// Clear removes all entries, calling onEvict for each.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for node := c.lru.oldest(); node != nil; node = c.lru.oldest() {
		c.remove(node)
		if c.onEvict != nil {
			c.onEvict(node.key, node.value)
		}
	}
}

// remove unlinks node. Caller must hold c.mu.
func (c *Cache[K, V]) remove(node *lruNode[K, V]) {
	c.lru.unlink(node)
	delete(c.entries, node.key)
	c.cost -= node.cost
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cost returns the summed cost of all entries.
func (c *Cache[K, V]) Cost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cost
}

// Limit returns the cost limit, 0 when unlimited.
func (c *Cache[K, V]) Limit() int64 {
	return c.limit
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Cost:      c.cost,
		Limit:     c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Cost is the summed cost of all entries.
	Cost int64
	// Limit is the cost limit, 0 when unlimited.
	Limit int64
	// Hits is the number of successful lookups.
	Hits uint64
	// Misses is the number of failed lookups.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions is the number of entries evicted to respect the limit.
	Evictions uint64
}
