// Package mapcache provides the process-wide marker and font-face
// caches of spec.md §5 ("Shared resources"), safe for concurrent use
// behind per-shard locks. Entries are not reference-counted, and Set
// replaces an existing key's value in place.
// Adapted near-verbatim from gogpu-gg/cache/sharded.go's ShardedCache —
// 16-shard FNV hashing, per-shard LRU eviction, double-checked-locking
// GetOrCreate, atomic hit/miss/eviction counters — retyped from the
// teacher's own key/value instantiation onto cartograph's marker
// (path → image bytes) and font (face key → shaped face) caches.
package mapcache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const shardCount = 16

// Hasher produces a shard-selecting hash for a key.
type Hasher[K comparable] func(key K) uint64

// StringHasher hashes K via its fmt-free FNV-1a byte encoding, for
// K = string.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Stats reports cumulative cache counters.
type Stats struct {
	Hits, Misses, Evictions uint64
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

type shard[K comparable, V any] struct {
	mu       sync.RWMutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recently used

	hits, misses, evictions atomic.Uint64
}

// Sharded is a fixed-shard-count LRU cache, process-wide and safe for
// concurrent use from many render passes at once.
type Sharded[K comparable, V any] struct {
	shards [shardCount]*shard[K, V]
	hasher Hasher[K]
}

// NewSharded builds a cache with capacityPerShard entries per shard
// (so total capacity is capacityPerShard*16), using hasher to route
// keys to shards.
func NewSharded[K comparable, V any](capacityPerShard int, hasher Hasher[K]) *Sharded[K, V] {
	if capacityPerShard <= 0 {
		capacityPerShard = 64
	}
	c := &Sharded[K, V]{hasher: hasher}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{
			capacity: capacityPerShard,
			items:    make(map[K]*list.Element),
			order:    list.New(),
		}
	}
	return c
}

func (c *Sharded[K, V]) getShard(key K) *shard[K, V] {
	return c.shards[c.hasher(key)%shardCount]
}

// Get returns the cached value for key, if present, touching its LRU
// recency.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	s := c.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.items[key]
	if !ok {
		s.misses.Add(1)
		var zero V
		return zero, false
	}
	s.order.MoveToFront(el)
	s.hits.Add(1)
	return el.Value.(*entry[K, V]).value, true
}

// Set inserts or overwrites key's value, evicting the shard's least
// recently used entry if it is over capacity.
func (c *Sharded[K, V]) Set(key K, value V) {
	s := c.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value)
}

func (s *shard[K, V]) setLocked(key K, value V) {
	if el, ok := s.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		s.order.MoveToFront(el)
		return
	}
	el := s.order.PushFront(&entry[K, V]{key: key, value: value})
	s.items[key] = el
	if s.order.Len() > s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.items, oldest.Value.(*entry[K, V]).key)
			s.evictions.Add(1)
		}
	}
}

// GetOrCreate returns the cached value for key, calling create and
// storing its result if absent. create is called at most once per key
// even under concurrent callers (double-checked locking).
func (c *Sharded[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	s := c.getShard(key)

	s.mu.Lock()
	if el, ok := s.items[key]; ok {
		s.order.MoveToFront(el)
		s.hits.Add(1)
		v := el.Value.(*entry[K, V]).value
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		s.order.MoveToFront(el)
		s.hits.Add(1)
		return el.Value.(*entry[K, V]).value, nil
	}
	s.misses.Add(1)
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	s.setLocked(key, v)
	return v, nil
}

// Delete removes key from the cache, if present.
func (c *Sharded[K, V]) Delete(key K) {
	s := c.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		s.order.Remove(el)
		delete(s.items, key)
	}
}

// Clear empties every shard.
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.items = make(map[K]*list.Element)
		s.order.Init()
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *Sharded[K, V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Stats returns cumulative hit/miss/eviction counters across all shards.
func (c *Sharded[K, V]) Stats() Stats {
	var st Stats
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		st.Evictions += s.evictions.Load()
	}
	return st
}
