package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Sizer estimates the byte footprint of one cached value.
type Sizer[V any] func(V) int64

type lruEntry[V any] struct {
	key   string
	value V
	bytes int64
}

// Shard invariants: entries and order always describe the same set;
// order's front is the most recently used entry; bytes is the sum of the
// entries' size estimates.
type lruShard[V any] struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
	bytes   int64
}

// SlotLRUCache is a slot-partitioned LRU cache of materialized values.
// Slots map onto lock shards, so commands for unrelated slots never
// serialize on one lock. Capacity is the total entry budget across shards;
// it is advisory-mutable and takes effect on the next eviction decision.
type SlotLRUCache[V any] struct {
	shards   []*lruShard[V]
	capacity atomic.Int64
	count    atomic.Int64
	size     atomic.Int64
	sizeOf   Sizer[V]
}

// NewSlotLRUCache creates a cache with shards lock shards (power of two)
// and an initial entry capacity.
func NewSlotLRUCache[V any](shards, capacity int, sizeOf Sizer[V]) *SlotLRUCache[V] {
	c := &SlotLRUCache[V]{
		shards: make([]*lruShard[V], shards),
		sizeOf: sizeOf,
	}
	for i := range c.shards {
		c.shards[i] = &lruShard[V]{
			entries: make(map[string]*list.Element),
			order:   list.New(),
		}
	}
	c.SetCapacity(capacity)
	return c
}

func (c *SlotLRUCache[V]) shard(slot int) *lruShard[V] {
	return c.shards[slot&(len(c.shards)-1)]
}

// perShardCapacity divides the total budget across shards, never below one
// entry per shard. Budgets smaller than the shard count round up here, so
// Put also enforces the total budget after the per-shard pass.
func (c *SlotLRUCache[V]) perShardCapacity() int {
	per := int(c.capacity.Load()) / len(c.shards)
	if per < 1 {
		per = 1
	}
	return per
}

// evictOldest drops s's least recently used entry. Caller holds s.mu.
func (c *SlotLRUCache[V]) evictOldest(s *lruShard[V]) bool {
	oldest := s.order.Back()
	if oldest == nil {
		return false
	}
	entry := oldest.Value.(*lruEntry[V])
	s.order.Remove(oldest)
	delete(s.entries, entry.key)
	s.bytes -= entry.bytes
	c.count.Add(-1)
	c.size.Add(-entry.bytes)
	return true
}

// Get returns the cached value for cacheKey and promotes it to most
// recently used.
func (c *SlotLRUCache[V]) Get(slot int, cacheKey []byte) (V, bool) {
	s := c.shard(slot)
	key := string(cacheKey)

	s.mu.Lock()
	elem, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		var zero V
		return zero, false
	}
	s.order.MoveToFront(elem)
	value := elem.Value.(*lruEntry[V]).value
	s.mu.Unlock()
	return value, true
}

// Put inserts or replaces the value for cacheKey, evicting least recently
// used entries in the owning shard while it exceeds its share of the
// capacity or while the total entry count exceeds the published budget.
func (c *SlotLRUCache[V]) Put(slot int, cacheKey []byte, value V) {
	s := c.shard(slot)
	key := string(cacheKey)
	bytes := c.sizeOf(value)
	per := c.perShardCapacity()

	s.mu.Lock()
	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*lruEntry[V])
		s.bytes += bytes - entry.bytes
		c.size.Add(bytes - entry.bytes)
		entry.value = value
		entry.bytes = bytes
		s.order.MoveToFront(elem)
		s.mu.Unlock()
		return
	}

	s.entries[key] = s.order.PushFront(&lruEntry[V]{key: key, value: value, bytes: bytes})
	s.bytes += bytes
	c.count.Add(1)
	c.size.Add(bytes)

	for s.order.Len() > per {
		if !c.evictOldest(s) {
			break
		}
	}
	// The per-shard floor of one entry lets the global count drift above a
	// budget smaller than the shard count, so settle the total against the
	// inserting shard as well.
	for c.count.Load() > c.capacity.Load() {
		if !c.evictOldest(s) {
			break
		}
	}
	s.mu.Unlock()
}

// Delete removes the entry for cacheKey if present.
func (c *SlotLRUCache[V]) Delete(slot int, cacheKey []byte) {
	s := c.shard(slot)
	key := string(cacheKey)

	s.mu.Lock()
	if elem, ok := s.entries[key]; ok {
		entry := elem.Value.(*lruEntry[V])
		s.order.Remove(elem)
		delete(s.entries, key)
		s.bytes -= entry.bytes
		c.count.Add(-1)
		c.size.Add(-entry.bytes)
	}
	s.mu.Unlock()
}

// Clear drops every entry.
func (c *SlotLRUCache[V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		for _, elem := range s.entries {
			entry := elem.Value.(*lruEntry[V])
			c.count.Add(-1)
			c.size.Add(-entry.bytes)
		}
		s.entries = make(map[string]*list.Element)
		s.order = list.New()
		s.bytes = 0
		s.mu.Unlock()
	}
}

// Size returns the current entry count.
func (c *SlotLRUCache[V]) Size() int64 {
	return c.count.Load()
}

// EstimateSize returns the approximate byte footprint of all entries.
func (c *SlotLRUCache[V]) EstimateSize() int64 {
	return c.size.Load()
}

// Capacity returns the current total entry budget.
func (c *SlotLRUCache[V]) Capacity() int {
	return int(c.capacity.Load())
}

// SetCapacity publishes a new entry budget. Safe to call while reads and
// writes proceed; eviction to the new budget happens on subsequent Puts,
// not synchronously. Non-positive values are clamped to one.
func (c *SlotLRUCache[V]) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	c.capacity.Store(int64(capacity))
}
