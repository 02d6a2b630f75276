package cache

import (
	"github.com/redkv-io/redkv/internal/types"
)

// HashLRUCache is the local cache tier for hash values: a slot-partitioned
// LRU of materialized RedisHash instances plus the hot-key gate deciding
// which misses earn a full-value promotion.
type HashLRUCache struct {
	namespace string
	cache     *SlotLRUCache[*RedisHash]
	oracle    types.HotKeyOracle
}

// NewHashLRUCache creates the hash cache tier for one namespace.
func NewHashLRUCache(namespace string, shards, capacity int, oracle types.HotKeyOracle) *HashLRUCache {
	return &HashLRUCache{
		namespace: namespace,
		cache:     NewSlotLRUCache[*RedisHash](shards, capacity, (*RedisHash).EstimateSize),
		oracle:    oracle,
	}
}

// Name is the cache name used in configuration keys and telemetry.
func (c *HashLRUCache) Name() string { return "hash" }

// Namespace returns the owning namespace.
func (c *HashLRUCache) Namespace() string { return c.namespace }

// GetForRead returns the cached hash for cacheKey, or nil on a miss.
// Access promotes the entry to most recently used.
func (c *HashLRUCache) GetForRead(slot int, cacheKey []byte) *RedisHash {
	hash, ok := c.cache.Get(slot, cacheKey)
	if !ok {
		return nil
	}
	return hash
}

// PutAllForRead inserts a fully materialized hash loaded from the backend.
func (c *HashLRUCache) PutAllForRead(slot int, cacheKey []byte, hash *RedisHash) {
	c.cache.Put(slot, cacheKey, hash)
}

// IsHotKey asks the oracle whether a miss on key justifies a promotion
// load instead of a narrow point lookup.
func (c *HashLRUCache) IsHotKey(key []byte, kind types.CommandKind) bool {
	if c.oracle == nil {
		return false
	}
	return c.oracle.IsHotKey(key, kind)
}

// HSet applies a field write to the cached hash if one is present and
// returns the previous values of already-existing fields. The second
// return is false on a cache miss; the caller then decides between
// promotion and a direct backend write.
func (c *HashLRUCache) HSet(slot int, cacheKey []byte, fields map[string][]byte) (map[string][]byte, bool) {
	hash, ok := c.cache.Get(slot, cacheKey)
	if !ok {
		return nil, false
	}
	return hash.HSet(fields), true
}

// HDel applies a field delete to the cached hash if one is present and
// returns the removed values. The second return is false on a cache miss.
func (c *HashLRUCache) HDel(slot int, cacheKey []byte, fields [][]byte) (map[string][]byte, bool) {
	hash, ok := c.cache.Get(slot, cacheKey)
	if !ok {
		return nil, false
	}
	return hash.HDel(fields), true
}

// Delete drops the cached hash for cacheKey, if any.
func (c *HashLRUCache) Delete(slot int, cacheKey []byte) {
	c.cache.Delete(slot, cacheKey)
}

// Size returns the current entry count.
func (c *HashLRUCache) Size() int64 { return c.cache.Size() }

// EstimateSize returns the approximate byte footprint of cached hashes.
func (c *HashLRUCache) EstimateSize() int64 { return c.cache.EstimateSize() }

// Capacity returns the current entry budget.
func (c *HashLRUCache) Capacity() int { return c.cache.Capacity() }

// SetCapacity publishes a new entry budget.
func (c *HashLRUCache) SetCapacity(capacity int) { c.cache.SetCapacity(capacity) }
