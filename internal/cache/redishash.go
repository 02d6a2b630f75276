// Package cache implements the local cache tier: slot-partitioned LRU
// caches of materialized values, the hot-key detector gating promotion, the
// capacity calculator, and the per-tenant instance manager.
package cache

import "sync"

// hashEntryOverhead approximates the per-field bookkeeping bytes counted by
// EstimateSize on top of the raw field and value lengths.
const hashEntryOverhead = 48

// RedisHash is the fully materialized in-memory form of one hash key.
// Safe for concurrent use; a cached instance may be read by many commands
// while another mutates it.
type RedisHash struct {
	mu     sync.RWMutex
	fields map[string][]byte
	size   int64
}

// NewRedisHash takes ownership of fields.
func NewRedisHash(fields map[string][]byte) *RedisHash {
	h := &RedisHash{fields: fields}
	for field, value := range fields {
		h.size += int64(len(field)+len(value)) + hashEntryOverhead
	}
	return h
}

// HExists reports whether field is present.
func (h *RedisHash) HExists(field []byte) bool {
	h.mu.RLock()
	_, ok := h.fields[string(field)]
	h.mu.RUnlock()
	return ok
}

// HGet returns the value of field, or (nil, false).
func (h *RedisHash) HGet(field []byte) ([]byte, bool) {
	h.mu.RLock()
	value, ok := h.fields[string(field)]
	h.mu.RUnlock()
	return value, ok
}

// HLen returns the field count.
func (h *RedisHash) HLen() int {
	h.mu.RLock()
	n := len(h.fields)
	h.mu.RUnlock()
	return n
}

// HGetAll returns a copy of all fields.
func (h *RedisHash) HGetAll() map[string][]byte {
	h.mu.RLock()
	out := make(map[string][]byte, len(h.fields))
	for field, value := range h.fields {
		out[field] = value
	}
	h.mu.RUnlock()
	return out
}

// HSet writes all entries of fields and returns the previous values of the
// fields that already existed.
func (h *RedisHash) HSet(fields map[string][]byte) map[string][]byte {
	existing := make(map[string][]byte)
	h.mu.Lock()
	for field, value := range fields {
		if old, ok := h.fields[field]; ok {
			existing[field] = old
			h.size -= int64(len(old))
		} else {
			h.size += int64(len(field)) + hashEntryOverhead
		}
		h.fields[field] = value
		h.size += int64(len(value))
	}
	h.mu.Unlock()
	return existing
}

// HDel removes fields and returns the values that were present.
func (h *RedisHash) HDel(fields [][]byte) map[string][]byte {
	deleted := make(map[string][]byte)
	h.mu.Lock()
	for _, field := range fields {
		if old, ok := h.fields[string(field)]; ok {
			deleted[string(field)] = old
			h.size -= int64(len(field)+len(old)) + hashEntryOverhead
			delete(h.fields, string(field))
		}
	}
	h.mu.Unlock()
	return deleted
}

// Duplicate returns a deep-enough copy for handing to another tier; cached
// values are never aliased between the write buffer and the LRU cache.
func (h *RedisHash) Duplicate() *RedisHash {
	return NewRedisHash(h.HGetAll())
}

// EstimateSize returns the approximate byte footprint.
func (h *RedisHash) EstimateSize() int64 {
	h.mu.RLock()
	size := h.size
	h.mu.RUnlock()
	return size
}
