package kv

import (
	"bytes"
	"context"
	"sort"
	"sync"
)

// MemoryStore is an embedded, in-process sorted KV store. It backs tests
// and single-node deployments without an external backend; it is not a
// durability layer.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[int]map[string][]byte
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[int]map[string][]byte)}
}

func (s *MemoryStore) slotEntries(slot int) map[string][]byte {
	entries, ok := s.slots[slot]
	if !ok {
		entries = make(map[string][]byte)
		s.slots[slot] = entries
	}
	return entries
}

// Get returns the value for key, or (nil, nil) when absent.
func (s *MemoryStore) Get(_ context.Context, slot int, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.slots[slot]
	if !ok {
		return nil, nil
	}
	value, ok := entries[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Exists reports per-key presence, aligned with keys.
func (s *MemoryStore) Exists(_ context.Context, slot int, keys ...[]byte) ([]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]bool, len(keys))
	entries, ok := s.slots[slot]
	if !ok {
		return out, nil
	}
	for i, key := range keys {
		_, out[i] = entries[string(key)]
	}
	return out, nil
}

// BatchPut writes all entries.
func (s *MemoryStore) BatchPut(_ context.Context, slot int, list []KeyValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.slotEntries(slot)
	for _, kv := range list {
		value := make([]byte, len(kv.Value))
		copy(value, kv.Value)
		entries[string(kv.Key)] = value
	}
	return nil
}

// BatchDelete removes all keys.
func (s *MemoryStore) BatchDelete(_ context.Context, slot int, keys ...[]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.slots[slot]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(entries, string(key))
	}
	return nil
}

// ScanByPrefix returns matching entries in ascending key order.
func (s *MemoryStore) ScanByPrefix(_ context.Context, slot int, prefix []byte, limit int) ([]KeyValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.slots[slot]
	if !ok {
		return nil, nil
	}

	var keys []string
	for k := range entries {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]KeyValue, 0, len(keys))
	for _, k := range keys {
		value := make([]byte, len(entries[k]))
		copy(value, entries[k])
		out = append(out, KeyValue{Key: []byte(k), Value: value})
	}
	return out, nil
}

// Len returns the total entry count across slots, for tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, entries := range s.slots {
		n += len(entries)
	}
	return n
}

var _ Client = (*MemoryStore)(nil)
