// Package buffer implements the pre-flush write buffer tier. An entry here
// is authoritative: readers must use it verbatim and never fall through to
// the local cache or the backend for that key.
package buffer

import (
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/redkv-io/redkv/internal/config"
)

const shardCount = 32

// Value wraps a buffered cached value.
type Value[T any] struct {
	value   T
	version uint64
}

// Value returns the buffered value. Authoritative for its cache key.
func (v *Value[T]) Value() T {
	return v.value
}

// Ticket is the flush obligation returned by Put. The writer completes the
// backend write and then calls Flushed with it; until then the entry stays
// visible to readers.
type Ticket struct {
	key      string
	version  uint64
	buffered bool
}

// Buffered reports whether the write was accepted into the buffer. When
// false (buffer disabled or over its pending ceiling), the caller must
// write to the backend synchronously before answering.
func (t Ticket) Buffered() bool {
	return t.buffered
}

type shard[T any] struct {
	mu      sync.Mutex
	entries map[string]*Value[T]
}

// WriteBuffer holds values written but not yet committed to the backend.
// Sharded by cache-key hash so unrelated keys never contend on one lock.
type WriteBuffer[T any] struct {
	shards     [shardCount]shard[T]
	version    atomic.Uint64
	pending    atomic.Int64
	maxPending int64
	enabled    bool
}

// New creates a write buffer per cfg.
func New[T any](cfg config.WriteBufferConfig) *WriteBuffer[T] {
	wb := &WriteBuffer[T]{
		enabled:    cfg.Enabled,
		maxPending: int64(cfg.MaxPending),
	}
	for i := range wb.shards {
		wb.shards[i].entries = make(map[string]*Value[T])
	}
	return wb
}

func (wb *WriteBuffer[T]) shard(key string) *shard[T] {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &wb.shards[h.Sum32()&(shardCount-1)]
}

// Get returns the buffered value for cacheKey, or nil. No side effects.
func (wb *WriteBuffer[T]) Get(cacheKey []byte) *Value[T] {
	if !wb.enabled {
		return nil
	}
	key := string(cacheKey)
	s := wb.shard(key)
	s.mu.Lock()
	v := s.entries[key]
	s.mu.Unlock()
	return v
}

// Put buffers value under cacheKey and returns the flush ticket. Over the
// pending ceiling (or with buffering disabled) nothing is stored and the
// ticket is unbuffered.
func (wb *WriteBuffer[T]) Put(cacheKey []byte, value T) Ticket {
	if !wb.enabled {
		return Ticket{}
	}
	key := string(cacheKey)
	s := wb.shard(key)

	s.mu.Lock()
	_, ok := s.entries[key]
	if !ok && wb.pending.Load() >= wb.maxPending {
		s.mu.Unlock()
		return Ticket{}
	}
	version := wb.version.Add(1)
	s.entries[key] = &Value[T]{value: value, version: version}
	s.mu.Unlock()

	if !ok {
		wb.pending.Add(1)
	}
	return Ticket{key: key, version: version, buffered: true}
}

// Flushed releases the entry named by a ticket once its backend write is
// durable. If the key was rewritten after the ticket was issued, the newer
// entry stays: a reader sees either the pre-flush or post-flush state,
// never a gap.
func (wb *WriteBuffer[T]) Flushed(t Ticket) {
	if !t.buffered {
		return
	}
	s := wb.shard(t.key)
	s.mu.Lock()
	existing, ok := s.entries[t.key]
	removed := false
	if ok && existing.version == t.version {
		delete(s.entries, t.key)
		removed = true
	}
	s.mu.Unlock()
	if removed {
		wb.pending.Add(-1)
	}
}

// Pending returns the current buffered entry count.
func (wb *WriteBuffer[T]) Pending() int64 {
	return wb.pending.Load()
}

// Enabled reports whether buffering is on for this instance.
func (wb *WriteBuffer[T]) Enabled() bool {
	return wb.enabled
}
