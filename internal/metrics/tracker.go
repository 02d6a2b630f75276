package metrics

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redkv-io/redkv/internal/types"
)

// Tracker accumulates tier-hit attribution counters and cache gauges.
// All recording paths are atomic increments; Snapshot is the only place
// that walks the maps.
type Tracker struct {
	writeBufferHits atomic.Int64
	localCacheHits  atomic.Int64
	kvStoreHits     atomic.Int64

	// key "namespace|command|tier" -> *atomic.Int64
	tiers sync.Map

	// key "namespace|name" -> *lruGauge
	caches sync.Map

	pending  atomic.Int64
	overflow atomic.Int64
}

type lruGauge struct {
	mu    sync.Mutex
	gauge LRUCacheGauge
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) tierCounter(namespace string, command types.CommandKind, tier string) *atomic.Int64 {
	key := namespace + "|" + string(command) + "|" + tier
	if v, ok := t.tiers.Load(key); ok {
		return v.(*atomic.Int64)
	}
	v, _ := t.tiers.LoadOrStore(key, &atomic.Int64{})
	return v.(*atomic.Int64)
}

// WriteBufferHit attributes one answered command to the write buffer tier.
func (t *Tracker) WriteBufferHit(namespace string, command types.CommandKind) {
	t.writeBufferHits.Add(1)
	t.tierCounter(namespace, command, TierWriteBuffer).Add(1)
}

// LocalCacheHit attributes one answered command to the local cache tier.
func (t *Tracker) LocalCacheHit(namespace string, command types.CommandKind) {
	t.localCacheHits.Add(1)
	t.tierCounter(namespace, command, TierLocalCache).Add(1)
}

// KVStoreHit attributes one answered command to the backend store.
func (t *Tracker) KVStoreHit(namespace string, command types.CommandKind) {
	t.kvStoreHits.Add(1)
	t.tierCounter(namespace, command, TierKVStore).Add(1)
}

// LRUCacheState records the capacity calculator's latest observation.
func (t *Tracker) LRUCacheState(namespace, name string, capacity int, keyCount, estimatedSize, targetSize int64) {
	key := namespace + "|" + name
	v, ok := t.caches.Load(key)
	if !ok {
		v, _ = t.caches.LoadOrStore(key, &lruGauge{})
	}
	g := v.(*lruGauge)
	g.mu.Lock()
	g.gauge = LRUCacheGauge{
		Namespace:     namespace,
		Name:          name,
		Capacity:      capacity,
		KeyCount:      keyCount,
		EstimatedSize: estimatedSize,
		TargetSize:    targetSize,
	}
	g.mu.Unlock()
}

// WriteBufferState records the buffer's pending depth; overflow counts puts
// that degraded to synchronous backend writes.
func (t *Tracker) WriteBufferState(_ string, pending int64, overflow bool) {
	t.pending.Store(pending)
	if overflow {
		t.overflow.Add(1)
	}
}

// Snapshot returns the current counters and gauges.
func (t *Tracker) Snapshot() Snapshot {
	snapshot := Snapshot{
		Timestamp:           time.Now(),
		WriteBufferHits:     t.writeBufferHits.Load(),
		LocalCacheHits:      t.localCacheHits.Load(),
		KVStoreHits:         t.kvStoreHits.Load(),
		WriteBufferPending:  t.pending.Load(),
		WriteBufferOverflow: t.overflow.Load(),
	}

	t.tiers.Range(func(k, v any) bool {
		parts := strings.SplitN(k.(string), "|", 3)
		snapshot.Tiers = append(snapshot.Tiers, TierCount{
			Namespace: parts[0],
			Command:   parts[1],
			Tier:      parts[2],
			Count:     v.(*atomic.Int64).Load(),
		})
		return true
	})
	sort.Slice(snapshot.Tiers, func(i, j int) bool {
		a, b := snapshot.Tiers[i], snapshot.Tiers[j]
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		if a.Command != b.Command {
			return a.Command < b.Command
		}
		return a.Tier < b.Tier
	})

	t.caches.Range(func(_, v any) bool {
		g := v.(*lruGauge)
		g.mu.Lock()
		snapshot.Caches = append(snapshot.Caches, g.gauge)
		g.mu.Unlock()
		return true
	})
	sort.Slice(snapshot.Caches, func(i, j int) bool {
		a, b := snapshot.Caches[i], snapshot.Caches[j]
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.Name < b.Name
	})

	return snapshot
}

// Reset clears all counters, for tests.
func (t *Tracker) Reset() {
	t.writeBufferHits.Store(0)
	t.localCacheHits.Store(0)
	t.kvStoreHits.Store(0)
	t.pending.Store(0)
	t.overflow.Store(0)
	t.tiers.Range(func(k, _ any) bool {
		t.tiers.Delete(k)
		return true
	})
	t.caches.Range(func(k, _ any) bool {
		t.caches.Delete(k)
		return true
	})
}

var _ types.Monitor = (*Tracker)(nil)
