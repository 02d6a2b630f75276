package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redkv-io/redkv/internal/types"
)

type capturePublisher struct {
	mu     sync.Mutex
	gauges map[string]float64
	tags   map[string][]string
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{
		gauges: make(map[string]float64),
		tags:   make(map[string][]string),
	}
}

func (p *capturePublisher) Gauge(name string, value float64, tags ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gauges[name] = value
	p.tags[name] = tags
}

func (p *capturePublisher) Count(name string, value int64, tags ...string) {}

func (p *capturePublisher) Incr(name string, tags ...string) {}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) gauge(name string) (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.gauges[name]
	return v, ok
}

func TestTrackerTierAttribution(t *testing.T) {
	tracker := NewTracker()

	tracker.WriteBufferHit("ns", types.CmdHGet)
	tracker.WriteBufferHit("ns", types.CmdHGet)
	tracker.LocalCacheHit("ns", types.CmdHGet)
	tracker.KVStoreHit("other", types.CmdHExists)

	snap := tracker.Snapshot()
	assert.Equal(t, int64(2), snap.WriteBufferHits)
	assert.Equal(t, int64(1), snap.LocalCacheHits)
	assert.Equal(t, int64(1), snap.KVStoreHits)

	require.Len(t, snap.Tiers, 3)
	// Sorted by namespace, then command, then tier.
	assert.Equal(t, TierCount{Namespace: "ns", Command: "HGET", Tier: TierLocalCache, Count: 1}, snap.Tiers[0])
	assert.Equal(t, TierCount{Namespace: "ns", Command: "HGET", Tier: TierWriteBuffer, Count: 2}, snap.Tiers[1])
	assert.Equal(t, TierCount{Namespace: "other", Command: "HEXISTS", Tier: TierKVStore, Count: 1}, snap.Tiers[2])
}

func TestTrackerCacheGaugeKeepsLatest(t *testing.T) {
	tracker := NewTracker()

	tracker.LRUCacheState("ns", "hash", 100, 10, 4096, 1<<20)
	tracker.LRUCacheState("ns", "hash", 200, 20, 8192, 1<<20)

	snap := tracker.Snapshot()
	require.Len(t, snap.Caches, 1)
	assert.Equal(t, 200, snap.Caches[0].Capacity)
	assert.Equal(t, int64(20), snap.Caches[0].KeyCount)
	assert.Equal(t, int64(8192), snap.Caches[0].EstimatedSize)
}

func TestTrackerWriteBufferState(t *testing.T) {
	tracker := NewTracker()

	tracker.WriteBufferState("ns", 5, false)
	tracker.WriteBufferState("ns", 3, true)
	tracker.WriteBufferState("ns", 3, true)

	snap := tracker.Snapshot()
	assert.Equal(t, int64(3), snap.WriteBufferPending)
	assert.Equal(t, int64(2), snap.WriteBufferOverflow)
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker()
	tracker.LocalCacheHit("ns", types.CmdHGetAll)
	tracker.LRUCacheState("ns", "hash", 1, 1, 1, 1)

	tracker.Reset()

	snap := tracker.Snapshot()
	assert.Zero(t, snap.LocalCacheHits)
	assert.Empty(t, snap.Tiers)
	assert.Empty(t, snap.Caches)
}

func TestTrackerConcurrentRecording(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.LocalCacheHit("ns", types.CmdHGet)
			}
		}()
	}
	wg.Wait()

	snap := tracker.Snapshot()
	assert.Equal(t, int64(1600), snap.LocalCacheHits)
	require.Len(t, snap.Tiers, 1)
	assert.Equal(t, int64(1600), snap.Tiers[0].Count)
}

func TestBackgroundPublisherPublishNow(t *testing.T) {
	tracker := NewTracker()
	tracker.WriteBufferState("ns", 7, false)
	tracker.LRUCacheState("ns", "hash", 50, 12, 2048, 1<<20)

	pub := newCapturePublisher()
	bg := NewBackgroundPublisher(tracker, pub, time.Hour, nil)
	bg.PublishNow()

	pending, ok := pub.gauge("write_buffer.pending")
	require.True(t, ok)
	assert.Equal(t, 7.0, pending)

	capacity, ok := pub.gauge("lru.capacity")
	require.True(t, ok)
	assert.Equal(t, 50.0, capacity)
	assert.Contains(t, pub.tags["lru.capacity"], "namespace:ns")
	assert.Contains(t, pub.tags["lru.capacity"], "cache:hash")
}

func TestBackgroundPublisherLifecycle(t *testing.T) {
	tracker := NewTracker()
	tracker.KVStoreHit("ns", types.CmdHLen)

	pub := newCapturePublisher()
	bg := NewBackgroundPublisher(tracker, pub, 10*time.Millisecond, nil)
	bg.Start(context.Background())

	assert.Eventually(t, func() bool {
		_, ok := pub.gauge("lookup.tier_hits")
		return ok
	}, time.Second, 5*time.Millisecond)

	bg.Stop()
}

func TestNoOpPublisherIsSafe(t *testing.T) {
	pub := NewNoOpPublisher()
	pub.Gauge("g", 1)
	pub.Count("c", 1)
	pub.Incr("i")
	assert.NoError(t, pub.Close())
}

func TestTags(t *testing.T) {
	assert.Equal(t, "namespace:ns", NamespaceTag("ns"))
	assert.Equal(t, "command:hset", CommandTag("hset"))
	assert.Equal(t, "tier:local-cache", TierTag(TierLocalCache))
}
