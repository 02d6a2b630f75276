// Package metrics provides tier-hit attribution and cache sizing telemetry
// collection and publishing.
package metrics

import "time"

// Publisher is the sink counters and gauges are flushed to.
type Publisher interface {
	Gauge(name string, value float64, tags ...string)
	Count(name string, value int64, tags ...string)
	Incr(name string, tags ...string)
	Close() error
}

// TierCount is one (namespace, command, tier) hit counter value.
type TierCount struct {
	Namespace string
	Command   string
	Tier      string
	Count     int64
}

// LRUCacheGauge is the last reported sizing state of one cache.
type LRUCacheGauge struct {
	Namespace     string
	Name          string
	Capacity      int
	KeyCount      int64
	EstimatedSize int64
	TargetSize    int64
}

// Snapshot is a point-in-time view of all collected metrics.
type Snapshot struct {
	Timestamp time.Time

	WriteBufferHits int64
	LocalCacheHits  int64
	KVStoreHits     int64

	Tiers  []TierCount
	Caches []LRUCacheGauge

	WriteBufferPending  int64
	WriteBufferOverflow int64
}

// Tier names used in counter tags.
const (
	TierWriteBuffer = "write-buffer"
	TierLocalCache  = "local-cache"
	TierKVStore     = "kv-store"
)
