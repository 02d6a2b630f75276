// Package config provides static configuration loading and the dynamic
// reloadable configuration snapshot consumed by the cache sizing loop.
package config

import "time"

// Config contains all configuration for one kv upstream.
//
//nolint:govet // Configuration struct - logical grouping prioritized over alignment
type Config struct {
	Namespace   string            `json:"namespace"`
	Cache       CacheConfig       `json:"cache"`
	WriteBuffer WriteBufferConfig `json:"writeBuffer"`
	AsyncWrite  AsyncWriteConfig  `json:"asyncWrite"`
	MetaCache   MetaCacheConfig   `json:"metaCache"`
	Metrics     MetricsConfig     `json:"metrics"`
	// Overrides seeds the dynamic configuration snapshot. Keys use the
	// flat "namespace.name" / "name" form, e.g. "hash.size" or
	// "kv.lru.cache.max.capacity".
	Overrides map[string]string `json:"overrides"`
}

// CacheConfig contains configuration for the local LRU cache tier.
type CacheConfig struct {
	HashLocalCacheEnabled bool `json:"hashLocalCacheEnabled"`
	// InitialCapacity is the entry-count capacity a cache starts with
	// before the capacity calculator has observed any data.
	InitialCapacity int `json:"initialCapacity"`
	// Shards is the number of lock shards per slot LRU cache.
	Shards int `json:"shards"`
	// CapacityUpdateInterval is the capacity calculator tick period.
	CapacityUpdateInterval time.Duration `json:"capacityUpdateInterval"`

	HotKeyThreshold int64         `json:"hotKeyThreshold"`
	HotKeyWindow    time.Duration `json:"hotKeyWindow"`
	HotKeyCounters  int64         `json:"hotKeyCounters"`
}

// WriteBufferConfig bounds the pre-flush write buffer tier.
type WriteBufferConfig struct {
	Enabled bool `json:"enabled"`
	// MaxPending is the pending-entry ceiling; above it, writes degrade to
	// synchronous KV puts instead of buffering.
	MaxPending int `json:"maxPending"`
}

// AsyncWriteConfig sizes the per-slot ordered flush workers.
type AsyncWriteConfig struct {
	Workers   int `json:"workers"`
	QueueSize int `json:"queueSize"`
}

// MetaCacheConfig configures the bigcache-backed key metadata cache.
type MetaCacheConfig struct {
	Enabled         bool          `json:"enabled"`
	TTL             time.Duration `json:"ttl"`
	CleanupInterval time.Duration `json:"cleanupInterval"`
	Shards          int           `json:"shards"`
	MaxSizeMB       int           `json:"maxSizeMB"`
}

// MetricsConfig contains configuration for metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type MetricsConfig struct {
	PublishInterval time.Duration `json:"publishInterval"`
	DataDog         DataDogConfig `json:"datadog"`
	Enabled         bool          `json:"enabled"`
}

// DataDogConfig contains configuration for DataDog metrics publishing.
//
//nolint:govet // Small config struct - minimal alignment benefit
type DataDogConfig struct {
	Tags      []string `json:"tags"`
	AgentHost string   `json:"agentHost"`
	Prefix    string   `json:"prefix"`
	Port      int      `json:"port"`
	Enabled   bool     `json:"enabled"`
}
