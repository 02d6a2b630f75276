package config

import (
	"fmt"
	"time"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Namespace: "default",
		Cache: CacheConfig{
			HashLocalCacheEnabled:  true,
			InitialCapacity:        10_000,
			Shards:                 16,
			CapacityUpdateInterval: 10 * time.Second,
			HotKeyThreshold:        32,
			HotKeyWindow:           10 * time.Second,
			HotKeyCounters:         100_000,
		},
		WriteBuffer: WriteBufferConfig{
			Enabled:    true,
			MaxPending: 10_000,
		},
		AsyncWrite: AsyncWriteConfig{
			Workers:   8,
			QueueSize: 4096,
		},
		MetaCache: MetaCacheConfig{
			Enabled:         true,
			TTL:             5 * time.Minute,
			CleanupInterval: 10 * time.Second,
			Shards:          256,
			MaxSizeMB:       64,
		},
		Metrics: MetricsConfig{
			Enabled:         false,
			PublishInterval: 10 * time.Second,
			DataDog: DataDogConfig{
				AgentHost: "localhost",
				Port:      8125,
				Prefix:    "redkv.",
			},
		},
	}
}

// ForTesting returns a configuration suitable for unit tests: small caches,
// fast ticks, no external publishers.
func ForTesting() *Config {
	cfg := DefaultConfig()
	cfg.Cache.InitialCapacity = 128
	cfg.Cache.CapacityUpdateInterval = 50 * time.Millisecond
	cfg.Cache.HotKeyThreshold = 2
	cfg.MetaCache.MaxSizeMB = 8
	cfg.MetaCache.Shards = 16
	cfg.AsyncWrite.Workers = 2
	cfg.AsyncWrite.QueueSize = 64
	return cfg
}

// Validate checks the configuration for values the core cannot run with.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("config: namespace must not be empty")
	}
	if c.Cache.InitialCapacity <= 0 {
		return fmt.Errorf("config: cache initialCapacity must be positive, got %d", c.Cache.InitialCapacity)
	}
	if c.Cache.Shards <= 0 || c.Cache.Shards&(c.Cache.Shards-1) != 0 {
		return fmt.Errorf("config: cache shards must be a positive power of two, got %d", c.Cache.Shards)
	}
	if c.Cache.CapacityUpdateInterval <= 0 {
		return fmt.Errorf("config: capacityUpdateInterval must be positive")
	}
	if c.WriteBuffer.Enabled && c.WriteBuffer.MaxPending <= 0 {
		return fmt.Errorf("config: writeBuffer maxPending must be positive, got %d", c.WriteBuffer.MaxPending)
	}
	if c.AsyncWrite.Workers <= 0 {
		return fmt.Errorf("config: asyncWrite workers must be positive, got %d", c.AsyncWrite.Workers)
	}
	return nil
}
