package cache

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/types"
)

// HotKeyDetector is the built-in access-frequency oracle: a key becomes hot
// once it is seen threshold times within the rolling window. Counters live
// in a ristretto cache, so cold one-shot keys age out under admission
// pressure instead of growing the counter table without bound.
type HotKeyDetector struct {
	counters  *ristretto.Cache
	threshold int64
	window    time.Duration
	logger    *slog.Logger
}

// NewHotKeyDetector creates a detector per cfg.
func NewHotKeyDetector(cfg config.CacheConfig, logger *slog.Logger) (*HotKeyDetector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	counters, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.HotKeyCounters * 10,
		MaxCost:     cfg.HotKeyCounters,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &HotKeyDetector{
		counters:  counters,
		threshold: cfg.HotKeyThreshold,
		window:    cfg.HotKeyWindow,
		logger:    logger.With("component", "hot-key-detector"),
	}, nil
}

// IsHotKey counts this access and reports whether key crossed the
// frequency threshold within the window. The count is approximate:
// ristretto admission may drop a counter under pressure, which only delays
// promotion, never breaks correctness.
func (d *HotKeyDetector) IsHotKey(key []byte, _ types.CommandKind) bool {
	k := string(key)
	if v, ok := d.counters.Get(k); ok {
		counter, ok := v.(*atomic.Int64)
		if !ok {
			return false
		}
		return counter.Add(1) >= d.threshold
	}

	counter := &atomic.Int64{}
	counter.Store(1)
	d.counters.SetWithTTL(k, counter, 1, d.window)
	return d.threshold <= 1
}

// Close releases the counter cache.
func (d *HotKeyDetector) Close() {
	d.counters.Close()
}

var _ types.HotKeyOracle = (*HotKeyDetector)(nil)
