package cache

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/types"
)

const (
	// defaultTargetSize is the byte budget used whenever the configured
	// target-size string is missing or unparsable. Sizing must never block
	// traffic, so parse failures degrade here instead of erroring.
	defaultTargetSize = 32 * 1024 * 1024

	// fallbackCapacityOverflow replaces a target capacity that overflowed
	// the representable range; fallbackCapacityFloor replaces a final
	// capacity that came out non-positive. They share a value today but
	// are tuned independently.
	fallbackCapacityOverflow = 10_000
	fallbackCapacityFloor    = 10_000

	defaultMaxCapacity = 2_000_000
	maxCapacityKey     = "kv.lru.cache.max.capacity"
)

// ResizableCache is the surface the calculator drives. All methods must be
// safe to call concurrently with cache reads and writes.
type ResizableCache interface {
	Capacity() int
	SetCapacity(capacity int)
	Size() int64
	EstimateSize() int64
}

type calculatorEntry struct {
	cache     ResizableCache
	namespace string
	name      string
}

// Calculator keeps registered caches' entry capacities aligned to their
// byte budgets, extrapolating from the observed average entry size on a
// fixed period. It never holds a lock a command path needs: it only reads
// counters and publishes a new capacity atomically.
type Calculator struct {
	conf     *config.Dynamic
	memory   types.MemoryTelemetry
	monitor  types.Monitor
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	entries []calculatorEntry

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCalculator creates a calculator ticking every interval once started.
func NewCalculator(conf *config.Dynamic, memory types.MemoryTelemetry, monitor types.Monitor, interval time.Duration, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		conf:     conf,
		memory:   memory,
		monitor:  monitor,
		logger:   logger.With("component", "cache-capacity-calculator"),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Register adds a cache to the periodic update set.
func (c *Calculator) Register(cache ResizableCache, namespace, name string) {
	c.mu.Lock()
	c.entries = append(c.entries, calculatorEntry{cache: cache, namespace: namespace, name: name})
	c.mu.Unlock()
}

// Start launches the update loop.
func (c *Calculator) Start() {
	c.wg.Add(1)
	go c.run()
}

// Stop terminates the loop and waits for it.
func (c *Calculator) Stop() {
	close(c.stopCh)
	c.wg.Wait()
}

func (c *Calculator) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			entries := make([]calculatorEntry, len(c.entries))
			copy(entries, c.entries)
			c.mu.Unlock()
			for _, e := range entries {
				c.Update(e.cache, e.namespace, e.name)
			}
		}
	}
}

// Update recomputes and publishes one cache's capacity. Idempotent and safe
// to run concurrently with cache traffic.
func (c *Calculator) Update(cache ResizableCache, namespace, name string) {
	targetSize := c.targetSize(namespace, name)
	capacity := cache.Capacity()
	keyCount := cache.Size()
	estimatedSize := cache.EstimateSize()

	if c.monitor != nil {
		c.monitor.LRUCacheState(namespace, name, capacity, keyCount, estimatedSize, targetSize)
	}

	newCapacity := c.calcCapacity(namespace, name, targetSize, capacity, keyCount, estimatedSize)
	if newCapacity <= 0 {
		newCapacity = fallbackCapacityFloor
	}
	cache.SetCapacity(newCapacity)
}

// targetSize resolves the byte budget from "<name>.size" configuration, a
// string like "64M" or "2G". Anything unparsable means 32 MiB.
func (c *Calculator) targetSize(namespace, name string) int64 {
	size := c.conf.GetString(namespace, name+".size", c.defaultTargetSize())
	if len(size) < 2 {
		return defaultTargetSize
	}
	num, err := strconv.ParseInt(size[:len(size)-1], 10, 64)
	if err != nil {
		return defaultTargetSize
	}
	switch size[len(size)-1] {
	case 'M':
		return num * 1024 * 1024
	case 'G':
		return num * 1024 * 1024 * 1024
	default:
		return defaultTargetSize
	}
}

// defaultTargetSize derives a budget from the process memory ceiling:
// 1/40th of it, expressed in whole MB, minimum one.
func (c *Calculator) defaultTargetSize() string {
	var total int64
	if c.memory != nil {
		total = c.memory.HeapMemoryMax()
	}
	target := total / 40 / 1024 / 1024
	if target <= 0 {
		target = 32
	}
	return fmt.Sprintf("%dM", target)
}

func (c *Calculator) calcCapacity(namespace, name string, targetSize int64, capacity int, keyCount, estimatedSize int64) int {
	if keyCount == 0 {
		return capacity
	}
	// Too small a sample to extrapolate from; avoid oscillation on cold
	// start.
	if keyCount <= 100 && estimatedSize < targetSize {
		return capacity
	}

	sizePerKey := float64(estimatedSize) / float64(keyCount)
	targetCapacity := int64(float64(targetSize) / sizePerKey)
	if targetCapacity > math.MaxInt32 {
		c.logger.Warn("target capacity overflow, falling back",
			"namespace", namespace,
			"name", name,
			"targetSize", targetSize,
			"sizePerKey", sizePerKey,
		)
		return fallbackCapacityOverflow
	}

	maxCapacity := c.conf.GetInt(namespace, name+"."+maxCapacityKey, -1)
	if maxCapacity <= 0 {
		maxCapacity = c.conf.GetInt("", maxCapacityKey, defaultMaxCapacity)
	}
	if maxCapacity <= 0 {
		maxCapacity = defaultMaxCapacity
	}
	if int64(maxCapacity) < targetCapacity {
		return maxCapacity
	}
	return int(targetCapacity)
}
