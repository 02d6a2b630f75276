package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BackgroundPublisher flushes tracker snapshots to a Publisher at regular
// intervals with context-based cancellation support.
type BackgroundPublisher struct {
	publisher Publisher
	tracker   *Tracker
	logger    *slog.Logger
	cancel    context.CancelFunc
	ctx       context.Context
	wg        sync.WaitGroup
	interval  time.Duration
}

// NewBackgroundPublisher creates a new background publisher.
func NewBackgroundPublisher(tracker *Tracker, publisher Publisher, interval time.Duration, logger *slog.Logger) *BackgroundPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &BackgroundPublisher{
		publisher: publisher,
		tracker:   tracker,
		interval:  interval,
		logger:    logger.With("component", "metrics-background"),
	}
}

// Start begins the background publishing loop.
// The provided context controls the lifecycle of the background goroutine.
func (b *BackgroundPublisher) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.wg.Add(1)
	go b.run()
	b.logger.Info("Background metrics publisher started", "interval", b.interval)
}

// Stop cancels the background context and waits for shutdown.
func (b *BackgroundPublisher) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()
	b.logger.Info("Background metrics publisher stopped")
}

func (b *BackgroundPublisher) run() {
	defer b.wg.Done()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			// Final publish before stopping
			b.publish()
			return
		case <-ticker.C:
			b.publish()
		}
	}
}

func (b *BackgroundPublisher) publish() {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in metrics publisher", "panic", r)
		}
	}()

	snapshot := b.tracker.Snapshot()

	b.publisher.Gauge("write_buffer.pending", float64(snapshot.WriteBufferPending))
	b.publisher.Gauge("write_buffer.overflow_total", float64(snapshot.WriteBufferOverflow))

	for _, tier := range snapshot.Tiers {
		b.publisher.Gauge("lookup.tier_hits", float64(tier.Count),
			NamespaceTag(tier.Namespace),
			CommandTag(tier.Command),
			TierTag(tier.Tier),
		)
	}

	for _, c := range snapshot.Caches {
		tags := []string{NamespaceTag(c.Namespace), CacheTag(c.Name)}
		b.publisher.Gauge("lru.capacity", float64(c.Capacity), tags...)
		b.publisher.Gauge("lru.key_count", float64(c.KeyCount), tags...)
		b.publisher.Gauge("lru.estimated_size_bytes", float64(c.EstimatedSize), tags...)
		b.publisher.Gauge("lru.target_size_bytes", float64(c.TargetSize), tags...)
	}
}

// PublishNow triggers an immediate metrics publish.
func (b *BackgroundPublisher) PublishNow() {
	b.publish()
}
