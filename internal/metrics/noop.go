package metrics

import "github.com/redkv-io/redkv/internal/types"

// NoOpMonitor is a types.Monitor that records nothing. Used when
// metrics are disabled.
type NoOpMonitor struct{}

// NewNoOpMonitor creates a new no-op monitor.
func NewNoOpMonitor() *NoOpMonitor {
	return &NoOpMonitor{}
}

// WriteBufferHit does nothing.
func (m *NoOpMonitor) WriteBufferHit(namespace string, command types.CommandKind) {}

// LocalCacheHit does nothing.
func (m *NoOpMonitor) LocalCacheHit(namespace string, command types.CommandKind) {}

// KVStoreHit does nothing.
func (m *NoOpMonitor) KVStoreHit(namespace string, command types.CommandKind) {}

// LRUCacheState does nothing.
func (m *NoOpMonitor) LRUCacheState(namespace, name string, capacity int, keyCount, estimatedSize, targetSize int64) {
}

// WriteBufferState does nothing.
func (m *NoOpMonitor) WriteBufferState(namespace string, pending int64, overflow bool) {}

// NoOpPublisher is a Publisher that discards everything.
type NoOpPublisher struct{}

// NewNoOpPublisher creates a new no-op publisher.
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

// Gauge does nothing.
func (p *NoOpPublisher) Gauge(name string, value float64, tags ...string) {}

// Count does nothing.
func (p *NoOpPublisher) Count(name string, value int64, tags ...string) {}

// Incr does nothing.
func (p *NoOpPublisher) Incr(name string, tags ...string) {}

// Close does nothing.
func (p *NoOpPublisher) Close() error { return nil }

var _ types.Monitor = (*NoOpMonitor)(nil)
var _ Publisher = (*NoOpPublisher)(nil)
