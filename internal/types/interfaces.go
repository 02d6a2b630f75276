package types

// Logger is the minimal leveled logging surface embedders can plug in.
// Internally everything logs through log/slog; this interface exists so a
// host process with its own logger can adapt it once at construction.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// HotKeyOracle decides whether a cache miss on key justifies promoting the
// full value from the backend into the local cache. Supplied by the hot-key
// detection subsystem.
type HotKeyOracle interface {
	IsHotKey(key []byte, kind CommandKind) bool
}

// Monitor receives tier-hit attribution and cache sizing telemetry. All
// methods must be cheap and non-blocking; they are called on the command
// path.
type Monitor interface {
	// Tier attribution for one answered command.
	WriteBufferHit(namespace string, command CommandKind)
	LocalCacheHit(namespace string, command CommandKind)
	KVStoreHit(namespace string, command CommandKind)

	// Periodic gauges from the capacity calculator.
	LRUCacheState(namespace, name string, capacity int, keyCount, estimatedSize, targetSize int64)

	// Write buffer pressure: current pending entries and whether a put just
	// degraded to a synchronous KV write.
	WriteBufferState(namespace string, pending int64, overflow bool)
}

// MemoryTelemetry reports the process memory ceiling the capacity
// calculator budgets against.
type MemoryTelemetry interface {
	HeapMemoryMax() int64
}
