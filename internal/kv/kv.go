// Package kv defines the sorted key-value backend contract the upstream
// core reads through, plus two clients: an embedded in-process store and a
// Redis-backed adapter.
package kv

import "context"

// KeyValue is one backend entry.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// Client is the interface to the durable sorted KV store. Implementations
// own their timeout/retry policy; the core never retries and propagates
// failures to the caller.
//
// Slots partition the keyspace for routing; within a slot, ScanByPrefix
// returns entries in ascending key order.
type Client interface {
	// Get returns the value for key, or (nil, nil) when absent.
	Get(ctx context.Context, slot int, key []byte) ([]byte, error)

	// Exists reports per-key presence, aligned with keys.
	Exists(ctx context.Context, slot int, keys ...[]byte) ([]bool, error)

	// BatchPut writes all entries; partial failure is a failure.
	BatchPut(ctx context.Context, slot int, entries []KeyValue) error

	// BatchDelete removes all keys; missing keys are not an error.
	BatchDelete(ctx context.Context, slot int, keys ...[]byte) error

	// ScanByPrefix returns up to limit entries whose key starts with
	// prefix, in ascending key order. limit <= 0 means no limit.
	ScanByPrefix(ctx context.Context, slot int, prefix []byte, limit int) ([]KeyValue, error)
}
