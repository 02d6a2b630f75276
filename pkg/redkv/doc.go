// Package redkv implements the read/write core of a Redis-protocol proxy
// that stores Redis hash structures in an external sorted key-value store.
//
// Commands resolve through three tiers in strict precedence order: the
// write buffer (values written but not yet flushed to the backend), the
// slot-partitioned local LRU cache, and finally the backend store itself.
// Hot keys earn full-value promotion into the local cache; everything else
// is answered with narrow point lookups. An adaptive capacity calculator
// resizes the local caches periodically from configured target sizes and
// observed per-entry footprints.
//
// # Quick Start
//
// Create an upstream over the embedded in-memory store:
//
//	up, err := redkv.New(redkv.TestConfig(), redkv.NewMemoryStore())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer up.Close()
//
//	ctx := context.Background()
//	up.Execute(ctx, 1, redkv.NewCommand(redkv.CmdHSet,
//	    []byte("user:1"), []byte("name"), []byte("alice")))
//
//	reply := up.Execute(ctx, 1, redkv.NewCommand(redkv.CmdHExists,
//	    []byte("user:1"), []byte("name")))
//
// # Call Modes
//
// Execute runs the full tiered path and may perform backend I/O.
// RunToCompletion is a non-blocking fast path that consults only the
// in-memory tiers; when it reports no answer the caller falls back to
// Execute. Skipping the fast path is always correct, only slower.
//
// # Backends
//
// Any store implementing KVClient works as the backend. NewMemoryStore
// returns an embedded store for tests and examples; NewRedisStore adapts
// a go-redis client.
package redkv
