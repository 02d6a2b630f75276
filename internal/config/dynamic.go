package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

// Dynamic is a live-reloadable flat configuration handle.
//
// Readers resolve "namespace.name" before "name" before the caller's
// default, so per-namespace overrides win. Values may change between reads:
// the whole key/value snapshot is swapped atomically on reload, so a reader
// always sees one coherent generation, never a half-applied reload.
type Dynamic struct {
	snapshot atomic.Pointer[map[string]string]

	mu        sync.Mutex
	callbacks []func()
}

// NewDynamic creates a dynamic configuration seeded with initial values.
// A nil map is allowed.
func NewDynamic(initial map[string]string) *Dynamic {
	d := &Dynamic{}
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	d.snapshot.Store(&values)
	return d
}

// Reload replaces the entire snapshot and notifies registered callbacks.
func (d *Dynamic) Reload(values map[string]string) {
	next := make(map[string]string, len(values))
	for k, v := range values {
		next[k] = v
	}
	d.snapshot.Store(&next)

	d.mu.Lock()
	callbacks := make([]func(), len(d.callbacks))
	copy(callbacks, d.callbacks)
	d.mu.Unlock()
	for _, fn := range callbacks {
		fn()
	}
}

// ReloadFile reads a flat JSON object of string values and swaps it in.
func (d *Dynamic) ReloadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("dynamic config: read %s: %w", path, err)
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("dynamic config: parse %s: %w", path, err)
	}
	d.Reload(values)
	return nil
}

// Register adds a callback invoked after every reload.
func (d *Dynamic) Register(fn func()) {
	d.mu.Lock()
	d.callbacks = append(d.callbacks, fn)
	d.mu.Unlock()
}

func (d *Dynamic) lookup(namespace, name string) (string, bool) {
	values := *d.snapshot.Load()
	if namespace != "" {
		if v, ok := values[namespace+"."+name]; ok {
			return v, true
		}
	}
	v, ok := values[name]
	return v, ok
}

// GetString resolves a string value with namespace precedence.
func (d *Dynamic) GetString(namespace, name, fallback string) string {
	if v, ok := d.lookup(namespace, name); ok {
		return v
	}
	return fallback
}

// GetInt resolves an int value; unparsable values fall back.
func (d *Dynamic) GetInt(namespace, name string, fallback int) int {
	if v, ok := d.lookup(namespace, name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// GetInt64 resolves an int64 value; unparsable values fall back.
func (d *Dynamic) GetInt64(namespace, name string, fallback int64) int64 {
	if v, ok := d.lookup(namespace, name); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

// GetBool resolves a bool value; unparsable values fall back.
func (d *Dynamic) GetBool(namespace, name string, fallback bool) bool {
	if v, ok := d.lookup(namespace, name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
