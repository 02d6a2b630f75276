// Package sys surfaces process memory limits to the cache sizing loop.
package sys

import (
	"runtime/debug"

	"github.com/KimMachineGun/automemlimit/memlimit"
)

const maxInt64 = int64(^uint64(0) >> 1)

// Memory reports the heap ceiling the process is budgeted against. The
// cgroup limit wins when the process runs containerized; otherwise the Go
// soft memory limit is used if one was set.
type Memory struct{}

// HeapMemoryMax returns the memory ceiling in bytes, or 0 when no limit is
// discoverable. Callers treat 0 as "use the hardcoded default budget".
func (Memory) HeapMemoryMax() int64 {
	if limit, err := memlimit.FromCgroup(); err == nil && limit > 0 {
		if limit > uint64(maxInt64) {
			return maxInt64
		}
		return int64(limit)
	}
	// SetMemoryLimit(-1) reads the current limit without changing it.
	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < maxInt64 {
		return limit
	}
	return 0
}

// Fixed is a MemoryTelemetry stub with a fixed ceiling, for tests.
type Fixed int64

func (f Fixed) HeapMemoryMax() int64 { return int64(f) }
