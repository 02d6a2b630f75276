package buffer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/redkv-io/redkv/internal/config"
)

func testConfig() config.WriteBufferConfig {
	return config.WriteBufferConfig{Enabled: true, MaxPending: 100}
}

func TestPutThenGet(t *testing.T) {
	wb := New[string](testConfig())

	ticket := wb.Put([]byte("k1"), "buffered")
	if !ticket.Buffered() {
		t.Fatal("Put() ticket not buffered")
	}

	v := wb.Get([]byte("k1"))
	if v == nil {
		t.Fatal("Get() = nil after Put")
	}
	if v.Value() != "buffered" {
		t.Errorf("Value() = %q, want buffered", v.Value())
	}
	if wb.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", wb.Pending())
	}
}

func TestFlushedRemovesEntry(t *testing.T) {
	wb := New[string](testConfig())

	ticket := wb.Put([]byte("k1"), "v1")
	wb.Flushed(ticket)

	if wb.Get([]byte("k1")) != nil {
		t.Error("Get() returned an entry after its flush")
	}
	if wb.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", wb.Pending())
	}
}

func TestStaleFlushKeepsNewerWrite(t *testing.T) {
	wb := New[string](testConfig())

	first := wb.Put([]byte("k1"), "old")
	second := wb.Put([]byte("k1"), "new")

	// The first write's flush lands after the second write happened; the
	// newer entry must stay authoritative.
	wb.Flushed(first)

	v := wb.Get([]byte("k1"))
	if v == nil {
		t.Fatal("Get() = nil, newer write was dropped by a stale flush")
	}
	if v.Value() != "new" {
		t.Errorf("Value() = %q, want new", v.Value())
	}

	wb.Flushed(second)
	if wb.Get([]byte("k1")) != nil {
		t.Error("Get() returned an entry after the matching flush")
	}
	if wb.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", wb.Pending())
	}
}

func TestOverflowDegradesToUnbuffered(t *testing.T) {
	wb := New[string](config.WriteBufferConfig{Enabled: true, MaxPending: 2})

	if !wb.Put([]byte("k1"), "v").Buffered() {
		t.Fatal("first Put not buffered")
	}
	if !wb.Put([]byte("k2"), "v").Buffered() {
		t.Fatal("second Put not buffered")
	}

	ticket := wb.Put([]byte("k3"), "v")
	if ticket.Buffered() {
		t.Error("Put over the ceiling returned a buffered ticket")
	}
	if wb.Get([]byte("k3")) != nil {
		t.Error("Get() returned an entry the buffer refused")
	}

	// Rewriting an already-buffered key is allowed even at the ceiling.
	if !wb.Put([]byte("k1"), "v2").Buffered() {
		t.Error("rewrite of a buffered key was refused at the ceiling")
	}
}

func TestDisabledBufferIsInert(t *testing.T) {
	wb := New[string](config.WriteBufferConfig{Enabled: false, MaxPending: 100})

	if wb.Put([]byte("k1"), "v").Buffered() {
		t.Error("disabled buffer accepted a write")
	}
	if wb.Get([]byte("k1")) != nil {
		t.Error("disabled buffer returned a value")
	}
}

func TestConcurrentPutFlush(t *testing.T) {
	wb := New[int](config.WriteBufferConfig{Enabled: true, MaxPending: 100_000})

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := []byte(fmt.Sprintf("k-%d-%d", worker, i))
				ticket := wb.Put(key, i)
				if v := wb.Get(key); v == nil {
					t.Errorf("Get(%s) = nil between Put and Flushed", key)
					return
				}
				wb.Flushed(ticket)
			}
		}(worker)
	}
	wg.Wait()

	if wb.Pending() != 0 {
		t.Errorf("Pending() = %d after all flushes, want 0", wb.Pending())
	}
}
