package command

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/types"
)

func TestAsyncWriterRunsTasks(t *testing.T) {
	w := NewAsyncWriter(config.AsyncWriteConfig{Workers: 2, QueueSize: 16}, nil)
	defer w.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, w.Submit(i, func() {
			mu.Lock()
			ran++
			mu.Unlock()
			wg.Done()
		}))
	}
	wg.Wait()
	assert.Equal(t, 10, ran)
}

func TestAsyncWriterPreservesSlotOrder(t *testing.T) {
	w := NewAsyncWriter(config.AsyncWriteConfig{Workers: 4, QueueSize: 128}, nil)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 100; i++ {
		seq := i
		require.NoError(t, w.Submit(5, func() {
			mu.Lock()
			order = append(order, seq)
			mu.Unlock()
		}))
	}
	w.Close()

	require.Len(t, order, 100)
	for i, seq := range order {
		assert.Equal(t, i, seq)
	}
}

func TestAsyncWriterCloseDrains(t *testing.T) {
	w := NewAsyncWriter(config.AsyncWriteConfig{Workers: 1, QueueSize: 64}, nil)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 20; i++ {
		require.NoError(t, w.Submit(0, func() {
			mu.Lock()
			ran++
			mu.Unlock()
		}))
	}
	w.Close()
	assert.Equal(t, 20, ran)

	assert.ErrorIs(t, w.Submit(0, func() {}), types.ErrClosed)
}

func TestAsyncWriterCloseRacesWithSubmit(t *testing.T) {
	// Submit concurrent with Close must never send on a closed queue;
	// every task Submit accepts runs before Close returns.
	for round := 0; round < 50; round++ {
		w := NewAsyncWriter(config.AsyncWriteConfig{Workers: 2, QueueSize: 4}, nil)

		var accepted, ran atomic.Int64
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					err := w.Submit(g*20+i, func() { ran.Add(1) })
					if err == nil {
						accepted.Add(1)
					} else {
						assert.ErrorIs(t, err, types.ErrClosed)
					}
				}
			}(g)
		}
		w.Close()
		wg.Wait()

		assert.Equal(t, accepted.Load(), ran.Load())
	}
}

func TestAsyncWriterRecoversFromPanic(t *testing.T) {
	w := NewAsyncWriter(config.AsyncWriteConfig{Workers: 1, QueueSize: 8}, nil)

	done := make(chan struct{})
	require.NoError(t, w.Submit(0, func() { panic("boom") }))
	require.NoError(t, w.Submit(0, func() { close(done) }))
	<-done
	w.Close()
}
