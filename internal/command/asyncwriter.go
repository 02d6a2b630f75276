package command

import (
	"log/slog"
	"sync"

	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/types"
)

// AsyncWriter runs deferred backend writes on a fixed pool of workers.
// Tasks for one slot always land on the same worker, so writes to a slot
// flush in submission order.
type AsyncWriter struct {
	queues []chan func()
	logger *slog.Logger
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewAsyncWriter starts the worker pool per cfg.
func NewAsyncWriter(cfg config.AsyncWriteConfig, logger *slog.Logger) *AsyncWriter {
	if logger == nil {
		logger = slog.Default()
	}

	w := &AsyncWriter{
		queues: make([]chan func(), cfg.Workers),
		logger: logger.With("component", "async-writer"),
	}
	for i := range w.queues {
		w.queues[i] = make(chan func(), cfg.QueueSize)
		w.wg.Add(1)
		go w.run(w.queues[i])
	}
	return w
}

func (w *AsyncWriter) run(queue chan func()) {
	defer w.wg.Done()
	for task := range queue {
		w.exec(task)
	}
}

func (w *AsyncWriter) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Recovered from panic in async write task", "panic", r)
		}
	}()
	task()
}

// Submit enqueues a task for slot. Blocks while the slot's queue is full,
// which backpressures writers instead of dropping flushes. Returns
// ErrClosed after Close.
func (w *AsyncWriter) Submit(slot int, task func()) error {
	// Hold the read lock across the send so Close cannot close the queue
	// under an in-flight Submit. Workers drain without taking the lock, so
	// a full queue never deadlocks against Close.
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return types.ErrClosed
	}
	w.queues[slot%len(w.queues)] <- task
	return nil
}

// Close drains all queues and stops the workers. Pending tasks run to
// completion; every task accepted by Submit executes before Close returns.
func (w *AsyncWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	for _, q := range w.queues {
		close(q)
	}
	w.wg.Wait()
}
