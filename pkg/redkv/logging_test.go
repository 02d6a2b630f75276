package redkv

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRecord struct {
	level string
	msg   string
	args  []any
}

type captureLogger struct {
	records []capturedRecord
}

func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *captureLogger) record(level, msg string, args []any) {
	l.records = append(l.records, capturedRecord{level: level, msg: msg, args: args})
}

func TestSlogAdapterForwardsLevelsAndAttrs(t *testing.T) {
	sink := &captureLogger{}
	logger := slog.New(slogAdapter{logger: sink})

	logger.Info("started", "workers", 4)
	logger.Error("backend write failed", "key", "h1")

	require.Len(t, sink.records, 2)
	assert.Equal(t, "info", sink.records[0].level)
	assert.Equal(t, "started", sink.records[0].msg)
	assert.Equal(t, []any{"workers", int64(4)}, sink.records[0].args)
	assert.Equal(t, "error", sink.records[1].level)
}

func TestSlogAdapterPrefixesGroupedAttrs(t *testing.T) {
	sink := &captureLogger{}
	logger := slog.New(slogAdapter{logger: sink}).
		WithGroup("cache").
		With("namespace", "default")

	logger.Warn("eviction pressure", "evicted", 12)

	require.Len(t, sink.records, 1)
	assert.Equal(t, []any{"cache.namespace", "default", "cache.evicted", int64(12)}, sink.records[0].args)
}

func TestWithLoggerAdapterRoutesInternalLogs(t *testing.T) {
	sink := &captureLogger{}
	up, err := New(TestConfig(), NewMemoryStore(), WithLoggerAdapter(sink))
	require.NoError(t, err)
	t.Cleanup(func() { _ = up.Close() })

	reply := up.Execute(context.Background(), 3, NewCommand(CmdHSet, []byte("h"), []byte("f"), []byte("v")))
	_, ok := reply.(*IntegerReply)
	assert.True(t, ok, "unexpected reply %#v", reply)
}
