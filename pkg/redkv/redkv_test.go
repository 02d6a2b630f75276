package redkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUpstream(t *testing.T) *Upstream {
	t.Helper()
	up, err := New(TestConfig(), NewMemoryStore())
	require.NoError(t, err)
	t.Cleanup(func() { _ = up.Close() })
	return up
}

func TestUpstreamRoundTrip(t *testing.T) {
	up := newUpstream(t)
	ctx := context.Background()

	reply := up.Execute(ctx, 3, NewCommand(CmdHSet, []byte("h"), []byte("f"), []byte("v")))
	ir, ok := reply.(*IntegerReply)
	require.True(t, ok, "unexpected reply %#v", reply)
	assert.Equal(t, int64(1), ir.Value)

	reply = up.Execute(ctx, 3, NewCommand(CmdHGet, []byte("h"), []byte("f")))
	br, ok := reply.(*BulkReply)
	require.True(t, ok)
	assert.Equal(t, "v", string(br.Value))
}

func TestUpstreamFastPath(t *testing.T) {
	up := newUpstream(t)
	ctx := context.Background()

	up.Execute(ctx, 3, NewCommand(CmdHSet, []byte("h"), []byte("f"), []byte("v")))

	reply, ok := up.RunToCompletion(3, NewCommand(CmdHExists, []byte("h"), []byte("f")))
	require.True(t, ok)
	ir, ok := reply.(*IntegerReply)
	require.True(t, ok)
	assert.Equal(t, int64(1), ir.Value)
}

func TestUpstreamSnapshotCountsHits(t *testing.T) {
	up := newUpstream(t)
	ctx := context.Background()

	up.Execute(ctx, 3, NewCommand(CmdHSet, []byte("h"), []byte("f"), []byte("v")))
	up.Execute(ctx, 3, NewCommand(CmdHGet, []byte("h"), []byte("f")))

	snap := up.Snapshot()
	total := snap.WriteBufferHits + snap.LocalCacheHits + snap.KVStoreHits
	assert.Positive(t, total)
}

func TestUpstreamRejectsAfterClose(t *testing.T) {
	up, err := New(TestConfig(), NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, up.Close())

	reply := up.Execute(context.Background(), 1, NewCommand(CmdHLen, []byte("h")))
	_, ok := reply.(*ErrorReply)
	assert.True(t, ok)

	// Close is idempotent.
	assert.NoError(t, up.Close())
}

func TestUpstreamValidatesConfig(t *testing.T) {
	cfg := TestConfig()
	cfg.Cache.Shards = 3
	_, err := New(cfg, NewMemoryStore())
	assert.Error(t, err)
}

func BenchmarkExecuteHGetLocalCache(b *testing.B) {
	up, err := New(TestConfig(), NewMemoryStore())
	if err != nil {
		b.Fatal(err)
	}
	defer up.Close()

	ctx := context.Background()
	up.Execute(ctx, 1, NewCommand(CmdHSet, []byte("bench"), []byte("f"), []byte("v")))
	cmd := NewCommand(CmdHGet, []byte("bench"), []byte("f"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		up.Execute(ctx, 1, cmd)
	}
}
