package meta

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/kv"
	"github.com/redkv-io/redkv/internal/types"
)

func testMetaCacheConfig() config.MetaCacheConfig {
	return config.MetaCacheConfig{
		Enabled:         true,
		TTL:             time.Minute,
		CleanupInterval: time.Second,
		Shards:          16,
		MaxSizeMB:       8,
	}
}

func newTestServer(t *testing.T, store kv.Client) *Server {
	t.Helper()
	server, err := NewServer(store, NewKeyDesign("test"), testMetaCacheConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return server
}

func TestServerMissingKey(t *testing.T) {
	server := newTestServer(t, kv.NewMemoryStore())

	m, err := server.GetKeyMeta(context.Background(), 1, []byte("nope"))
	require.NoError(t, err)
	assert.Nil(t, m)

	// The miss is now cached, so the fast path can answer it.
	cached, ok := server.RunToCompletion(1, []byte("nope"))
	assert.True(t, ok)
	assert.Nil(t, cached)
}

func TestServerCreateThenGet(t *testing.T) {
	store := kv.NewMemoryStore()
	server := newTestServer(t, store)
	ctx := context.Background()
	key := []byte("h1")

	created := &KeyMeta{KeyType: types.KeyTypeHash, KeyVersion: NewVersion(), ExpireTime: NoExpire}
	require.NoError(t, server.CreateOrUpdateKeyMeta(ctx, 3, key, created))

	got, err := server.GetKeyMeta(ctx, 3, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, types.KeyTypeHash, got.KeyType)
	assert.Equal(t, created.KeyVersion, got.KeyVersion)

	// Fast path answers from the local cache.
	fast, ok := server.RunToCompletion(3, key)
	require.True(t, ok)
	require.NotNil(t, fast)
	assert.Equal(t, created.KeyVersion, fast.KeyVersion)
}

func TestServerFastPathNoAnswerOnColdCache(t *testing.T) {
	store := kv.NewMemoryStore()
	warm := newTestServer(t, store)
	ctx := context.Background()
	key := []byte("h1")

	m := &KeyMeta{KeyType: types.KeyTypeHash, KeyVersion: NewVersion(), ExpireTime: NoExpire}
	require.NoError(t, warm.CreateOrUpdateKeyMeta(ctx, 0, key, m))

	// A second server over the same store has a cold local cache: the
	// fast path must decline rather than guess.
	cold := newTestServer(t, store)
	_, ok := cold.RunToCompletion(0, key)
	assert.False(t, ok)

	got, err := cold.GetKeyMeta(ctx, 0, key)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestServerExpiredKeyIsDropped(t *testing.T) {
	store := kv.NewMemoryStore()
	server := newTestServer(t, store)
	ctx := context.Background()
	key := []byte("stale")

	expired := &KeyMeta{
		KeyType:    types.KeyTypeHash,
		KeyVersion: NewVersion(),
		ExpireTime: time.Now().UnixMilli() - 1000,
	}
	design := NewKeyDesign("test")
	entry := kv.KeyValue{Key: design.MetaKey(key), Value: expired.Encode()}
	require.NoError(t, store.BatchPut(ctx, 0, []kv.KeyValue{entry}))

	got, err := server.GetKeyMeta(ctx, 0, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	// The record was lazily deleted from the backend.
	data, err := store.Get(ctx, 0, design.MetaKey(key))
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestServerDelete(t *testing.T) {
	server := newTestServer(t, kv.NewMemoryStore())
	ctx := context.Background()
	key := []byte("h1")

	m := &KeyMeta{KeyType: types.KeyTypeHash, KeyVersion: NewVersion(), ExpireTime: NoExpire}
	require.NoError(t, server.CreateOrUpdateKeyMeta(ctx, 0, key, m))
	require.NoError(t, server.DeleteKeyMeta(ctx, 0, key))

	got, err := server.GetKeyMeta(ctx, 0, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestServerCacheDisabled(t *testing.T) {
	cfg := testMetaCacheConfig()
	cfg.Enabled = false
	server, err := NewServer(kv.NewMemoryStore(), NewKeyDesign("test"), cfg, nil)
	require.NoError(t, err)
	defer server.Close()

	_, ok := server.RunToCompletion(0, []byte("k"))
	assert.False(t, ok, "fast path must decline with the cache disabled")

	m, err := server.GetKeyMeta(context.Background(), 0, []byte("k"))
	require.NoError(t, err)
	assert.Nil(t, m)
}
