package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/types"
)

func newTestDetector(t *testing.T, threshold int64) *HotKeyDetector {
	t.Helper()
	cfg := config.CacheConfig{
		HotKeyThreshold: threshold,
		HotKeyWindow:    time.Minute,
		HotKeyCounters:  10_000,
	}
	d, err := NewHotKeyDetector(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestHotKeyThresholdCrossing(t *testing.T) {
	d := newTestDetector(t, 3)
	key := []byte("popular")

	assert.False(t, d.IsHotKey(key, types.CmdHExists), "first access")
	d.counters.Wait()
	assert.False(t, d.IsHotKey(key, types.CmdHExists), "second access")
	assert.True(t, d.IsHotKey(key, types.CmdHExists), "third access crosses the threshold")
	assert.True(t, d.IsHotKey(key, types.CmdHExists), "stays hot within the window")
}

func TestHotKeyColdKeysStayCold(t *testing.T) {
	d := newTestDetector(t, 3)

	assert.False(t, d.IsHotKey([]byte("one-shot-a"), types.CmdHGet))
	assert.False(t, d.IsHotKey([]byte("one-shot-b"), types.CmdHGet))
	assert.False(t, d.IsHotKey([]byte("one-shot-c"), types.CmdHGet))
}

func TestHotKeyThresholdOneIsAlwaysHot(t *testing.T) {
	d := newTestDetector(t, 1)
	assert.True(t, d.IsHotKey([]byte("any"), types.CmdHGetAll))
}
