package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/types"
)

func newTestManager() *Manager {
	cfg := config.ForTesting()
	return NewManager(cfg, config.NewDynamic(cfg.Overrides), nil, nil, nil)
}

func TestManagerDefaultTenant(t *testing.T) {
	m := newTestManager()

	first := m.GetCache(types.Identity{})
	second := m.GetCache(types.Identity{})

	require.NotNil(t, first)
	assert.Same(t, first, second)
	assert.Equal(t, "default", first.Namespace())
}

func TestManagerTenantIsolation(t *testing.T) {
	m := newTestManager()

	a := m.GetCache(types.Identity{Bid: 42, BGroup: "g1"})
	b := m.GetCache(types.Identity{Bid: 42, BGroup: "g2"})
	def := m.GetCache(types.Identity{})

	assert.NotSame(t, a, b)
	assert.NotSame(t, a, def)
	assert.Equal(t, "default.42.g1", a.Namespace())
	assert.Equal(t, "default.42.g2", b.Namespace())
}

func TestManagerConcurrentFirstAccessYieldsSingleton(t *testing.T) {
	m := newTestManager()
	id := types.Identity{Bid: 42, BGroup: "g1"}

	const workers = 32
	instances := make([]*Instance, workers)

	var start sync.WaitGroup
	var done sync.WaitGroup
	start.Add(1)
	for i := 0; i < workers; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait()
			instances[i] = m.GetCache(id)
		}(i)
	}
	start.Done()
	done.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, instances[0], instances[i], "worker %d got a different instance", i)
	}
}

func TestManagerRegistersWithCalculator(t *testing.T) {
	cfg := config.ForTesting()
	conf := config.NewDynamic(nil)
	calc := NewCalculator(conf, nil, nil, cfg.Cache.CapacityUpdateInterval, nil)
	m := NewManager(cfg, conf, nil, calc, nil)

	m.GetCache(types.Identity{})
	m.GetCache(types.Identity{Bid: 1, BGroup: "g"})
	m.GetCache(types.Identity{Bid: 1, BGroup: "g"})

	calc.mu.Lock()
	registered := len(calc.entries)
	calc.mu.Unlock()
	assert.Equal(t, 2, registered, "one registration per distinct tenant")
}

func TestInstanceLocalCacheEnableIsLiveReloadable(t *testing.T) {
	cfg := config.ForTesting()
	conf := config.NewDynamic(nil)
	m := NewManager(cfg, conf, nil, nil, nil)

	inst := m.GetCache(types.Identity{})
	assert.True(t, inst.HashLocalCacheEnabled())

	conf.Reload(map[string]string{"default.hash.local.cache.enable": "false"})
	assert.False(t, inst.HashLocalCacheEnabled())

	conf.Reload(nil)
	assert.True(t, inst.HashLocalCacheEnabled())
}
