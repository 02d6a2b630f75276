package cache

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/types"
)

// Instance bundles the cache tier state for one tenant.
type Instance struct {
	namespace string
	hash      *HashLRUCache
	conf      *config.Dynamic
	enabled   bool
}

// Namespace returns the tenant-scoped namespace.
func (i *Instance) Namespace() string { return i.namespace }

// Hash returns the hash cache tier.
func (i *Instance) Hash() *HashLRUCache { return i.hash }

// HashLocalCacheEnabled reports whether the local cache tier participates
// in lookups for this namespace. Live-reloadable.
func (i *Instance) HashLocalCacheEnabled() bool {
	return i.conf.GetBool(i.namespace, "hash.local.cache.enable", i.enabled)
}

// Manager produces and memoizes one cache Instance per tenant identity.
// Instances are created lazily on first access and live for the process
// lifetime.
type Manager struct {
	cfg        *config.Config
	conf       *config.Dynamic
	oracle     types.HotKeyOracle
	calculator *Calculator
	logger     *slog.Logger

	instances sync.Map
	group     singleflight.Group
}

// NewManager creates a manager. The calculator may be nil (tests); created
// instances are then not registered for capacity updates.
func NewManager(cfg *config.Config, conf *config.Dynamic, oracle types.HotKeyOracle, calculator *Calculator, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:        cfg,
		conf:       conf,
		oracle:     oracle,
		calculator: calculator,
		logger:     logger.With("component", "cache-manager"),
	}
}

// GetCache returns the tenant's cache instance, constructing it on first
// access. Concurrent first accesses for one tenant collapse onto a single
// construction; at most one instance is ever visible per tenant key.
// Construction for one tenant never blocks lookups for another.
func (m *Manager) GetCache(id types.Identity) *Instance {
	key := id.Key()
	if v, ok := m.instances.Load(key); ok {
		return v.(*Instance)
	}

	v, _, _ := m.group.Do(key, func() (any, error) {
		if existing, ok := m.instances.Load(key); ok {
			return existing, nil
		}
		created := m.newInstance(id)
		actual, loaded := m.instances.LoadOrStore(key, created)
		if !loaded {
			m.logger.Info("cache instance created",
				"tenant", key,
				"namespace", created.(*Instance).namespace,
			)
		}
		return actual, nil
	})
	return v.(*Instance)
}

func (m *Manager) newInstance(id types.Identity) any {
	namespace := m.cfg.Namespace
	if !id.IsDefault() {
		namespace = fmt.Sprintf("%s.%d.%s", m.cfg.Namespace, id.Bid, id.BGroup)
	}

	hash := NewHashLRUCache(namespace, m.cfg.Cache.Shards, m.cfg.Cache.InitialCapacity, m.oracle)
	if m.calculator != nil {
		m.calculator.Register(hash, namespace, hash.Name())
	}

	return &Instance{
		namespace: namespace,
		hash:      hash,
		conf:      m.conf,
		enabled:   m.cfg.Cache.HashLocalCacheEnabled,
	}
}
