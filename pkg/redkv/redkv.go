package redkv

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/redkv-io/redkv/internal/buffer"
	"github.com/redkv-io/redkv/internal/cache"
	"github.com/redkv-io/redkv/internal/command"
	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/kv"
	"github.com/redkv-io/redkv/internal/meta"
	"github.com/redkv-io/redkv/internal/metrics"
	"github.com/redkv-io/redkv/internal/metrics/datadog"
	"github.com/redkv-io/redkv/internal/sys"
	"github.com/redkv-io/redkv/internal/types"
)

// Upstream is the tiered command execution core over one backend store.
// Safe for concurrent use.
type Upstream struct {
	cfg        *config.Config
	dyn        *config.Dynamic
	design     *meta.KeyDesign
	metaServer *meta.Server
	manager    *cache.Manager
	calculator *cache.Calculator
	detector   *cache.HotKeyDetector
	wb         *buffer.WriteBuffer[*cache.RedisHash]
	writer     *command.AsyncWriter
	commanders *command.Commanders

	tracker   *metrics.Tracker
	publisher metrics.Publisher
	bg        *metrics.BackgroundPublisher

	logger *slog.Logger
	closed atomic.Bool
	cancel context.CancelFunc
}

// New creates an upstream over client per cfg.
func New(cfg *config.Config, client KVClient, opts ...Option) (*Upstream, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dyn := options.Dynamic
	if dyn == nil {
		dyn = config.NewDynamic(cfg.Overrides)
	}

	memory := options.Memory
	if memory == nil {
		memory = sys.Memory{}
	}

	up := &Upstream{
		cfg:    cfg,
		dyn:    dyn,
		logger: logger.With("component", "upstream"),
	}

	monitor := options.Monitor
	if monitor == nil {
		up.tracker = metrics.NewTracker()
		monitor = up.tracker
	}

	oracle := options.Oracle
	if oracle == nil {
		detector, err := cache.NewHotKeyDetector(cfg.Cache, logger)
		if err != nil {
			return nil, err
		}
		up.detector = detector
		oracle = detector
	}

	up.design = meta.NewKeyDesign(cfg.Namespace)

	metaServer, err := meta.NewServer(client, up.design, cfg.MetaCache, logger)
	if err != nil {
		up.closePartial()
		return nil, err
	}
	up.metaServer = metaServer

	up.calculator = cache.NewCalculator(dyn, memory, monitor, cfg.Cache.CapacityUpdateInterval, logger)
	up.manager = cache.NewManager(cfg, dyn, oracle, up.calculator, logger)
	up.wb = buffer.New[*cache.RedisHash](cfg.WriteBuffer)
	up.writer = command.NewAsyncWriter(cfg.AsyncWrite, logger)

	up.commanders = command.NewCommanders(command.CommanderConfig{
		KvClient:    client,
		KeyDesign:   up.design,
		MetaServer:  up.metaServer,
		Manager:     up.manager,
		WriteBuffer: up.wb,
		Monitor:     monitor,
		AsyncWriter: up.writer,
	})

	up.calculator.Start()

	if cfg.Metrics.Enabled && up.tracker != nil {
		publisher, err := datadog.NewPublisher(&cfg.Metrics.DataDog, logger)
		if err != nil {
			up.closePartial()
			return nil, err
		}
		up.publisher = publisher
		up.bg = metrics.NewBackgroundPublisher(up.tracker, publisher, cfg.Metrics.PublishInterval, logger)

		ctx, cancel := context.WithCancel(context.Background())
		up.cancel = cancel
		up.bg.Start(ctx)
	}

	up.logger.Info("upstream started",
		"namespace", cfg.Namespace,
		"local_cache", cfg.Cache.HashLocalCacheEnabled,
		"write_buffer", cfg.WriteBuffer.Enabled,
	)
	return up, nil
}

// NewFromFile creates an upstream from a JSON configuration file.
func NewFromFile(path string, client KVClient, opts ...Option) (*Upstream, error) {
	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		return nil, err
	}
	return New(cfg, client, opts...)
}

// Execute runs the full command path, including backend I/O when the
// in-memory tiers cannot answer.
func (u *Upstream) Execute(ctx context.Context, slot int, cmd *Command) Reply {
	if u.closed.Load() {
		return &ErrorReply{Message: "ERR " + types.ErrClosed.Error()}
	}
	return u.commanders.Execute(ctx, slot, cmd)
}

// RunToCompletion attempts the non-blocking fast path. The second return
// is false when no in-memory tier holds the answer; the caller then falls
// back to Execute.
func (u *Upstream) RunToCompletion(slot int, cmd *Command) (Reply, bool) {
	if u.closed.Load() {
		return &ErrorReply{Message: "ERR " + types.ErrClosed.Error()}, true
	}
	return u.commanders.RunToCompletion(slot, cmd)
}

// Snapshot returns the current telemetry counters. Zero value when a
// custom Monitor was installed.
func (u *Upstream) Snapshot() MetricsSnapshot {
	if u.tracker == nil {
		return MetricsSnapshot{}
	}
	return u.tracker.Snapshot()
}

// ReloadDynamic swaps the dynamic configuration snapshot; new values take
// effect on the next capacity calculator tick.
func (u *Upstream) ReloadDynamic(values map[string]string) {
	u.dyn.Reload(values)
}

// Close stops the background workers and releases caches. Pending
// deferred writes are drained first.
func (u *Upstream) Close() error {
	if !u.closed.CompareAndSwap(false, true) {
		return nil
	}

	if u.bg != nil {
		u.cancel()
		u.bg.Stop()
	}
	u.calculator.Stop()
	u.writer.Close()

	var firstErr error
	if err := u.metaServer.Close(); err != nil {
		firstErr = err
	}
	if u.detector != nil {
		u.detector.Close()
	}
	if u.publisher != nil {
		if err := u.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	u.logger.Info("upstream closed")
	return firstErr
}

// closePartial releases whatever New managed to construct before failing.
func (u *Upstream) closePartial() {
	if u.metaServer != nil {
		_ = u.metaServer.Close()
	}
	if u.detector != nil {
		u.detector.Close()
	}
	if u.writer != nil {
		u.writer.Close()
	}
	if u.calculator != nil {
		u.calculator.Stop()
	}
}

// ensure the embedded store satisfies the contract
var _ KVClient = (*kv.MemoryStore)(nil)
