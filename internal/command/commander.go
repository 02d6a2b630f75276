package command

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/redkv-io/redkv/internal/buffer"
	"github.com/redkv-io/redkv/internal/cache"
	"github.com/redkv-io/redkv/internal/kv"
	"github.com/redkv-io/redkv/internal/meta"
	"github.com/redkv-io/redkv/internal/types"
)

// Commander executes one command kind against the tiered store.
//
// RunToCompletion is the non-blocking fast path: it consults the in-memory
// tiers only and returns nil when they hold no answer, signalling the
// caller to fall back to Execute. Write commands always return nil from it.
type Commander interface {
	Kind() types.CommandKind
	Parse(cmd *Command) bool
	RunToCompletion(slot int, cmd *Command) Reply
	Execute(ctx context.Context, slot int, cmd *Command) Reply
}

// CommanderConfig bundles the collaborators every commander shares.
type CommanderConfig struct {
	KvClient    kv.Client
	KeyDesign   *meta.KeyDesign
	MetaServer  *meta.Server
	Manager     *cache.Manager
	WriteBuffer *buffer.WriteBuffer[*cache.RedisHash]
	Monitor     types.Monitor
	AsyncWriter *AsyncWriter
	Logger      *slog.Logger
}

// base carries the shared collaborators and tier helpers. Embedded by every
// concrete commander.
type base struct {
	kvClient        kv.Client
	keyDesign       *meta.KeyDesign
	metaServer      *meta.Server
	manager         *cache.Manager
	hashWriteBuffer *buffer.WriteBuffer[*cache.RedisHash]
	monitor         types.Monitor
	asyncWriter     *AsyncWriter
	logger          *slog.Logger

	// loadGroup collapses concurrent promotion loads of one cache key onto
	// a single backend scan.
	loadGroup *singleflight.Group
}

func newBase(cfg CommanderConfig) base {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		kvClient:        cfg.KvClient,
		keyDesign:       cfg.KeyDesign,
		metaServer:      cfg.MetaServer,
		manager:         cfg.Manager,
		hashWriteBuffer: cfg.WriteBuffer,
		monitor:         cfg.Monitor,
		asyncWriter:     cfg.AsyncWriter,
		logger:          logger.With("component", "commander"),
		loadGroup:       &singleflight.Group{},
	}
}

// instance resolves the tenant's cache tier.
func (b *base) instance(cmd *Command) *cache.Instance {
	return b.manager.GetCache(cmd.Tenant)
}

func (b *base) writeBufferHit(inst *cache.Instance, kind types.CommandKind) {
	b.monitor.WriteBufferHit(inst.Namespace(), kind)
}

func (b *base) localCacheHit(inst *cache.Instance, kind types.CommandKind) {
	b.monitor.LocalCacheHit(inst.Namespace(), kind)
}

func (b *base) kvStoreHit(inst *cache.Instance, kind types.CommandKind) {
	b.monitor.KVStoreHit(inst.Namespace(), kind)
}

// bufferPut stores hash in the write buffer and reports buffer pressure.
// The returned ticket is unbuffered when the buffer refused the entry.
func (b *base) bufferPut(inst *cache.Instance, cacheKey []byte, hash *cache.RedisHash) buffer.Ticket {
	ticket := b.hashWriteBuffer.Put(cacheKey, hash)
	overflow := !ticket.Buffered() && b.hashWriteBuffer.Enabled()
	b.monitor.WriteBufferState(inst.Namespace(), b.hashWriteBuffer.Pending(), overflow)
	return ticket
}

// loadHash materializes the full hash value from the backend by scanning
// the key generation's sub-key range. Concurrent loads of the same cache
// key share one scan.
func (b *base) loadHash(ctx context.Context, slot int, m *meta.KeyMeta, key []byte) (*cache.RedisHash, error) {
	cacheKey := b.keyDesign.CacheKey(m, key)
	v, err, _ := b.loadGroup.Do(string(cacheKey), func() (any, error) {
		prefix := b.keyDesign.SubKeyPrefix(m, key)
		entries, err := b.kvClient.ScanByPrefix(ctx, slot, prefix, 0)
		if err != nil {
			return nil, types.NewKvError("load-hash", string(key), err)
		}
		fields := make(map[string][]byte, len(entries))
		for _, entry := range entries {
			field := b.keyDesign.FieldFromSubKey(m, key, entry.Key)
			fields[string(field)] = entry.Value
		}
		return cache.NewRedisHash(fields), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cache.RedisHash), nil
}

// batchPut commits entries to the backend. With a buffered ticket the
// write is deferred to the slot's flush worker and the ticket released
// once durable; otherwise the write happens synchronously.
func (b *base) batchPut(ctx context.Context, slot int, ticket buffer.Ticket, entries []kv.KeyValue) error {
	if !ticket.Buffered() {
		return b.kvClient.BatchPut(ctx, slot, entries)
	}
	err := b.asyncWriter.Submit(slot, func() {
		if err := b.kvClient.BatchPut(context.Background(), slot, entries); err != nil {
			b.logger.Error("deferred batch put failed", "slot", slot, "error", err)
		}
		b.hashWriteBuffer.Flushed(ticket)
	})
	if err != nil {
		// Writer shut down: fall back to a synchronous write so the
		// buffered entry never outlives its flush.
		defer b.hashWriteBuffer.Flushed(ticket)
		return b.kvClient.BatchPut(ctx, slot, entries)
	}
	return nil
}

// batchDelete is batchPut's counterpart for field removals.
func (b *base) batchDelete(ctx context.Context, slot int, ticket buffer.Ticket, keys [][]byte) error {
	if !ticket.Buffered() {
		return b.kvClient.BatchDelete(ctx, slot, keys...)
	}
	err := b.asyncWriter.Submit(slot, func() {
		if err := b.kvClient.BatchDelete(context.Background(), slot, keys...); err != nil {
			b.logger.Error("deferred batch delete failed", "slot", slot, "error", err)
		}
		b.hashWriteBuffer.Flushed(ticket)
	})
	if err != nil {
		defer b.hashWriteBuffer.Flushed(ticket)
		return b.kvClient.BatchDelete(ctx, slot, keys...)
	}
	return nil
}
