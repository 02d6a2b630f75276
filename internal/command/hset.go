package command

import (
	"bytes"
	"context"

	"github.com/redkv-io/redkv/internal/buffer"
	"github.com/redkv-io/redkv/internal/cache"
	"github.com/redkv-io/redkv/internal/kv"
	"github.com/redkv-io/redkv/internal/meta"
	"github.com/redkv-io/redkv/internal/types"
)

// hsetCommander answers HSET key field value [field value ...].
//
// The write lands in the write buffer and the local cache first; the
// backend put is deferred to the slot's flush worker whenever the buffer
// accepted the entry.
type hsetCommander struct {
	base
}

func newHSetCommander(cfg CommanderConfig) *hsetCommander {
	return &hsetCommander{base: newBase(cfg)}
}

func (c *hsetCommander) Kind() types.CommandKind {
	return types.CmdHSet
}

func (c *hsetCommander) Parse(cmd *Command) bool {
	return len(cmd.Args) >= 4 && len(cmd.Args)%2 == 0
}

func (c *hsetCommander) RunToCompletion(slot int, cmd *Command) Reply {
	return nil
}

func (c *hsetCommander) Execute(ctx context.Context, slot int, cmd *Command) Reply {
	key := cmd.Args[1]

	fields := make(map[string][]byte, (len(cmd.Args)-2)/2)
	for i := 2; i < len(cmd.Args); i += 2 {
		fields[string(cmd.Args[i])] = cmd.Args[i+1]
	}
	fieldSize := len(fields)

	first := false
	m, err := c.metaServer.GetKeyMeta(ctx, slot, key)
	if err != nil {
		return errorReply(err)
	}
	if m == nil {
		m = &meta.KeyMeta{
			KeyType:    types.KeyTypeHash,
			KeyVersion: meta.NewVersion(),
			ExpireTime: meta.NoExpire,
			Extra:      meta.EncodeHashFieldCount(fieldSize),
		}
		if err := c.metaServer.CreateOrUpdateKeyMeta(ctx, slot, key, m); err != nil {
			return errorReply(err)
		}
		first = true
	} else if m.KeyType != types.KeyTypeHash {
		return WrongTypeReply
	}

	inst := c.instance(cmd)
	cacheKey := c.keyDesign.CacheKey(m, key)

	attributed := false
	existsCount := -1
	var existsMap map[string][]byte

	var ticket buffer.Ticket
	havePut := false

	if first {
		existsCount = 0
		ticket = c.bufferPut(inst, cacheKey, cache.NewRedisHash(copyFields(fields)))
		havePut = true
		if ticket.Buffered() {
			c.writeBufferHit(inst, c.Kind())
			attributed = true
		}
	} else if v := c.hashWriteBuffer.Get(cacheKey); v != nil {
		hash := v.Value()
		existsMap = hash.HSet(fields)
		existsCount = len(existsMap)
		ticket = c.bufferPut(inst, cacheKey, hash)
		havePut = true
		c.writeBufferHit(inst, c.Kind())
		attributed = true
	}

	if inst.HashLocalCacheEnabled() {
		lru := inst.Hash()

		var existsByCache map[string][]byte
		haveByCache := false
		if first {
			lru.PutAllForRead(slot, cacheKey, cache.NewRedisHash(copyFields(fields)))
		} else if existsByCache, haveByCache = lru.HSet(slot, cacheKey, fields); !haveByCache {
			if lru.IsHotKey(key, c.Kind()) {
				c.kvStoreHit(inst, c.Kind())
				attributed = true
				hash, err := c.loadHash(ctx, slot, m, key)
				if err != nil {
					return errorReply(err)
				}
				lru.PutAllForRead(slot, cacheKey, hash)
				existsByCache = hash.HSet(fields)
				haveByCache = true
			}
		} else if !attributed {
			c.localCacheHit(inst, c.Kind())
			attributed = true
		}

		if existsMap == nil && existsCount < 0 && haveByCache {
			existsCount = len(existsByCache)
			existsMap = existsByCache
		}

		if !havePut {
			if hash := lru.GetForRead(slot, cacheKey); hash != nil {
				ticket = c.bufferPut(inst, cacheKey, hash.Duplicate())
			}
		}
	}

	// Rewriting a field with its current value is a no-op for the backend.
	if !first {
		for field, previous := range existsMap {
			if value, ok := fields[field]; ok && bytes.Equal(value, previous) {
				delete(fields, field)
			}
		}
	}

	entries := make([]kv.KeyValue, 0, len(fields))
	subKeys := make([][]byte, 0, len(fields))
	for field, value := range fields {
		subKey := c.keyDesign.HashFieldSubKey(m, key, []byte(field))
		entries = append(entries, kv.KeyValue{Key: subKey, Value: value})
		subKeys = append(subKeys, subKey)
	}

	if first {
		if !attributed {
			c.kvStoreHit(inst, c.Kind())
		}
		if err := c.commit(ctx, slot, ticket, entries); err != nil {
			return errorReply(err)
		}
		return NewIntegerReply(int64(fieldSize))
	}

	if existsCount < 0 {
		c.kvStoreHit(inst, c.Kind())
		exists, err := c.kvClient.Exists(ctx, slot, subKeys...)
		if err != nil {
			return errorReply(types.NewKvError("hset", string(key), err))
		}
		existsCount = 0
		for _, ok := range exists {
			if ok {
				existsCount++
			}
		}
	}

	added := fieldSize - existsCount
	if added > 0 {
		m.Extra = meta.EncodeHashFieldCount(m.HashFieldCount() + added)
		if err := c.metaServer.CreateOrUpdateKeyMeta(ctx, slot, key, m); err != nil {
			return errorReply(err)
		}
	}

	if err := c.commit(ctx, slot, ticket, entries); err != nil {
		return errorReply(err)
	}
	return NewIntegerReply(int64(added))
}

// commit pushes the field writes to the backend, releasing the buffer
// ticket once nothing is left to write.
func (c *hsetCommander) commit(ctx context.Context, slot int, ticket buffer.Ticket, entries []kv.KeyValue) error {
	if len(entries) == 0 {
		c.hashWriteBuffer.Flushed(ticket)
		return nil
	}
	return c.batchPut(ctx, slot, ticket, entries)
}

func copyFields(fields map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(fields))
	for field, value := range fields {
		out[field] = value
	}
	return out
}

var _ Commander = (*hsetCommander)(nil)
