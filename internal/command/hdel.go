package command

import (
	"context"

	"github.com/redkv-io/redkv/internal/buffer"
	"github.com/redkv-io/redkv/internal/meta"
	"github.com/redkv-io/redkv/internal/types"
)

// hdelCommander answers HDEL key field [field ...]. Deleting the last
// field drops the key's metadata, making the key logically gone while the
// backend's sub-key cleanup may still be in flight.
type hdelCommander struct {
	base
}

func newHDelCommander(cfg CommanderConfig) *hdelCommander {
	return &hdelCommander{base: newBase(cfg)}
}

func (c *hdelCommander) Kind() types.CommandKind {
	return types.CmdHDel
}

func (c *hdelCommander) Parse(cmd *Command) bool {
	return len(cmd.Args) >= 3
}

func (c *hdelCommander) RunToCompletion(slot int, cmd *Command) Reply {
	return nil
}

func (c *hdelCommander) Execute(ctx context.Context, slot int, cmd *Command) Reply {
	key := cmd.Args[1]
	fields := cmd.Args[2:]

	m, err := c.metaServer.GetKeyMeta(ctx, slot, key)
	if err != nil {
		return errorReply(err)
	}
	if m == nil {
		return ReplyZero
	}
	if m.KeyType != types.KeyTypeHash {
		return WrongTypeReply
	}

	inst := c.instance(cmd)
	cacheKey := c.keyDesign.CacheKey(m, key)

	subKeys := make([][]byte, len(fields))
	for i, field := range fields {
		subKeys[i] = c.keyDesign.HashFieldSubKey(m, key, field)
	}

	attributed := false
	removedCount := -1

	var ticket buffer.Ticket
	havePut := false

	if v := c.hashWriteBuffer.Get(cacheKey); v != nil {
		hash := v.Value()
		removed := hash.HDel(fields)
		removedCount = len(removed)
		ticket = c.bufferPut(inst, cacheKey, hash)
		havePut = true
		c.writeBufferHit(inst, c.Kind())
		attributed = true
	}

	if inst.HashLocalCacheEnabled() {
		lru := inst.Hash()

		if removedByCache, ok := lru.HDel(slot, cacheKey, fields); ok {
			if !attributed {
				c.localCacheHit(inst, c.Kind())
				attributed = true
			}
			if removedCount < 0 {
				removedCount = len(removedByCache)
			}
			if !havePut {
				if hash := lru.GetForRead(slot, cacheKey); hash != nil {
					ticket = c.bufferPut(inst, cacheKey, hash.Duplicate())
				}
			}
		}
	}

	if removedCount < 0 {
		c.kvStoreHit(inst, c.Kind())
		exists, err := c.kvClient.Exists(ctx, slot, subKeys...)
		if err != nil {
			return errorReply(types.NewKvError("hdel", string(key), err))
		}
		removedCount = 0
		for _, ok := range exists {
			if ok {
				removedCount++
			}
		}
	}

	if removedCount > 0 {
		remaining := m.HashFieldCount() - removedCount
		if remaining <= 0 {
			if err := c.metaServer.DeleteKeyMeta(ctx, slot, key); err != nil {
				return errorReply(err)
			}
			inst.Hash().Delete(slot, cacheKey)
		} else {
			m.Extra = meta.EncodeHashFieldCount(remaining)
			if err := c.metaServer.CreateOrUpdateKeyMeta(ctx, slot, key, m); err != nil {
				return errorReply(err)
			}
		}
	}

	if err := c.batchDelete(ctx, slot, ticket, subKeys); err != nil {
		return errorReply(types.NewKvError("hdel", string(key), err))
	}
	return NewIntegerReply(int64(removedCount))
}

var _ Commander = (*hdelCommander)(nil)
