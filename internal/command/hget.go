package command

import (
	"context"

	"github.com/redkv-io/redkv/internal/types"
)

// hgetCommander answers HGET key field.
type hgetCommander struct {
	base
}

func newHGetCommander(cfg CommanderConfig) *hgetCommander {
	return &hgetCommander{base: newBase(cfg)}
}

func (c *hgetCommander) Kind() types.CommandKind {
	return types.CmdHGet
}

func (c *hgetCommander) Parse(cmd *Command) bool {
	return len(cmd.Args) == 3
}

func (c *hgetCommander) RunToCompletion(slot int, cmd *Command) Reply {
	key := cmd.Args[1]
	field := cmd.Args[2]

	m, resolved := c.metaServer.RunToCompletion(slot, key)
	if !resolved {
		return nil
	}
	if m == nil {
		return NilBulkReply
	}
	if m.KeyType != types.KeyTypeHash {
		return WrongTypeReply
	}

	inst := c.instance(cmd)
	cacheKey := c.keyDesign.CacheKey(m, key)

	if v := c.hashWriteBuffer.Get(cacheKey); v != nil {
		c.writeBufferHit(inst, c.Kind())
		return fieldReply(v.Value().HGet(field))
	}

	if inst.HashLocalCacheEnabled() {
		if hash := inst.Hash().GetForRead(slot, cacheKey); hash != nil {
			c.localCacheHit(inst, c.Kind())
			return fieldReply(hash.HGet(field))
		}
	}
	return nil
}

func (c *hgetCommander) Execute(ctx context.Context, slot int, cmd *Command) Reply {
	key := cmd.Args[1]
	field := cmd.Args[2]

	m, err := c.metaServer.GetKeyMeta(ctx, slot, key)
	if err != nil {
		return errorReply(err)
	}
	if m == nil {
		return NilBulkReply
	}
	if m.KeyType != types.KeyTypeHash {
		return WrongTypeReply
	}

	inst := c.instance(cmd)
	cacheKey := c.keyDesign.CacheKey(m, key)

	if v := c.hashWriteBuffer.Get(cacheKey); v != nil {
		c.writeBufferHit(inst, c.Kind())
		return fieldReply(v.Value().HGet(field))
	}

	if inst.HashLocalCacheEnabled() {
		lru := inst.Hash()

		if hash := lru.GetForRead(slot, cacheKey); hash != nil {
			c.localCacheHit(inst, c.Kind())
			return fieldReply(hash.HGet(field))
		}

		if lru.IsHotKey(key, c.Kind()) {
			hash, err := c.loadHash(ctx, slot, m, key)
			if err != nil {
				return errorReply(err)
			}
			lru.PutAllForRead(slot, cacheKey, hash)
			c.kvStoreHit(inst, c.Kind())
			return fieldReply(hash.HGet(field))
		}
	}

	c.kvStoreHit(inst, c.Kind())
	subKey := c.keyDesign.HashFieldSubKey(m, key, field)
	value, err := c.kvClient.Get(ctx, slot, subKey)
	if err != nil {
		return errorReply(types.NewKvError("hget", string(key), err))
	}
	if value == nil {
		return NilBulkReply
	}
	return &BulkReply{Value: value}
}

func fieldReply(value []byte, ok bool) Reply {
	if !ok {
		return NilBulkReply
	}
	return &BulkReply{Value: value}
}

var _ Commander = (*hgetCommander)(nil)
