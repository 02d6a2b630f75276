package command

import (
	"context"

	"github.com/redkv-io/redkv/internal/types"
)

// hexistsCommander answers HEXISTS key field.
type hexistsCommander struct {
	base
}

func newHExistsCommander(cfg CommanderConfig) *hexistsCommander {
	return &hexistsCommander{base: newBase(cfg)}
}

func (c *hexistsCommander) Kind() types.CommandKind {
	return types.CmdHExists
}

func (c *hexistsCommander) Parse(cmd *Command) bool {
	return len(cmd.Args) == 3
}

func (c *hexistsCommander) RunToCompletion(slot int, cmd *Command) Reply {
	key := cmd.Args[1]
	field := cmd.Args[2]

	m, resolved := c.metaServer.RunToCompletion(slot, key)
	if !resolved {
		return nil
	}
	if m == nil {
		return ReplyZero
	}
	if m.KeyType != types.KeyTypeHash {
		return WrongTypeReply
	}

	inst := c.instance(cmd)
	cacheKey := c.keyDesign.CacheKey(m, key)

	if v := c.hashWriteBuffer.Get(cacheKey); v != nil {
		c.writeBufferHit(inst, c.Kind())
		return boolReply(v.Value().HExists(field))
	}

	if inst.HashLocalCacheEnabled() {
		if hash := inst.Hash().GetForRead(slot, cacheKey); hash != nil {
			c.localCacheHit(inst, c.Kind())
			return boolReply(hash.HExists(field))
		}
	}
	return nil
}

func (c *hexistsCommander) Execute(ctx context.Context, slot int, cmd *Command) Reply {
	key := cmd.Args[1]
	field := cmd.Args[2]

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

	if v := c.hashWriteBuffer.Get(cacheKey); v != nil {
		c.writeBufferHit(inst, c.Kind())
		return boolReply(v.Value().HExists(field))
	}

	if inst.HashLocalCacheEnabled() {
		lru := inst.Hash()

		if hash := lru.GetForRead(slot, cacheKey); hash != nil {
			c.localCacheHit(inst, c.Kind())
			return boolReply(hash.HExists(field))
		}

		if lru.IsHotKey(key, c.Kind()) {
			hash, err := c.loadHash(ctx, slot, m, key)
			if err != nil {
				return errorReply(err)
			}
			lru.PutAllForRead(slot, cacheKey, hash)
			c.kvStoreHit(inst, c.Kind())
			return boolReply(hash.HExists(field))
		}
	}

	c.kvStoreHit(inst, c.Kind())
	subKey := c.keyDesign.HashFieldSubKey(m, key, field)
	value, err := c.kvClient.Get(ctx, slot, subKey)
	if err != nil {
		return errorReply(types.NewKvError("hexists", string(key), err))
	}
	return boolReply(value != nil)
}

func boolReply(ok bool) *IntegerReply {
	if ok {
		return ReplyOne
	}
	return ReplyZero
}

var _ Commander = (*hexistsCommander)(nil)
