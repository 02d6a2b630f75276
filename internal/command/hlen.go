package command

import (
	"context"

	"github.com/redkv-io/redkv/internal/types"
)

// hlenCommander answers HLEN key. The field count is bookkept in the key
// metadata, so the full path never scans the backend.
type hlenCommander struct {
	base
}

func newHLenCommander(cfg CommanderConfig) *hlenCommander {
	return &hlenCommander{base: newBase(cfg)}
}

func (c *hlenCommander) Kind() types.CommandKind {
	return types.CmdHLen
}

func (c *hlenCommander) Parse(cmd *Command) bool {
	return len(cmd.Args) == 2
}

func (c *hlenCommander) RunToCompletion(slot int, cmd *Command) Reply {
	key := cmd.Args[1]

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
		return NewIntegerReply(int64(v.Value().HLen()))
	}

	if inst.HashLocalCacheEnabled() {
		if hash := inst.Hash().GetForRead(slot, cacheKey); hash != nil {
			c.localCacheHit(inst, c.Kind())
			return NewIntegerReply(int64(hash.HLen()))
		}
	}

	return NewIntegerReply(int64(m.HashFieldCount()))
}

func (c *hlenCommander) Execute(ctx context.Context, slot int, cmd *Command) Reply {
	key := cmd.Args[1]

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
		return NewIntegerReply(int64(v.Value().HLen()))
	}

	if inst.HashLocalCacheEnabled() {
		if hash := inst.Hash().GetForRead(slot, cacheKey); hash != nil {
			c.localCacheHit(inst, c.Kind())
			return NewIntegerReply(int64(hash.HLen()))
		}
	}

	c.kvStoreHit(inst, c.Kind())
	return NewIntegerReply(int64(m.HashFieldCount()))
}

var _ Commander = (*hlenCommander)(nil)
