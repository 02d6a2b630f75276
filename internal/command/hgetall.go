package command

import (
	"context"
	"sort"

	"github.com/redkv-io/redkv/internal/types"
)

// hgetallCommander answers HGETALL key.
type hgetallCommander struct {
	base
}

func newHGetAllCommander(cfg CommanderConfig) *hgetallCommander {
	return &hgetallCommander{base: newBase(cfg)}
}

func (c *hgetallCommander) Kind() types.CommandKind {
	return types.CmdHGetAll
}

func (c *hgetallCommander) Parse(cmd *Command) bool {
	return len(cmd.Args) == 2
}

func (c *hgetallCommander) RunToCompletion(slot int, cmd *Command) Reply {
	key := cmd.Args[1]

	m, resolved := c.metaServer.RunToCompletion(slot, key)
	if !resolved {
		return nil
	}
	if m == nil {
		return EmptyMultiBulkReply
	}
	if m.KeyType != types.KeyTypeHash {
		return WrongTypeReply
	}

	inst := c.instance(cmd)
	cacheKey := c.keyDesign.CacheKey(m, key)

	if v := c.hashWriteBuffer.Get(cacheKey); v != nil {
		c.writeBufferHit(inst, c.Kind())
		return hashReply(v.Value().HGetAll())
	}

	if inst.HashLocalCacheEnabled() {
		if hash := inst.Hash().GetForRead(slot, cacheKey); hash != nil {
			c.localCacheHit(inst, c.Kind())
			return hashReply(hash.HGetAll())
		}
	}
	return nil
}

func (c *hgetallCommander) Execute(ctx context.Context, slot int, cmd *Command) Reply {
	key := cmd.Args[1]

	m, err := c.metaServer.GetKeyMeta(ctx, slot, key)
	if err != nil {
		return errorReply(err)
	}
	if m == nil {
		return EmptyMultiBulkReply
	}
	if m.KeyType != types.KeyTypeHash {
		return WrongTypeReply
	}

	inst := c.instance(cmd)
	cacheKey := c.keyDesign.CacheKey(m, key)

	if v := c.hashWriteBuffer.Get(cacheKey); v != nil {
		c.writeBufferHit(inst, c.Kind())
		return hashReply(v.Value().HGetAll())
	}

	localEnabled := inst.HashLocalCacheEnabled()
	if localEnabled {
		if hash := inst.Hash().GetForRead(slot, cacheKey); hash != nil {
			c.localCacheHit(inst, c.Kind())
			return hashReply(hash.HGetAll())
		}
	}

	// A full read needs the whole value either way; only a hot key earns
	// a cache insert on the way out.
	hash, err := c.loadHash(ctx, slot, m, key)
	if err != nil {
		return errorReply(err)
	}
	if localEnabled && inst.Hash().IsHotKey(key, c.Kind()) {
		inst.Hash().PutAllForRead(slot, cacheKey, hash)
	}
	c.kvStoreHit(inst, c.Kind())
	return hashReply(hash.HGetAll())
}

// hashReply renders a field map as the flat field/value array reply,
// fields in lexical order.
func hashReply(fields map[string][]byte) *MultiBulkReply {
	if len(fields) == 0 {
		return EmptyMultiBulkReply
	}
	names := make([]string, 0, len(fields))
	for field := range fields {
		names = append(names, field)
	}
	sort.Strings(names)

	replies := make([]Reply, 0, 2*len(names))
	for _, field := range names {
		replies = append(replies, &BulkReply{Value: []byte(field)})
		replies = append(replies, &BulkReply{Value: fields[field]})
	}
	return &MultiBulkReply{Replies: replies}
}

var _ Commander = (*hgetallCommander)(nil)
