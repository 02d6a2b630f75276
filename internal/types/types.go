// Package types holds the shared value types and collaborator interfaces of
// the kv upstream core.
package types

import "fmt"

// KeyType is the structural type a logical key holds.
type KeyType byte

const (
	KeyTypeNone KeyType = iota
	KeyTypeString
	KeyTypeHash
	KeyTypeList
	KeyTypeSet
	KeyTypeZSet
)

func (t KeyType) String() string {
	switch t {
	case KeyTypeString:
		return "string"
	case KeyTypeHash:
		return "hash"
	case KeyTypeList:
		return "list"
	case KeyTypeSet:
		return "set"
	case KeyTypeZSet:
		return "zset"
	default:
		return "none"
	}
}

// CommandKind identifies one proxied command (upper-case, RESP spelling).
type CommandKind string

const (
	CmdHSet    CommandKind = "HSET"
	CmdHGet    CommandKind = "HGET"
	CmdHDel    CommandKind = "HDEL"
	CmdHLen    CommandKind = "HLEN"
	CmdHGetAll CommandKind = "HGETALL"
	CmdHExists CommandKind = "HEXISTS"
)

// Identity is the (bid, bgroup) pair distinguishing isolated logical
// namespaces sharing one proxy process. The zero value is the single-tenant
// default.
type Identity struct {
	Bid    int64
	BGroup string
}

func (id Identity) IsDefault() bool {
	return id.Bid == 0 && id.BGroup == ""
}

// Key returns the map key the per-tenant cache registry is keyed by.
func (id Identity) Key() string {
	if id.IsDefault() {
		return "default"
	}
	return fmt.Sprintf("%d|%s", id.Bid, id.BGroup)
}

func (id Identity) String() string {
	return id.Key()
}
