// Package meta manages per-key metadata: structural type, version epoch and
// expiry, plus the deterministic sub-key layout derived from it.
package meta

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/redkv-io/redkv/internal/types"
)

// codecVersion is the wire version byte leading every encoded KeyMeta.
const codecVersion byte = 0

// NoExpire marks a key without an expiry.
const NoExpire int64 = -1

// KeyMeta is the per-logical-key metadata record. Created on first write,
// read on every command, replaced with a fresh KeyVersion when the key is
// deleted and recreated so stale sub-keys in the backend can never collide.
type KeyMeta struct {
	KeyType    types.KeyType
	KeyVersion int64
	// ExpireTime is unix milliseconds, or NoExpire.
	ExpireTime int64
	// Extra carries per-type bookkeeping, e.g. the hash field count.
	Extra []byte
}

// Expired reports whether the key is past its expiry at now (unix millis).
func (m *KeyMeta) Expired(now int64) bool {
	return m.ExpireTime != NoExpire && m.ExpireTime <= now
}

// Encode renders the fixed binary layout:
// [codec 1][type 1][version 8][expire 8][extra...], integers big-endian.
func (m *KeyMeta) Encode() []byte {
	out := make([]byte, 18+len(m.Extra))
	out[0] = codecVersion
	out[1] = byte(m.KeyType)
	binary.BigEndian.PutUint64(out[2:], uint64(m.KeyVersion))
	binary.BigEndian.PutUint64(out[10:], uint64(m.ExpireTime))
	copy(out[18:], m.Extra)
	return out
}

// Decode parses an encoded KeyMeta.
func Decode(data []byte) (*KeyMeta, error) {
	if len(data) < 18 || data[0] != codecVersion {
		return nil, types.ErrMetaCorrupted
	}
	m := &KeyMeta{
		KeyType:    types.KeyType(data[1]),
		KeyVersion: int64(binary.BigEndian.Uint64(data[2:])),
		ExpireTime: int64(binary.BigEndian.Uint64(data[10:])),
	}
	if len(data) > 18 {
		m.Extra = make([]byte, len(data)-18)
		copy(m.Extra, data[18:])
	}
	return m, nil
}

// HashFieldCount reads the hash field count bookkept in Extra. Zero when
// the record carries no count.
func (m *KeyMeta) HashFieldCount() int {
	if len(m.Extra) < 4 {
		return 0
	}
	return int(int32(binary.BigEndian.Uint32(m.Extra)))
}

// EncodeHashFieldCount renders a hash field count as Extra bytes.
func EncodeHashFieldCount(count int) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(count))
	return out
}

var lastVersion atomic.Int64

// NewVersion returns a fresh key version. Versions are millisecond
// timestamps with a monotonic tie-break, so a key recreated twice within
// one millisecond still gets distinct versions.
func NewVersion() int64 {
	now := time.Now().UnixMilli()
	for {
		last := lastVersion.Load()
		if now <= last {
			now = last + 1
		}
		if lastVersion.CompareAndSwap(last, now) {
			return now
		}
	}
}
