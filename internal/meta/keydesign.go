package meta

import "encoding/binary"

// Key namespaces inside the backend store. Meta records, cache keys and
// value sub-keys live under disjoint prefixes so scans never cross kinds.
const (
	prefixMeta    byte = 'm'
	prefixCache   byte = 'c'
	prefixSubKey  byte = 's'
	prefixDivider byte = '#'
)

// KeyDesign derives all stable sub-keys for one namespace. Pure functions,
// no state.
//
// Every derived key embeds the KeyMeta's version, so two generations of the
// same logical key never collide on a cache key or a field sub-key, even
// while the backend's lazy deletion of the old generation is still pending.
type KeyDesign struct {
	namespace []byte
}

// NewKeyDesign creates the key design for namespace.
func NewKeyDesign(namespace string) *KeyDesign {
	return &KeyDesign{namespace: []byte(namespace)}
}

// Namespace returns the namespace this design serves.
func (d *KeyDesign) Namespace() string {
	return string(d.namespace)
}

func (d *KeyDesign) header(kind byte, extra int) []byte {
	out := make([]byte, 0, 3+len(d.namespace)+extra)
	out = append(out, kind, prefixDivider)
	out = append(out, d.namespace...)
	return append(out, prefixDivider)
}

// MetaKey is the backend key holding the logical key's KeyMeta record.
func (d *KeyDesign) MetaKey(key []byte) []byte {
	return append(d.header(prefixMeta, len(key)), key...)
}

// CacheKey is the lookup key for the write buffer and the local LRU cache.
func (d *KeyDesign) CacheKey(m *KeyMeta, key []byte) []byte {
	out := d.header(prefixCache, len(key)+12)
	out = binary.BigEndian.AppendUint32(out, uint32(len(key)))
	out = append(out, key...)
	return binary.BigEndian.AppendUint64(out, uint64(m.KeyVersion))
}

// SubKeyPrefix is the common prefix of all value sub-keys of one key
// generation; ScanByPrefix on it yields the full materialized value.
func (d *KeyDesign) SubKeyPrefix(m *KeyMeta, key []byte) []byte {
	out := d.header(prefixSubKey, len(key)+12)
	out = binary.BigEndian.AppendUint32(out, uint32(len(key)))
	out = append(out, key...)
	return binary.BigEndian.AppendUint64(out, uint64(m.KeyVersion))
}

// HashFieldSubKey is the backend key of one hash field's value.
func (d *KeyDesign) HashFieldSubKey(m *KeyMeta, key, field []byte) []byte {
	return append(d.SubKeyPrefix(m, key), field...)
}

// FieldFromSubKey recovers the field bytes from a sub-key returned by a
// SubKeyPrefix scan.
func (d *KeyDesign) FieldFromSubKey(m *KeyMeta, key, subKey []byte) []byte {
	return subKey[len(d.SubKeyPrefix(m, key)):]
}
