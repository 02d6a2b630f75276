package meta

import (
	"bytes"
	"testing"
	"time"

	"github.com/redkv-io/redkv/internal/types"
)

func TestKeyMetaEncodeDecode(t *testing.T) {
	original := &KeyMeta{
		KeyType:    types.KeyTypeHash,
		KeyVersion: 1717000000123,
		ExpireTime: NoExpire,
		Extra:      []byte{0, 0, 0, 7},
	}

	decoded, err := Decode(original.Encode())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.KeyType != original.KeyType {
		t.Errorf("KeyType = %v, want %v", decoded.KeyType, original.KeyType)
	}
	if decoded.KeyVersion != original.KeyVersion {
		t.Errorf("KeyVersion = %d, want %d", decoded.KeyVersion, original.KeyVersion)
	}
	if decoded.ExpireTime != NoExpire {
		t.Errorf("ExpireTime = %d, want NoExpire", decoded.ExpireTime)
	}
	if !bytes.Equal(decoded.Extra, original.Extra) {
		t.Errorf("Extra = %v, want %v", decoded.Extra, original.Extra)
	}
}

func TestDecodeRejectsCorrupted(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Error("Decode() accepted a truncated record")
	}
	bad := (&KeyMeta{KeyType: types.KeyTypeHash, KeyVersion: 1, ExpireTime: NoExpire}).Encode()
	bad[0] = 0xFF
	if _, err := Decode(bad); err == nil {
		t.Error("Decode() accepted an unknown codec version")
	}
}

func TestExpired(t *testing.T) {
	now := time.Now().UnixMilli()

	m := &KeyMeta{ExpireTime: NoExpire}
	if m.Expired(now) {
		t.Error("Expired() = true for NoExpire")
	}

	m = &KeyMeta{ExpireTime: now - 1}
	if !m.Expired(now) {
		t.Error("Expired() = false for past expiry")
	}

	m = &KeyMeta{ExpireTime: now + time.Minute.Milliseconds()}
	if m.Expired(now) {
		t.Error("Expired() = true for future expiry")
	}
}

func TestNewVersionIsStrictlyIncreasing(t *testing.T) {
	prev := NewVersion()
	for i := 0; i < 1000; i++ {
		v := NewVersion()
		if v <= prev {
			t.Fatalf("NewVersion() = %d after %d, want strictly increasing", v, prev)
		}
		prev = v
	}
}

func TestKeyDesignVersionSeparation(t *testing.T) {
	design := NewKeyDesign("ns")
	key := []byte("user:1")

	gen1 := &KeyMeta{KeyType: types.KeyTypeHash, KeyVersion: 100, ExpireTime: NoExpire}
	gen2 := &KeyMeta{KeyType: types.KeyTypeHash, KeyVersion: 101, ExpireTime: NoExpire}

	if bytes.Equal(design.CacheKey(gen1, key), design.CacheKey(gen2, key)) {
		t.Error("CacheKey collides across key versions")
	}
	if bytes.Equal(design.HashFieldSubKey(gen1, key, []byte("f")), design.HashFieldSubKey(gen2, key, []byte("f"))) {
		t.Error("HashFieldSubKey collides across key versions")
	}
}

func TestKeyDesignNoCrossKeyCollision(t *testing.T) {
	design := NewKeyDesign("ns")
	m := &KeyMeta{KeyType: types.KeyTypeHash, KeyVersion: 7, ExpireTime: NoExpire}

	// "ab" + field "c" vs "a" + field "bc" must not produce the same
	// sub-key; the length prefix in the design guarantees it.
	k1 := design.HashFieldSubKey(m, []byte("ab"), []byte("c"))
	k2 := design.HashFieldSubKey(m, []byte("a"), []byte("bc"))
	if bytes.Equal(k1, k2) {
		t.Error("HashFieldSubKey collides across (key, field) splits")
	}
}

func TestFieldFromSubKeyRoundTrip(t *testing.T) {
	design := NewKeyDesign("prod")
	m := &KeyMeta{KeyType: types.KeyTypeHash, KeyVersion: 9, ExpireTime: NoExpire}
	key := []byte("h1")

	for _, field := range [][]byte{[]byte("f1"), []byte(""), []byte("with#divider")} {
		subKey := design.HashFieldSubKey(m, key, field)
		if !bytes.HasPrefix(subKey, design.SubKeyPrefix(m, key)) {
			t.Fatalf("sub-key %q does not start with the scan prefix", subKey)
		}
		got := design.FieldFromSubKey(m, key, subKey)
		if !bytes.Equal(got, field) {
			t.Errorf("FieldFromSubKey() = %q, want %q", got, field)
		}
	}
}
