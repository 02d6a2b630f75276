package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/redkv-io/redkv/internal/types"
)

// RedisStore adapts a Redis instance into a Client. Each backend entry is a
// plain Redis string keyed by "<prefix>{<slot>}<raw key>"; the braces keep
// one slot's entries on one cluster node. Range scans use SCAN MATCH, so
// ordering is reconstructed client-side.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// NewRedisStore wraps an existing client. The caller owns the client's
// lifecycle, credentials and timeout policy.
func NewRedisStore(client redis.UniversalClient, prefix string, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger.With("component", "kv-redis"),
	}
}

func (s *RedisStore) storageKey(slot int, key []byte) string {
	return fmt.Sprintf("%s{%d}%s", s.prefix, slot, key)
}

// rawKey strips the storage prefix added by storageKey.
func (s *RedisStore) rawKey(slot int, storageKey string) []byte {
	return []byte(storageKey[len(fmt.Sprintf("%s{%d}", s.prefix, slot)):])
}

// Get returns the value for key, or (nil, nil) when absent.
func (s *RedisStore) Get(ctx context.Context, slot int, key []byte) ([]byte, error) {
	data, err := s.client.Get(ctx, s.storageKey(slot, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, types.NewKvError("get", string(key), errors.Join(types.ErrBackend, err))
	}
	return data, nil
}

// Exists reports per-key presence, aligned with keys.
func (s *RedisStore) Exists(ctx context.Context, slot int, keys ...[]byte) ([]bool, error) {
	pipe := s.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Exists(ctx, s.storageKey(slot, key))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, types.NewKvError("exists", "", errors.Join(types.ErrBackend, err))
	}
	out := make([]bool, len(keys))
	for i, cmd := range cmds {
		out[i] = cmd.Val() > 0
	}
	return out, nil
}

// BatchPut writes all entries in one pipeline.
func (s *RedisStore) BatchPut(ctx context.Context, slot int, entries []KeyValue) error {
	pipe := s.client.Pipeline()
	for _, kv := range entries {
		pipe.Set(ctx, s.storageKey(slot, kv.Key), kv.Value, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return types.NewKvError("batch-put", "", errors.Join(types.ErrBackend, err))
	}
	return nil
}

// BatchDelete removes all keys in one call.
func (s *RedisStore) BatchDelete(ctx context.Context, slot int, keys ...[]byte) error {
	if len(keys) == 0 {
		return nil
	}
	storageKeys := make([]string, len(keys))
	for i, key := range keys {
		storageKeys[i] = s.storageKey(slot, key)
	}
	if err := s.client.Del(ctx, storageKeys...).Err(); err != nil {
		return types.NewKvError("batch-delete", "", errors.Join(types.ErrBackend, err))
	}
	return nil
}

// ScanByPrefix returns matching entries in ascending key order.
func (s *RedisStore) ScanByPrefix(ctx context.Context, slot int, prefix []byte, limit int) ([]KeyValue, error) {
	match := escapeGlob(s.storageKey(slot, prefix)) + "*"

	var storageKeys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, match, 512).Result()
		if err != nil {
			return nil, types.NewKvError("scan", string(prefix), errors.Join(types.ErrBackend, err))
		}
		storageKeys = append(storageKeys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
		if limit > 0 && len(storageKeys) >= limit {
			break
		}
	}

	sort.Strings(storageKeys)
	if limit > 0 && len(storageKeys) > limit {
		storageKeys = storageKeys[:limit]
	}
	if len(storageKeys) == 0 {
		return nil, nil
	}

	values, err := s.client.MGet(ctx, storageKeys...).Result()
	if err != nil {
		return nil, types.NewKvError("scan-mget", string(prefix), errors.Join(types.ErrBackend, err))
	}

	out := make([]KeyValue, 0, len(storageKeys))
	for i, storageKey := range storageKeys {
		str, ok := values[i].(string)
		if !ok {
			// Deleted between SCAN and MGET.
			continue
		}
		out = append(out, KeyValue{Key: s.rawKey(slot, storageKey), Value: []byte(str)})
	}
	return out, nil
}

// escapeGlob neutralizes SCAN MATCH metacharacters in raw key bytes.
func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

var _ Client = (*RedisStore)(nil)
