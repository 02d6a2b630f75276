package meta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/kv"
	"github.com/redkv-io/redkv/internal/types"
)

// Local meta cache entry markers. A cached record starts with one marker
// byte so known-missing keys can be answered without a backend read.
const (
	markerMissing byte = 0
	markerPresent byte = 1
)

// Server resolves KeyMeta records, fronting the backend with a
// bigcache-backed local metadata cache. Metadata records are small and
// byte-valued, which is exactly the workload bigcache shards well.
type Server struct {
	kvClient kv.Client
	design   *KeyDesign
	cache    *bigcache.BigCache
	logger   *slog.Logger
}

// NewServer creates a meta server. With cfg.Enabled false the local cache
// is skipped and every read goes to the backend.
func NewServer(kvClient kv.Client, design *KeyDesign, cfg config.MetaCacheConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		kvClient: kvClient,
		design:   design,
		logger:   logger.With("component", "key-meta-server"),
	}

	if cfg.Enabled {
		bcConfig := bigcache.DefaultConfig(cfg.TTL)
		bcConfig.Shards = cfg.Shards
		bcConfig.CleanWindow = cfg.CleanupInterval
		bcConfig.HardMaxCacheSize = cfg.MaxSizeMB
		bcConfig.Verbose = false

		bc, err := bigcache.New(context.Background(), bcConfig)
		if err != nil {
			return nil, err
		}
		s.cache = bc
	}

	return s, nil
}

func (s *Server) localKey(slot int, key []byte) string {
	return fmt.Sprintf("%d|%s", slot, key)
}

// RunToCompletion answers a meta lookup from the local cache only. The
// second return is false when the cache has no answer and the caller must
// take the full path; (nil, true) means the key is known missing.
func (s *Server) RunToCompletion(slot int, key []byte) (*KeyMeta, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(s.localKey(slot, key))
	if err != nil {
		return nil, false
	}
	if len(data) == 0 || data[0] == markerMissing {
		return nil, true
	}
	m, err := Decode(data[1:])
	if err != nil {
		return nil, false
	}
	if m.Expired(time.Now().UnixMilli()) {
		return nil, false
	}
	return m, true
}

// GetKeyMeta resolves the KeyMeta for key, reading through to the backend
// on a local miss. Returns (nil, nil) for a missing or expired key.
func (s *Server) GetKeyMeta(ctx context.Context, slot int, key []byte) (*KeyMeta, error) {
	if m, ok := s.RunToCompletion(slot, key); ok {
		return m, nil
	}

	data, err := s.kvClient.Get(ctx, slot, s.design.MetaKey(key))
	if err != nil {
		return nil, types.NewKvError("get-meta", string(key), err)
	}
	if data == nil {
		s.cacheMissing(slot, key)
		return nil, nil
	}

	m, err := Decode(data)
	if err != nil {
		// A corrupted record is unrecoverable for this key; surface it.
		return nil, types.NewKvError("decode-meta", string(key), err)
	}
	if m.Expired(time.Now().UnixMilli()) {
		// Lazy expiry: drop the record, the gc of stale sub-keys is the
		// backend's business.
		if err := s.kvClient.BatchDelete(ctx, slot, s.design.MetaKey(key)); err != nil {
			s.logger.Warn("failed to delete expired key meta", "key", string(key), "error", err)
		}
		s.cacheMissing(slot, key)
		return nil, nil
	}

	s.cachePresent(slot, key, m)
	return m, nil
}

// CreateOrUpdateKeyMeta persists meta for key and refreshes the local cache.
func (s *Server) CreateOrUpdateKeyMeta(ctx context.Context, slot int, key []byte, m *KeyMeta) error {
	entry := kv.KeyValue{Key: s.design.MetaKey(key), Value: m.Encode()}
	if err := s.kvClient.BatchPut(ctx, slot, []kv.KeyValue{entry}); err != nil {
		return types.NewKvError("put-meta", string(key), err)
	}
	s.cachePresent(slot, key, m)
	return nil
}

// DeleteKeyMeta removes the meta record; the key is then logically gone
// regardless of surviving sub-keys.
func (s *Server) DeleteKeyMeta(ctx context.Context, slot int, key []byte) error {
	if err := s.kvClient.BatchDelete(ctx, slot, s.design.MetaKey(key)); err != nil {
		return types.NewKvError("delete-meta", string(key), err)
	}
	s.cacheMissing(slot, key)
	return nil
}

func (s *Server) cachePresent(slot int, key []byte, m *KeyMeta) {
	if s.cache == nil {
		return
	}
	encoded := m.Encode()
	entry := make([]byte, 1+len(encoded))
	entry[0] = markerPresent
	copy(entry[1:], encoded)
	if err := s.cache.Set(s.localKey(slot, key), entry); err != nil {
		s.logger.Debug("meta cache set failed", "key", string(key), "error", err)
	}
}

func (s *Server) cacheMissing(slot int, key []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(s.localKey(slot, key), []byte{markerMissing}); err != nil {
		s.logger.Debug("meta cache set failed", "key", string(key), "error", err)
	}
}

// Close releases the local cache.
func (s *Server) Close() error {
	if s.cache == nil {
		return nil
	}
	err := s.cache.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
