package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Load loads configuration from a JSON file.
// If the file doesn't exist, returns default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, use defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithEnv loads configuration from a JSON file and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REDKV_NAMESPACE"); v != "" {
		cfg.Namespace = v
	}
	if v := os.Getenv("REDKV_HASH_LOCAL_CACHE_ENABLED"); v != "" {
		cfg.Cache.HashLocalCacheEnabled = parseBool(v)
	}
	if v := os.Getenv("REDKV_CACHE_INITIAL_CAPACITY"); v != "" {
		cfg.Cache.InitialCapacity = parseInt(v, cfg.Cache.InitialCapacity)
	}
	if v := os.Getenv("REDKV_CAPACITY_UPDATE_INTERVAL"); v != "" {
		cfg.Cache.CapacityUpdateInterval = parseDuration(v, cfg.Cache.CapacityUpdateInterval)
	}
	if v := os.Getenv("REDKV_HOT_KEY_THRESHOLD"); v != "" {
		cfg.Cache.HotKeyThreshold = int64(parseInt(v, int(cfg.Cache.HotKeyThreshold)))
	}
	if v := os.Getenv("REDKV_WRITE_BUFFER_ENABLED"); v != "" {
		cfg.WriteBuffer.Enabled = parseBool(v)
	}
	if v := os.Getenv("REDKV_WRITE_BUFFER_MAX_PENDING"); v != "" {
		cfg.WriteBuffer.MaxPending = parseInt(v, cfg.WriteBuffer.MaxPending)
	}
	if v := os.Getenv("REDKV_ASYNC_WRITE_WORKERS"); v != "" {
		cfg.AsyncWrite.Workers = parseInt(v, cfg.AsyncWrite.Workers)
	}
	if v := os.Getenv("REDKV_META_CACHE_ENABLED"); v != "" {
		cfg.MetaCache.Enabled = parseBool(v)
	}
	if v := os.Getenv("REDKV_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("REDKV_DATADOG_AGENT_HOST"); v != "" {
		cfg.Metrics.DataDog.AgentHost = v
	}
	if v := os.Getenv("REDKV_DATADOG_PORT"); v != "" {
		cfg.Metrics.DataDog.Port = parseInt(v, cfg.Metrics.DataDog.Port)
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
