package redkv

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/redkv-io/redkv/internal/command"
	"github.com/redkv-io/redkv/internal/config"
	"github.com/redkv-io/redkv/internal/kv"
	"github.com/redkv-io/redkv/internal/metrics"
	"github.com/redkv-io/redkv/internal/types"
)

// Collaborator contracts and value types re-exported for embedders.
type (
	// KVClient is the backend sorted key-value store contract.
	KVClient = kv.Client
	// KeyValue is one backend entry.
	KeyValue = kv.KeyValue

	// Identity is the (bid, bgroup) tenant pair. The zero value is the
	// single-tenant default.
	Identity = types.Identity
	// CommandKind names one supported command.
	CommandKind = types.CommandKind
	// Logger is the minimal leveled logging surface a host process can
	// adapt its own logger to.
	Logger = types.Logger
	// HotKeyOracle decides which cache misses earn full-value promotion.
	HotKeyOracle = types.HotKeyOracle
	// Monitor receives tier-hit attribution and cache sizing telemetry.
	Monitor = types.Monitor
	// MemoryTelemetry reports the heap ceiling capacity planning budgets
	// against.
	MemoryTelemetry = types.MemoryTelemetry

	// Command is one protocol command.
	Command = command.Command
	// Reply is the protocol-level answer to a command.
	Reply = command.Reply
	// IntegerReply, BulkReply, MultiBulkReply, StatusReply and ErrorReply
	// are the concrete reply shapes.
	IntegerReply   = command.IntegerReply
	BulkReply      = command.BulkReply
	MultiBulkReply = command.MultiBulkReply
	StatusReply    = command.StatusReply
	ErrorReply     = command.ErrorReply

	// Config is the static configuration tree.
	Config = config.Config
	// DynamicConf is the live-reloadable override snapshot.
	DynamicConf = config.Dynamic

	// MetricsSnapshot is a point-in-time view of collected telemetry.
	MetricsSnapshot = metrics.Snapshot
)

// Supported command kinds.
const (
	CmdHSet    = types.CmdHSet
	CmdHGet    = types.CmdHGet
	CmdHDel    = types.CmdHDel
	CmdHLen    = types.CmdHLen
	CmdHGetAll = types.CmdHGetAll
	CmdHExists = types.CmdHExists
)

// NewCommand builds a command from its kind and arguments.
func NewCommand(kind CommandKind, args ...[]byte) *Command {
	return command.New(kind, args...)
}

// NewMemoryStore returns the embedded in-process backend, for tests and
// examples.
func NewMemoryStore() KVClient {
	return kv.NewMemoryStore()
}

// NewRedisStore adapts a go-redis client into a KVClient. The prefix
// namespaces all backend keys; the caller owns the client's lifecycle.
func NewRedisStore(client redis.UniversalClient, prefix string, logger *slog.Logger) KVClient {
	return kv.NewRedisStore(client, prefix, logger)
}

// NewDynamicConf creates a dynamic configuration snapshot seeded with
// initial values.
func NewDynamicConf(initial map[string]string) *DynamicConf {
	return config.NewDynamic(initial)
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// TestConfig returns a configuration suitable for unit tests.
func TestConfig() *Config {
	return config.ForTesting()
}

// LoadConfig reads a JSON configuration file and applies REDKV_*
// environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	return config.LoadWithEnv(path)
}
