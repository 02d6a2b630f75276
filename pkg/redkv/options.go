package redkv

import "log/slog"

// Options collects the optional collaborators an Upstream can be built
// with. Zero values mean built-in defaults.
type Options struct {
	Logger  *slog.Logger
	Monitor Monitor
	Oracle  HotKeyOracle
	Dynamic *DynamicConf
	Memory  MemoryTelemetry
}

// Option customizes Upstream construction.
type Option func(*Options)

// WithLogger sets the logger; defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithLoggerAdapter adapts a host process's own leveled logger into the
// internal slog plumbing. Mutually exclusive with WithLogger; the last one
// applied wins.
func WithLoggerAdapter(logger Logger) Option {
	return func(o *Options) {
		o.Logger = slog.New(slogAdapter{logger: logger})
	}
}

// WithMonitor replaces the built-in metrics tracker with a custom sink.
// The periodic metrics publisher is then disabled.
func WithMonitor(monitor Monitor) Option {
	return func(o *Options) {
		o.Monitor = monitor
	}
}

// WithHotKeyOracle replaces the built-in frequency-window hot-key
// detector.
func WithHotKeyOracle(oracle HotKeyOracle) Option {
	return func(o *Options) {
		o.Oracle = oracle
	}
}

// WithDynamicConf supplies a shared dynamic configuration snapshot, e.g.
// one reloaded from an external control plane.
func WithDynamicConf(dynamic *DynamicConf) Option {
	return func(o *Options) {
		o.Dynamic = dynamic
	}
}

// WithMemoryTelemetry replaces the cgroup/debug-based heap ceiling source.
func WithMemoryTelemetry(memory MemoryTelemetry) Option {
	return func(o *Options) {
		o.Memory = memory
	}
}
