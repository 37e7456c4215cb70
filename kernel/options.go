package kernel

import (
	"log/slog"
	"os"
	"runtime"
)

// EnvBackend names the environment variable that selects a backend when no
// backend is configured explicitly.
const EnvBackend = "QSIM_KERNEL"

// BackendAuto selects the best backend for the current CPU.
const BackendAuto = "auto"

// Config defines engine settings.
type Config struct {
	// Workers is the number of goroutines one Apply may use.
	Workers int

	// MinGroupsPerTask is the smallest chunk of collapsed iterations handed
	// to a worker. With the default collapse depth one iteration is one group.
	MinGroupsPerTask int

	// Backend forces a registered backend by name. Empty defers to
	// QSIM_KERNEL, then to automatic selection.
	Backend string

	// Collapse overrides the collapse depth for every arity. Zero uses
	// CollapseDepth; larger values are clamped to k+1.
	Collapse int

	Logger  *slog.Logger
	Metrics MetricsCollector
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the settings used by New without options.
func DefaultConfig() Config {
	return Config{
		Workers:          runtime.GOMAXPROCS(0),
		MinGroupsPerTask: 1024,
		Logger:           noopLogger(),
		Metrics:          NoopMetricsCollector{},
	}
}

// WithWorkers sets the worker count. One worker runs every kernel inline.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

// WithMinGroupsPerTask sets the smallest chunk handed to a worker.
func WithMinGroupsPerTask(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MinGroupsPerTask = n
		}
	}
}

// WithBackend forces the named backend ("generic", "lanes" or "auto").
func WithBackend(name string) Option {
	return func(cfg *Config) {
		cfg.Backend = name
	}
}

// WithCollapse overrides the collapse depth.
func WithCollapse(depth int) Option {
	return func(cfg *Config) {
		if depth > 0 {
			cfg.Collapse = depth
		}
	}
}

// WithLogger sets the logger for engine lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *Config) {
		if l != nil {
			cfg.Logger = l
		}
	}
}

// WithMetrics installs a metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(cfg *Config) {
		if m != nil {
			cfg.Metrics = m
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// noopLogger discards every record.
func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}
