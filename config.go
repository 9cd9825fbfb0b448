package slab

import "go.uber.org/zap"

// Config gathers the build-time feature toggles of §4.7 (red-zone,
// free-check, poisoning) plus the collaborators a Cache needs, as a
// struct-of-options rather than Go build tags: unlike the teacher's
// single compile-time trace const, a table-driven test here wants a
// plain and an instrumented cache side by side in the same binary.
type Config struct {
	// Redzone enables the front/rear sentinel words around every slot
	// and their verification on Alloc/Free (§4.7, invariant 5).
	Redzone bool
	// FreeCheck enables the per-bufctl free flag and double-free
	// detection (§4.7, invariant 6).
	FreeCheck bool
	// Poison enables deterministic alloc/free byte patterns (§4.7).
	Poison bool
	// Logger receives structured diagnostics; nil means disabled.
	Logger *zap.Logger
	// Pages is the PageAllocator new slabs grow from; nil means
	// DefaultPageAllocator.
	Pages PageAllocator
}

// Option configures a Cache at Create time.
type Option func(*Config)

// WithRedzone toggles red-zone instrumentation (§4.7).
func WithRedzone(enabled bool) Option { return func(c *Config) { c.Redzone = enabled } }

// WithFreeCheck toggles double-free detection (§4.7).
func WithFreeCheck(enabled bool) Option { return func(c *Config) { c.FreeCheck = enabled } }

// WithPoison toggles alloc/free poisoning (§4.7).
func WithPoison(enabled bool) Option { return func(c *Config) { c.Poison = enabled } }

// WithLogger attaches a structured logger to a Cache.
func WithLogger(l *zap.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithPageAllocator overrides the PageAllocator a Cache grows from,
// primarily so tests can inject a fake that doesn't touch the OS.
func WithPageAllocator(p PageAllocator) Option { return func(c *Config) { c.Pages = p } }

func buildConfig(opts ...Option) Config {
	cfg := Config{Logger: defaultLogger, Pages: DefaultPageAllocator}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = defaultLogger
	}
	if cfg.Pages == nil {
		cfg.Pages = DefaultPageAllocator
	}
	return cfg
}
