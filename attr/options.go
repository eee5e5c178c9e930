package attr

import "go.uber.org/zap"

// Options configures a Registry.
type Options struct {
	// Logger receives debug events about attribute lifecycle.
	Logger *zap.Logger
	// InitialCapacity pre-sizes the storage of newly attached attributes.
	InitialCapacity int
}

// Option applies a configuration change to Options.
type Option func(*Options)

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Logger:          zap.NewNop(),
		InitialCapacity: 0,
	}
}

// WithLogger sets the registry logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		if logger == nil {
			logger = zap.NewNop()
		}
		o.Logger = logger
	}
}

// WithInitialCapacity pre-sizes every attribute for n entity indices.
func WithInitialCapacity(n int) Option {
	return func(o *Options) {
		if n < 0 {
			n = 0
		}
		o.InitialCapacity = n
	}
}
