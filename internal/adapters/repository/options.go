package repository

import "github.com/okian/replaystats/pkg/logger"

type options struct {
	log      logger.Logger
	inMemory bool
}

// Option configures a store.
type Option func(*options)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithInMemory keeps badger data in memory only. Intended for tests.
func WithInMemory(enabled bool) Option {
	return func(o *options) {
		o.inMemory = enabled
	}
}

func buildOptions(opts []Option) options {
	o := options{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
