package engine

import (
	"github.com/okian/replaystats/internal/domain/volume"
	"github.com/okian/replaystats/pkg/logger"
)

const (
	defaultTickRate       = 60.0
	defaultSampleInterval = 0.5
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithTickRate sets the simulation rate in ticks per second.
func WithTickRate(hz float64) Option {
	return func(e *Engine) {
		if hz > 0 {
			e.tickRate = hz
		}
	}
}

// WithSampleInterval sets the position sample cadence in simulated seconds.
func WithSampleInterval(sec float64) Option {
	return func(e *Engine) {
		if sec > 0 {
			e.sampleInterval = sec
		}
	}
}

// WithCatalog sets the map bounds used for density aggregation.
func WithCatalog(c *volume.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithPercentiles adds kill distance percentiles to the item summary.
func WithPercentiles(enabled bool) Option {
	return func(e *Engine) {
		e.percentiles = enabled
	}
}
