// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file and env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"runtime"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
)

// MapBounds describes the playable region of a map for density aggregation.
type MapBounds struct {
	Origin     [3]float64 `koanf:"origin"`
	Size       [3]float64 `koanf:"size"       validate:"dive,gt=0"`
	Resolution float64    `koanf:"resolution" validate:"gt=0"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// OutputDir receives the per-match artifacts.
	OutputDir string `koanf:"output_dir" validate:"required"`

	// QueueSize bounds the in-memory replay job queue.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// WorkerCount sets the number of replay workers.
	WorkerCount int `koanf:"worker_count" validate:"gt=0"`

	// DedupeSize sets the size of the submission deduplication set.
	DedupeSize int `koanf:"dedupe_size" validate:"gte=0"`

	// TickRate is the simulation rate in ticks per second.
	TickRate float64 `koanf:"tick_rate" validate:"gt=0"`

	// SampleIntervalSec is the cadence of position samples in simulated seconds.
	SampleIntervalSec float64 `koanf:"sample_interval_sec" validate:"gt=0"`

	// Store selects the match summary backend.
	Store string `koanf:"store" validate:"oneof=memory badger"`

	// StorePath is the badger directory, required when Store is badger.
	StorePath string `koanf:"store_path" validate:"required_if=Store badger"`

	// Heatmap enables the density PNG next to the binary volume.
	Heatmap bool `koanf:"heatmap"`

	// Percentiles adds P50 and P90 kill distances to every item block.
	Percentiles bool `koanf:"percentiles"`

	// SubmitRatePerMin caps POST /replays per client IP. Zero disables the limit.
	SubmitRatePerMin int `koanf:"submit_rate_per_min" validate:"gte=0"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit" validate:"gt=0"`

	// Maps adds or overrides density bounds keyed by map name.
	Maps map[string]MapBounds `koanf:"maps" validate:"dive"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		OutputDir:           "out",
		QueueSize:           1024,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          10_000,
		TickRate:            60,
		SampleIntervalSec:   0.5,
		Store:               StoreMemory,
		StorePath:           "",
		Heatmap:             false,
		Percentiles:         false,
		SubmitRatePerMin:    30,
		MaxLeaderboardLimit: 100,
		Maps:                map[string]MapBounds{},
	}
}
