// Package replaygen builds deterministic synthetic match captures and drives
// them through a running replay service.
package replaygen

import "time"

// Config holds the generator and submission settings.
type Config struct {
	BaseURL string        // Base URL of the service; empty skips submission
	Seed    uint64        // Seed of the first match
	GameID  uint64        // Game id of the first match
	Matches int           // Number of matches to generate
	Players int           // Participants per match
	Ticks   int           // Simulated ticks per match
	Map     string        // Map name written to the header
	Rate    float64       // Submissions per second
	Timeout time.Duration // HTTP request timeout
	Wait    time.Duration // How long to wait for each summary
	OutDir  string        // Directory receiving the generated captures
	Verbose bool          // Enable debug logging
}

// Expected holds the totals a correct aggregation must report for a match.
type Expected struct {
	GameID       string
	Eliminations uint64
	Spawns       uint64
	Kills        map[string]uint64
	Deaths       map[string]uint64
	Winner       string
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Submitted int
	Rejected  int
	Verified  int
	Mismatch  int
	StartTime time.Time
	Duration  time.Duration
}
