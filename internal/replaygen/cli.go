package replaygen

import "os"

// ShowHelp prints usage information.
func ShowHelp() {
	os.Stdout.WriteString(`Replay Generator
================

Builds deterministic synthetic match captures and optionally submits them to
a running replay service, then checks the stored summaries.

Usage:
  go run ./cmd/replay-gen [options]

Options:
  -url string
        Base URL of the service; empty only writes captures
  -matches int
        Number of matches to generate (default 5)
  -players int
        Participants per match (default 8)
  -ticks int
        Simulated ticks per match (default 3600)
  -seed uint
        Seed of the first match (default 1)
  -game uint
        Game id of the first match (default 1000)
  -map string
        Map name written to the header (default "Outpost")
  -rate float
        Submissions per second (default 2)
  -wait duration
        How long to wait for each summary (default 30s)
  -out string
        Directory receiving the captures (default "captures")
  -verbose
        Enable debug logging

Examples:
  # Write five captures locally
  go run ./cmd/replay-gen -matches 5

  # Drive a local service and verify the results
  go run ./cmd/replay-gen -url http://localhost:9080 -matches 20 -rate 5
`)
}
