package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/replaystats/internal/replaygen"
	"github.com/okian/replaystats/pkg/logger"
)

// Default configuration constants.
const (
	defaultMatches = 5
	defaultPlayers = 8
	defaultTicks   = 3600
	defaultRate    = 2
	defaultTimeout = 30 * time.Second
	defaultWait    = 30 * time.Second
	defaultRunTime = 30 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "", "Base URL of the service; empty only writes captures")
		matches = flag.Int("matches", defaultMatches, "Number of matches to generate")
		players = flag.Int("players", defaultPlayers, "Participants per match")
		ticks   = flag.Int("ticks", defaultTicks, "Simulated ticks per match")
		seed    = flag.Uint64("seed", 1, "Seed of the first match")
		gameID  = flag.Uint64("game", 1000, "Game id of the first match")
		mapName = flag.String("map", "Outpost", "Map name written to the header")
		rps     = flag.Float64("rate", defaultRate, "Submissions per second")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait    = flag.Duration("wait", defaultWait, "How long to wait for each summary")
		outDir  = flag.String("out", "captures", "Directory receiving the captures")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replaygen.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTime)
	defer cancel()

	cfg := &replaygen.Config{
		BaseURL: *baseURL,
		Seed:    *seed,
		GameID:  *gameID,
		Matches: *matches,
		Players: *players,
		Ticks:   *ticks,
		Map:     *mapName,
		Rate:    *rps,
		Timeout: *timeout,
		Wait:    *wait,
		OutDir:  *outDir,
		Verbose: *verbose,
	}

	stats, err := replaygen.Run(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("replay-gen failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if stats.Mismatch > 0 || stats.Rejected > 0 {
		os.Exit(2)
	}
}
