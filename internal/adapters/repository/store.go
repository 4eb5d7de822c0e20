// Package repository stores finished match summaries and the career
// leaderboard derived from them.
package repository

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
)

// PlayerLine is a participant's tally in one match.
type PlayerLine struct {
	Kills  uint64 `json:"kills"`
	Deaths uint64 `json:"deaths"`
}

// Match is a stored match. Summary holds the encoded match document.
type Match struct {
	GameID    string                `json:"game_id"`
	Map       string                `json:"map"`
	Mode      string                `json:"mode"`
	Processed time.Time             `json:"processed"`
	Players   map[string]PlayerLine `json:"players"`
	Summary   json.RawMessage       `json:"summary"`
}

// Career is a player's totals across stored matches.
type Career struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Matches  int    `json:"matches"`
	Kills    uint64 `json:"kills"`
	Deaths   uint64 `json:"deaths"`
}

// Store provides read/write access to match results.
type Store interface {
	// Save stores m, replacing an earlier match with the same game id.
	Save(ctx context.Context, m Match) error

	// Get returns a match by game id, or ErrNotFound.
	Get(ctx context.Context, gameID string) (Match, error)

	// List returns up to limit matches, most recently processed first.
	List(ctx context.Context, limit int) ([]Match, error)

	// Count returns the number of stored matches.
	Count(ctx context.Context) int

	// TopPlayers returns the top-n careers ordered by kills desc.
	TopPlayers(ctx context.Context, n int) ([]Career, error)

	// Player returns one career with its rank, or ErrNotFound.
	Player(ctx context.Context, username string) (Career, error)

	Close() error
}
