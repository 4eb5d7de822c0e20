package replaygen

import (
	"fmt"
	"sort"
	"strings"
)

// Verify compares a stored summary against the generator's totals and
// returns one line per mismatch.
func Verify(exp Expected, got *SummaryView) []string {
	var diffs []string
	if got.GameID != exp.GameID {
		diffs = append(diffs, fmt.Sprintf("GameId: want %s, got %s", exp.GameID, got.GameID))
	}
	if got.TotalEliminations != exp.Eliminations {
		diffs = append(diffs, fmt.Sprintf("TotalEliminations: want %d, got %d", exp.Eliminations, got.TotalEliminations))
	}
	if got.TotalSpawns != exp.Spawns {
		diffs = append(diffs, fmt.Sprintf("TotalSpawns: want %d, got %d", exp.Spawns, got.TotalSpawns))
	}
	if got.Winner == nil || *got.Winner != exp.Winner {
		w := "<none>"
		if got.Winner != nil {
			w = *got.Winner
		}
		diffs = append(diffs, fmt.Sprintf("winner: want %s, got %s", exp.Winner, w))
	}

	names := make([]string, 0, len(exp.Kills))
	for name := range exp.Kills {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, ok := got.Players[name]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("player %s missing", name))
			continue
		}
		if p.Kills != exp.Kills[name] || p.Deaths != exp.Deaths[name] {
			diffs = append(diffs, fmt.Sprintf("player %s: want %d/%d, got %d/%d",
				name, exp.Kills[name], exp.Deaths[name], p.Kills, p.Deaths))
		}
	}
	return diffs
}

func summarize(diffs []string) string {
	return strings.Join(diffs, "; ")
}
