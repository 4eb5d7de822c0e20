// Package output writes finalized match results to a directory.
package output

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/okian/replaystats/internal/domain/engine"
	"github.com/okian/replaystats/internal/domain/volume"
	"github.com/okian/replaystats/pkg/logger"
	"github.com/okian/replaystats/pkg/metrics"
)

// Artifact kinds.
const (
	ArtifactSummary      = "summary"
	ArtifactDensity      = "density"
	ArtifactHeatmap      = "heatmap"
	ArtifactPerformance  = "performance"
	ArtifactPlayerUpdate = "player_update"
	ArtifactRipperAmmo   = "ripper_ammo"
)

// Artifact is one written file.
type Artifact struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// Writer lays results out as files named after the game id.
type Writer struct {
	dir     string
	heatmap bool
	log     logger.Logger
}

// New returns a writer rooted at dir.
func New(dir string, opts ...Option) *Writer {
	w := &Writer{dir: dir, log: logger.Discard()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Write stores every artifact of res and returns them in write order.
func (w *Writer) Write(ctx context.Context, res *engine.Result) ([]Artifact, error) {
	if res == nil || res.Summary == nil {
		return nil, ErrNoSummary
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	id := res.Summary.GameID
	var out []Artifact

	doc, err := json.MarshalIndent(res.Summary, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	if out, err = w.put(out, ArtifactSummary, fmt.Sprintf("Match_g%s.json", id), doc); err != nil {
		return nil, err
	}

	if res.Density != nil {
		mapName := SanitizeFileName(res.Summary.Map)
		if out, err = w.put(out, ArtifactDensity, fmt.Sprintf("LocationAgg_%s_g%s.bin", mapName, id), res.Density); err != nil {
			return nil, err
		}
		if w.heatmap {
			grid, err := volume.Decode(res.Density)
			if err != nil {
				return nil, fmt.Errorf("decode density: %w", err)
			}
			var png bytes.Buffer
			if err := RenderHeatmap(&png, grid); err != nil {
				return nil, err
			}
			if out, err = w.put(out, ArtifactHeatmap, fmt.Sprintf("LocationAgg_%s_g%s.png", mapName, id), png.Bytes()); err != nil {
				return nil, err
			}
		}
	}

	for _, p := range res.Performance {
		name := fmt.Sprintf("Performance_%s_g%s.csv", SanitizeFileName(p.Username), id)
		if out, err = w.put(out, ArtifactPerformance, name, csv(p.Lines)); err != nil {
			return nil, err
		}
	}
	if out, err = w.put(out, ArtifactPlayerUpdate, fmt.Sprintf("PlayerUpdate_g%s.csv", id), csv(res.PlayerUpdateCSV)); err != nil {
		return nil, err
	}
	if out, err = w.put(out, ArtifactRipperAmmo, fmt.Sprintf("RipperElimAmmo_g%s.csv", id), csv(res.AmmoCSV)); err != nil {
		return nil, err
	}

	w.log.Info(ctx, "match outputs written",
		logger.String("game_id", id),
		logger.String("dir", w.dir),
		logger.Int("files", len(out)),
	)
	return out, nil
}

func (w *Writer) put(out []Artifact, kind, name string, data []byte) ([]Artifact, error) {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return out, fmt.Errorf("write %s: %w", name, err)
	}
	metrics.RecordOutputBytes(kind, len(data))
	return append(out, Artifact{Kind: kind, Path: path, Bytes: len(data)}), nil
}

func csv(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// SanitizeFileName replaces characters that are unsafe in file names.
func SanitizeFileName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
