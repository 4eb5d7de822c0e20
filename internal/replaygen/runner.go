package replaygen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/replaystats/pkg/logger"
)

const dirPermission = 0o750

// Run generates the configured matches, writes them to OutDir and, when a
// base URL is set, submits them and verifies the stored summaries.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("replay-gen")
	stats := &Stats{StartTime: time.Now()}

	if err := os.MkdirAll(cfg.OutDir, dirPermission); err != nil {
		return stats, fmt.Errorf("create output dir: %w", err)
	}

	var client *Client
	if cfg.BaseURL != "" {
		client = NewClient(cfg.BaseURL, cfg.Timeout)
		if err := client.Healthy(ctx); err != nil {
			return stats, fmt.Errorf("service health check failed: %w", err)
		}
	}
	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}
	limiter := rate.NewLimiter(limit, 1)

	var pending []Expected
	for i := 0; i < cfg.Matches; i++ {
		gameID := cfg.GameID + uint64(i)
		m, err := Generate(cfg.Seed+uint64(i), gameID, cfg.Players, cfg.Ticks, cfg.Map)
		if err != nil {
			return stats, err
		}
		var buf bytes.Buffer
		if _, err := m.WriteTo(&buf); err != nil {
			return stats, fmt.Errorf("encode game %d: %w", gameID, err)
		}
		path := filepath.Join(cfg.OutDir, fmt.Sprintf("Replay_g%d.jsonl", gameID))
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return stats, fmt.Errorf("write capture: %w", err)
		}
		stats.Generated++
		log.Debug(ctx, "capture generated",
			logger.String("path", path),
			logger.Uint64("eliminations", m.Expected.Eliminations),
		)

		if client == nil {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}
		jobID, err := client.Submit(ctx, buf.Bytes())
		if err != nil {
			stats.Rejected++
			log.Warn(ctx, "submission rejected", logger.Uint64("game_id", gameID), logger.Error(err))
			continue
		}
		stats.Submitted++
		pending = append(pending, m.Expected)
		log.Debug(ctx, "capture submitted", logger.String("job_id", jobID))
	}

	for _, exp := range pending {
		got, err := client.AwaitSummary(ctx, exp.GameID, cfg.Wait)
		if err != nil {
			stats.Mismatch++
			log.Error(ctx, "summary unavailable", logger.String("game_id", exp.GameID), logger.Error(err))
			continue
		}
		if diffs := Verify(exp, got); len(diffs) > 0 {
			stats.Mismatch++
			log.Error(ctx, "summary mismatch", logger.String("game_id", exp.GameID), logger.String("diffs", summarize(diffs)))
			continue
		}
		stats.Verified++
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "replay-gen finished",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("rejected", stats.Rejected),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatch", stats.Mismatch),
		logger.String("duration", stats.Duration.String()),
	)
	if stats.Mismatch > 0 {
		return stats, fmt.Errorf("%d of %d matches failed verification", stats.Mismatch, len(pending))
	}
	return stats, nil
}
