package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/replaystats/internal/adapters/mq/queue"
	"github.com/okian/replaystats/internal/adapters/output"
	"github.com/okian/replaystats/internal/adapters/replay"
	"github.com/okian/replaystats/internal/adapters/repository"
	"github.com/okian/replaystats/internal/domain/dedupe"
	"github.com/okian/replaystats/internal/domain/engine"
	"github.com/okian/replaystats/pkg/logger"
	"github.com/okian/replaystats/pkg/metrics"
)

// Report describes one processed replay.
type Report struct {
	GameID    string            `json:"game_id"`
	Map       string            `json:"map"`
	Ticks     int               `json:"ticks"`
	Faults    []string          `json:"faults,omitempty"`
	Artifacts []output.Artifact `json:"artifacts"`
}

// Pipeline runs one replay through a fresh engine, writes its outputs and
// stores the summary. A Pipeline is safe for concurrent use; every run owns
// its engine.
type Pipeline struct {
	engineOpts []engine.Option
	writer     *output.Writer
	store      repository.Store
	seen       dedupe.Deduper
	log        logger.Logger
}

// NewPipeline builds a pipeline. store and seen may be nil.
func NewPipeline(w *output.Writer, store repository.Store, seen dedupe.Deduper, log logger.Logger, engineOpts ...engine.Option) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}
	return &Pipeline{
		engineOpts: engineOpts,
		writer:     w,
		store:      store,
		seen:       seen,
		log:        log,
	}
}

// Process runs the replay file named by job.
func (p *Pipeline) Process(ctx context.Context, job queue.Job) error {
	f, err := os.Open(job.Path)
	if err != nil {
		metrics.RecordReplayFailed()
		return fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	rep, err := p.Run(ctx, f)
	if err != nil {
		return err
	}
	p.log.Info(ctx, "replay job processed",
		logger.String("job_id", job.ID),
		logger.String("game_id", rep.GameID),
		logger.Int("ticks", rep.Ticks),
		logger.Int("faults", len(rep.Faults)),
	)
	return nil
}

// Run aggregates the capture read from r.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Report, error) {
	start := time.Now()
	rep, err := p.run(ctx, r)
	switch {
	case errors.Is(err, ErrDuplicateReplay):
		metrics.RecordReplayDuplicate()
	case err != nil:
		metrics.RecordReplayFailed()
		metrics.RecordErrorByComponent("pipeline", "replay")
	default:
		metrics.RecordReplayProcessed()
		metrics.RecordReplayLatency(float64(time.Since(start).Milliseconds()))
	}
	return rep, err
}

func (p *Pipeline) run(ctx context.Context, r io.Reader) (_ *Report, err error) {
	dec, err := replay.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decode preamble: %w", err)
	}
	setup := dec.Setup()
	gameID := strconv.FormatUint(setup.Header.GameID, 10)

	if p.seen != nil {
		if p.seen.SeenAndRecord(ctx, gameID) {
			return nil, fmt.Errorf("%w: game %s", ErrDuplicateReplay, gameID)
		}
		defer func() {
			if err != nil {
				p.seen.Unrecord(ctx, gameID)
			}
		}()
	}

	log := p.log.Named("game-" + gameID)
	opts := make([]engine.Option, 0, len(p.engineOpts)+1)
	opts = append(opts, p.engineOpts...)
	eng := engine.New(append(opts, engine.WithLogger(log))...)
	if err := eng.Init(ctx, setup); err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}

	for {
		frame, err := dec.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode tick: %w", err)
		}
		for _, dp := range frame.Profiles {
			eng.AddDeviceProfile(ctx, dp)
		}
		for _, ev := range frame.Events {
			if err := eng.Dispatch(ctx, frame, ev); err != nil {
				return nil, fmt.Errorf("dispatch at %d: %w", ev.Stamp, err)
			}
		}
		if err := eng.Tick(ctx, frame); err != nil {
			return nil, fmt.Errorf("tick %d: %w", frame.Stamp(), err)
		}
	}

	for _, dp := range dec.Profiles() {
		eng.AddDeviceProfile(ctx, dp)
	}

	res, err := eng.Finalize(ctx)
	if err != nil {
		return nil, fmt.Errorf("finalize game %s: %w", gameID, err)
	}

	rep := &Report{GameID: gameID, Map: setup.Header.Map, Ticks: dec.Ticks()}
	for _, f := range eng.Faults() {
		rep.Faults = append(rep.Faults, f.String())
	}
	if p.writer != nil {
		if rep.Artifacts, err = p.writer.Write(ctx, res); err != nil {
			return nil, fmt.Errorf("write outputs: %w", err)
		}
	}
	if p.store != nil {
		m, err := storedMatch(res.Summary)
		if err != nil {
			return nil, err
		}
		if err := p.store.Save(ctx, m); err != nil {
			return nil, fmt.Errorf("store match: %w", err)
		}
	}
	return rep, nil
}

func storedMatch(s *engine.Summary) (repository.Match, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return repository.Match{}, fmt.Errorf("encode summary: %w", err)
	}
	lines := make(map[string]repository.PlayerLine, len(s.Players))
	for name, ps := range s.Players {
		lines[name] = repository.PlayerLine{Kills: ps.Kills, Deaths: ps.Deaths}
	}
	return repository.Match{
		GameID:    s.GameID,
		Map:       s.Map,
		Mode:      s.GameMode,
		Processed: time.Now().UTC(),
		Players:   lines,
		Summary:   doc,
	}, nil
}
