// Package service wires the replay queue, the worker pool, the aggregation
// pipeline and the match store behind the methods the HTTP API needs.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/replaystats/internal/adapters/mq/queue"
	"github.com/okian/replaystats/internal/adapters/mq/worker"
	"github.com/okian/replaystats/internal/adapters/output"
	"github.com/okian/replaystats/internal/adapters/repository"
	"github.com/okian/replaystats/internal/domain/dedupe"
	"github.com/okian/replaystats/internal/domain/engine"
	"github.com/okian/replaystats/pkg/logger"
	"github.com/okian/replaystats/pkg/metrics"
)

const drainTimeout = 30 * time.Second

// Stats is a point-in-time view of the service.
type Stats struct {
	Started       bool    `json:"started"`
	UptimeSec     float64 `json:"uptime_sec"`
	Workers       int     `json:"workers"`
	QueueLength   int     `json:"queue_length"`
	QueueCapacity int     `json:"queue_capacity"`
	Matches       int     `json:"matches"`
	SeenReplays   int64   `json:"seen_replays"`
}

// Service accepts replay submissions and serves the stored results.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	deduper  dedupe.Deduper
	jobs     *queue.InMemoryQueue
	pool     *worker.Pool
	pipeline *Pipeline

	workerCount int
	queueSize   int
	dedupeSize  int
	outputDir   string
	heatmap     bool
	engineOpts  []engine.Option

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of replay workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending replay jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the set of processed game ids. Zero keeps every id.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the match store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithOutputDir sets where match artifacts and submitted replays are written.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithHeatmap enables the density PNG.
func WithHeatmap(enabled bool) Option {
	return func(s *Service) {
		s.heatmap = enabled
	}
}

// WithEngineOptions passes options to every engine the service creates.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		dedupeSize:  10_000,
		outputDir:   "out",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if err := os.MkdirAll(s.spoolDir(), 0o755); err != nil {
		return fmt.Errorf("create spool dir: %w", err)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger.Named("store")))
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	writer := output.New(s.outputDir,
		output.WithHeatmap(s.heatmap),
		output.WithLogger(s.logger.Named("output")),
	)
	s.pipeline = NewPipeline(writer, s.store, s.deduper, s.logger.Named("pipeline"), s.engineOpts...)

	s.pool = worker.NewPool(s.workerCount, s.jobs, worker.ProcessorFunc(s.process))
	// Workers outlive the start context; Stop drains them.
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "replay service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.String("output_dir", s.outputDir),
	)
	return nil
}

// Stop drains pending jobs and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping replay service", logger.Int("pending", s.jobs.Len(ctx)))
	if err := s.pool.Drain(ctx); err != nil {
		s.logger.Warn(ctx, "drain incomplete", logger.Error(err))
		_ = s.pool.Shutdown(ctx)
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "closing store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "replay service stopped")
}

// Submit spools a replay capture and queues it for processing.
func (s *Service) Submit(ctx context.Context, r io.Reader) (queue.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return queue.Job{}, ErrNotStarted
	}

	job := queue.Job{ID: uuid.NewString(), Submitted: time.Now().UTC()}
	job.Path = filepath.Join(s.spoolDir(), job.ID+".jsonl")
	if err := spool(job.Path, r); err != nil {
		return queue.Job{}, err
	}

	if err := s.jobs.Enqueue(ctx, job); err != nil {
		_ = os.Remove(job.Path)
		if errors.Is(err, queue.ErrFull) {
			return queue.Job{}, fmt.Errorf("%w: %w", ErrQueueFull, err)
		}
		if errors.Is(err, queue.ErrClosed) {
			return queue.Job{}, ErrNotStarted
		}
		return queue.Job{}, err
	}
	s.logger.Debug(ctx, "replay queued", logger.String("job_id", job.ID))
	return job, nil
}

func (s *Service) process(ctx context.Context, job queue.Job) error {
	defer func() {
		if err := os.Remove(job.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn(ctx, "removing spooled replay", logger.String("path", job.Path), logger.Error(err))
		}
	}()
	return s.pipeline.Process(ctx, job)
}

// Matches returns up to limit stored matches, newest first.
func (s *Service) Matches(ctx context.Context, limit int) ([]repository.Match, error) {
	store, err := s.readStore()
	if err != nil {
		return nil, err
	}
	return store.List(ctx, limit)
}

// Match returns one stored match.
func (s *Service) Match(ctx context.Context, gameID string) (repository.Match, error) {
	store, err := s.readStore()
	if err != nil {
		return repository.Match{}, err
	}
	return store.Get(ctx, gameID)
}

// Leaderboard returns the top n careers.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]repository.Career, error) {
	store, err := s.readStore()
	if err != nil {
		return nil, err
	}
	return store.TopPlayers(ctx, n)
}

// Player returns one career.
func (s *Service) Player(ctx context.Context, username string) (repository.Career, error) {
	store, err := s.readStore()
	if err != nil {
		return repository.Career{}, err
	}
	return store.Player(ctx, username)
}

// Stats reports service state and updates the matching gauges.
func (s *Service) Stats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Started: s.started, Workers: s.workerCount, QueueCapacity: s.queueSize}
	if !s.started {
		return st
	}
	st.UptimeSec = time.Since(s.startedAt).Seconds()
	st.Workers = s.pool.Size()
	st.QueueLength = s.jobs.Len(ctx)
	st.Matches = s.store.Count(ctx)
	st.SeenReplays = s.deduper.Size()

	metrics.UpdateQueueSize(st.QueueLength)
	metrics.UpdateMatchesStored(st.Matches)
	return st
}

func (s *Service) readStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

func (s *Service) spoolDir() string {
	return filepath.Join(s.outputDir, "incoming")
}

func spool(path string, r io.Reader) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("spool replay: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("spool replay: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("spool replay: %w", err)
	}
	return nil
}
