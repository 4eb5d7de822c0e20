package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/okian/replaystats/internal/adapters/http/api"
	"github.com/okian/replaystats/internal/adapters/http/swagger"
	"github.com/okian/replaystats/internal/adapters/output"
	"github.com/okian/replaystats/internal/adapters/repository"
	service "github.com/okian/replaystats/internal/app"
	"github.com/okian/replaystats/internal/config"
	"github.com/okian/replaystats/internal/domain/engine"
	"github.com/okian/replaystats/internal/domain/model"
	"github.com/okian/replaystats/internal/domain/volume"
	"github.com/okian/replaystats/pkg/logger"
	"github.com/okian/replaystats/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 30 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

// Usage:
//
//	replaystats                      serve the HTTP API
//	replaystats Replay_g1.jsonl ...  aggregate the given captures and exit
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		// The logger is not configured yet.
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	files := os.Args[1:]
	logOut := io.Writer(os.Stdout)
	if len(files) > 0 {
		// Reports go to stdout in one-shot mode.
		logOut = os.Stderr
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(logOut)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	engineOpts, err := engineOptions(cfg)
	if err != nil {
		log.Error(ctx, "invalid map bounds", logger.Error(err))
		os.Exit(1)
	}

	if len(files) > 0 {
		if err := runOnce(ctx, cfg, log, engineOpts, files, os.Stdout); err != nil {
			log.Error(ctx, "replay processing failed", logger.Error(err))
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, cfg, log, engineOpts); err != nil {
		log.Error(ctx, "service failed", logger.Error(err))
		os.Exit(1)
	}
}

// engineOptions turns configuration into engine options. Maps from the
// config extend or replace the built-in catalog.
func engineOptions(cfg *config.Config) ([]engine.Option, error) {
	extra := make([]volume.Bounds, 0, len(cfg.Maps))
	for name, mb := range cfg.Maps {
		extra = append(extra, volume.Bounds{
			Name:       name,
			Origin:     model.Vector{X: mb.Origin[0], Y: mb.Origin[1], Z: mb.Origin[2]},
			Size:       model.Vector{X: mb.Size[0], Y: mb.Size[1], Z: mb.Size[2]},
			Resolution: mb.Resolution,
		})
	}
	catalog, err := volume.DefaultCatalog().With(extra...)
	if err != nil {
		return nil, err
	}
	return []engine.Option{
		engine.WithTickRate(cfg.TickRate),
		engine.WithSampleInterval(cfg.SampleIntervalSec),
		engine.WithCatalog(catalog),
		engine.WithPercentiles(cfg.Percentiles),
	}, nil
}

// runOnce aggregates each capture in order and writes one JSON report per
// line to out. It stops at the first failure.
func runOnce(ctx context.Context, cfg *config.Config, log logger.Logger, engineOpts []engine.Option, files []string, out io.Writer) error {
	w := output.New(cfg.OutputDir, output.WithHeatmap(cfg.Heatmap), output.WithLogger(log))
	pipeline := service.NewPipeline(w, nil, nil, log, engineOpts...)

	enc := json.NewEncoder(out)
	for _, path := range files {
		rep, err := runFile(ctx, pipeline, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := enc.Encode(rep); err != nil {
			return err
		}
	}
	return nil
}

func runFile(ctx context.Context, p *service.Pipeline, path string) (*service.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Run(ctx, f)
}

func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreBadger:
		s, err := repository.OpenBadgerStore(ctx, cfg.StorePath, repository.WithLogger(log.Named("store")))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return repository.NewMemoryStore(repository.WithLogger(log.Named("store"))), nil
	}
}

func serve(ctx context.Context, cfg *config.Config, log logger.Logger, engineOpts []engine.Option) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithStore(store),
		service.WithOutputDir(cfg.OutputDir),
		service.WithHeatmap(cfg.Heatmap),
		service.WithEngineOptions(engineOpts...),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	router := api.NewServer(svc,
		api.WithLogger(log.Named("http")),
		api.WithMaxLimit(cfg.MaxLeaderboardLimit),
		api.WithSubmitRate(cfg.SubmitRatePerMin),
	).Router()
	swagger.Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// startServiceMetricsUpdater refreshes the service gauges until ctx ends.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

func updateServiceMetrics(ctx context.Context, svc *service.Service) {
	st := svc.Stats(ctx)
	metrics.UpdateWorkerCount(st.Workers)
	metrics.UpdateQueueCapacity(st.QueueCapacity)
	if st.QueueCapacity > 0 {
		metrics.UpdateQueueUtilization(float64(st.QueueLength) / float64(st.QueueCapacity))
	}
}
