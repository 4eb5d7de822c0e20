package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/smartystreets/goconvey/convey"

	service "github.com/okian/replaystats/internal/app"
	"github.com/okian/replaystats/internal/config"
	"github.com/okian/replaystats/internal/replaygen"
	"github.com/okian/replaystats/pkg/logger"
)

func writeCapture(t *testing.T, dir string, seed, gameID uint64) string {
	t.Helper()
	m, err := replaygen.Generate(seed, gameID, 3, 600, "Outpost")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	path := filepath.Join(dir, "capture.jsonl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if _, err := m.WriteTo(f); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given REPLAYSTATS_ environment variables", t, func() {
		t.Setenv("REPLAYSTATS_ADDR", ":8080")
		t.Setenv("REPLAYSTATS_QUEUE_SIZE", "64")
		t.Setenv("REPLAYSTATS_WORKER_COUNT", "4")

		convey.Convey("Then the configuration picks them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
		})
	})
}

func TestEngineOptions(t *testing.T) {
	convey.Convey("Given a default configuration", t, func() {
		cfg := config.New()

		convey.Convey("Then engine options are built", func() {
			opts, err := engineOptions(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(opts, convey.ShouldHaveLength, 4)
		})

		convey.Convey("When a configured map has invalid bounds", func() {
			cfg.Maps["Broken"] = config.MapBounds{Size: [3]float64{100, 100, 100}, Resolution: 0}

			convey.Convey("Then building options fails", func() {
				_, err := engineOptions(cfg)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a configured map is valid", func() {
			cfg.Maps["Arena"] = config.MapBounds{Origin: [3]float64{-500, -500, -500}, Size: [3]float64{1000, 1000, 1000}, Resolution: 100}

			convey.Convey("Then building options succeeds", func() {
				_, err := engineOptions(cfg)
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestRunOnce(t *testing.T) {
	convey.Convey("Given a capture on disk", t, func() {
		dir := t.TempDir()
		path := writeCapture(t, dir, 11, 5150)

		cfg := config.New()
		cfg.OutputDir = filepath.Join(dir, "out")
		cfg.Heatmap = true
		opts, err := engineOptions(cfg)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When it is processed in one-shot mode", func() {
			var out bytes.Buffer
			err := runOnce(context.Background(), cfg, logger.Discard(), opts, []string{path}, &out)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then a report is printed and the summary is written", func() {
				var rep service.Report
				convey.So(json.Unmarshal(out.Bytes(), &rep), convey.ShouldBeNil)
				convey.So(rep.GameID, convey.ShouldEqual, "5150")
				convey.So(rep.Map, convey.ShouldEqual, "Outpost")
				convey.So(rep.Ticks, convey.ShouldEqual, 600)

				_, err := os.Stat(filepath.Join(cfg.OutputDir, "Match_g5150.json"))
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a file is missing", func() {
			var out bytes.Buffer
			err := runOnce(context.Background(), cfg, logger.Discard(), opts, []string{filepath.Join(dir, "missing.jsonl")}, &out)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(out.Len(), convey.ShouldEqual, 0)
		})
	})
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given store configurations", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("The memory store is the default", func() {
			s, err := openStore(ctx, cfg, logger.Discard())
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.Count(ctx), convey.ShouldEqual, 0)
			convey.So(s.Close(), convey.ShouldBeNil)
		})

		convey.Convey("The badger store opens at the configured path", func() {
			cfg.Store = config.StoreBadger
			cfg.StorePath = t.TempDir()
			s, err := openStore(ctx, cfg, logger.Discard())
			convey.So(err, convey.ShouldBeNil)
			convey.So(s.Count(ctx), convey.ShouldEqual, 0)
			convey.So(s.Close(), convey.ShouldBeNil)
		})
	})
}
