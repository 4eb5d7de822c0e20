package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/okian/replaystats/internal/adapters/mq/queue"
	"github.com/okian/replaystats/internal/adapters/output"
	"github.com/okian/replaystats/internal/adapters/replay"
	"github.com/okian/replaystats/internal/adapters/repository"
	service "github.com/okian/replaystats/internal/app"
	"github.com/okian/replaystats/internal/domain/dedupe"
	"github.com/okian/replaystats/internal/domain/engine"
	"github.com/okian/replaystats/internal/domain/model"
	"github.com/okian/replaystats/internal/replaygen"
	"github.com/okian/replaystats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func capture(seed, gameID uint64) (*replaygen.Match, []byte) {
	m, err := replaygen.Generate(seed, gameID, 4, 900, "Outpost")
	So(err, ShouldBeNil)
	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	So(err, ShouldBeNil)
	return m, buf.Bytes()
}

func TestPipeline(t *testing.T) {
	Convey("Given a pipeline with a writer, a store and a deduper", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		store := repository.NewMemoryStore()
		p := service.NewPipeline(
			output.New(dir, output.WithHeatmap(true)),
			store,
			dedupe.NewInMemoryDeduper(),
			logger.Discard(),
			engine.WithPercentiles(true),
		)

		m, data := capture(3, 4242)

		Convey("When a generated capture runs", func() {
			rep, err := p.Run(ctx, bytes.NewReader(data))
			So(err, ShouldBeNil)

			Convey("Then the report lists the written artifacts", func() {
				So(rep.GameID, ShouldEqual, "4242")
				So(rep.Ticks, ShouldEqual, 900)
				kinds := map[string]bool{}
				for _, a := range rep.Artifacts {
					kinds[a.Kind] = true
					_, err := os.Stat(a.Path)
					So(err, ShouldBeNil)
				}
				So(kinds[output.ArtifactSummary], ShouldBeTrue)
				So(kinds[output.ArtifactDensity], ShouldBeTrue)
				So(kinds[output.ArtifactHeatmap], ShouldBeTrue)
				So(kinds[output.ArtifactPlayerUpdate], ShouldBeTrue)
			})

			Convey("Then the stored summary matches the generator's totals", func() {
				stored, err := store.Get(ctx, "4242")
				So(err, ShouldBeNil)
				So(stored.Map, ShouldEqual, "Outpost")
				So(stored.Mode, ShouldEqual, "FFA")

				var got replaygen.SummaryView
				So(json.Unmarshal(stored.Summary, &got), ShouldBeNil)
				So(replaygen.Verify(m.Expected, &got), ShouldBeEmpty)

				for name, kills := range m.Expected.Kills {
					So(stored.Players[name].Kills, ShouldEqual, kills)
				}
			})

			Convey("Then the same game is rejected as a duplicate", func() {
				_, err := p.Run(ctx, bytes.NewReader(data))
				So(errors.Is(err, service.ErrDuplicateReplay), ShouldBeTrue)
			})
		})

		Convey("When a device profile arrives after the last tick", func() {
			var buf bytes.Buffer
			buf.Write(data)
			enc := replay.NewEncoder(&buf)
			So(enc.DeviceProfile(replay.DeviceProfileRecord{Profile: model.DeviceProfile{Username: "latecomer"}}), ShouldBeNil)
			So(enc.Flush(), ShouldBeNil)

			_, err := p.Run(ctx, bytes.NewReader(buf.Bytes()))
			So(err, ShouldBeNil)

			Convey("Then it is kept in the summary", func() {
				stored, err := store.Get(ctx, "4242")
				So(err, ShouldBeNil)
				var sum struct {
					DeviceProfiles []model.DeviceProfile `json:"DeviceProfiles"`
				}
				So(json.Unmarshal(stored.Summary, &sum), ShouldBeNil)
				names := make([]string, 0, len(sum.DeviceProfiles))
				for _, dp := range sum.DeviceProfiles {
					names = append(names, dp.Username)
				}
				So(names, ShouldContain, "latecomer")
			})
		})

		Convey("When a capture is malformed", func() {
			_, err := p.Run(ctx, strings.NewReader("not json\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("When a capture never reaches its end condition", func() {
			m.Ticks[len(m.Ticks)-1].End = false
			m.Ticks[len(m.Ticks)-1].Outcome = nil
			var buf bytes.Buffer
			_, err := m.WriteTo(&buf)
			So(err, ShouldBeNil)

			_, err = p.Run(ctx, bytes.NewReader(buf.Bytes()))
			So(errors.Is(err, engine.ErrEndConditionNotReached), ShouldBeTrue)

			Convey("Then the game id is released for a retry", func() {
				_, err := p.Run(ctx, bytes.NewReader(data))
				So(err, ShouldBeNil)
			})
		})

		Convey("When a job file is processed", func() {
			path := filepath.Join(t.TempDir(), "job.jsonl")
			So(os.WriteFile(path, data, 0o644), ShouldBeNil)
			So(p.Process(ctx, queue.Job{ID: "job-1", Path: path}), ShouldBeNil)
			So(store.Count(ctx), ShouldEqual, 1)

			So(p.Process(ctx, queue.Job{ID: "job-2", Path: filepath.Join(dir, "missing.jsonl")}), ShouldNotBeNil)
		})
	})
}
