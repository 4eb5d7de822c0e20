package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/replaystats/internal/adapters/repository"
	service "github.com/okian/replaystats/internal/app"
	"github.com/okian/replaystats/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func waitForMatch(ctx context.Context, svc *service.Service, gameID string) (repository.Match, error) {
	deadline := time.Now().Add(5 * time.Second)
	for {
		m, err := svc.Match(ctx, gameID)
		if err == nil || !errors.Is(err, repository.ErrNotFound) || time.Now().After(deadline) {
			return m, err
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestService_NotStarted(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithOutputDir(t.TempDir()))

		Convey("Then submissions and queries fail", func() {
			_, err := svc.Submit(ctx, strings.NewReader("{}"))
			So(err, ShouldEqual, service.ErrNotStarted)
			_, err = svc.Matches(ctx, 10)
			So(err, ShouldEqual, service.ErrNotStarted)
			_, err = svc.Leaderboard(ctx, 10)
			So(err, ShouldEqual, service.ErrNotStarted)
			So(svc.Stats(ctx).Started, ShouldBeFalse)
		})

		Convey("Then Stop is a no-op", func() {
			svc.Stop()
		})
	})
}

func TestService_EndToEnd(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(8),
			service.WithDedupeSize(100),
			service.WithOutputDir(t.TempDir()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		st := svc.Stats(ctx)
		So(st.Started, ShouldBeTrue)
		So(st.Workers, ShouldEqual, 2)
		So(st.QueueCapacity, ShouldEqual, 8)

		Convey("When two replays are submitted", func() {
			m1, d1 := capture(11, 901)
			m2, d2 := capture(12, 902)

			j1, err := svc.Submit(ctx, bytes.NewReader(d1))
			So(err, ShouldBeNil)
			So(j1.ID, ShouldNotBeEmpty)
			_, err = svc.Submit(ctx, bytes.NewReader(d2))
			So(err, ShouldBeNil)

			Convey("Then both matches become queryable", func() {
				_, err := waitForMatch(ctx, svc, "901")
				So(err, ShouldBeNil)
				_, err = waitForMatch(ctx, svc, "902")
				So(err, ShouldBeNil)

				list, err := svc.Matches(ctx, 10)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 2)

				Convey("And careers sum both matches", func() {
					top, err := svc.Leaderboard(ctx, 100)
					So(err, ShouldBeNil)
					So(len(top), ShouldBeGreaterThan, 0)

					c, err := svc.Player(ctx, "player01")
					So(err, ShouldBeNil)
					So(c.Matches, ShouldEqual, 2)
					So(c.Kills, ShouldEqual, m1.Expected.Kills["player01"]+m2.Expected.Kills["player01"])
				})

				Convey("And stats report them", func() {
					So(svc.Stats(ctx).Matches, ShouldEqual, 2)
					So(svc.Stats(ctx).SeenReplays, ShouldEqual, 2)
				})
			})
		})
	})
}
