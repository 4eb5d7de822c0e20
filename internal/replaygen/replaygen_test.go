package replaygen_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/okian/replaystats/internal/adapters/replay"
	"github.com/okian/replaystats/internal/replaygen"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given a generated match", t, func() {
		m, err := replaygen.Generate(7, 500, 4, 600, "Outpost")
		So(err, ShouldBeNil)

		Convey("It has one tick per stamp and ends on the last", func() {
			So(m.Ticks, ShouldHaveLength, 600)
			So(m.Ticks[len(m.Ticks)-1].End, ShouldBeTrue)
			So(m.Ticks[0].End, ShouldBeFalse)
			So(m.Joins, ShouldHaveLength, 4)
			So(m.Expected.GameID, ShouldEqual, "500")
			So(m.Expected.Kills, ShouldHaveLength, 4)
			So(m.Expected.Spawns, ShouldEqual, m.Expected.Eliminations)
			So(m.Expected.Winner, ShouldNotBeEmpty)
		})

		Convey("The same seed yields the same capture", func() {
			again, err := replaygen.Generate(7, 500, 4, 600, "Outpost")
			So(err, ShouldBeNil)

			var a, b bytes.Buffer
			_, err = m.WriteTo(&a)
			So(err, ShouldBeNil)
			_, err = again.WriteTo(&b)
			So(err, ShouldBeNil)
			So(a.String(), ShouldEqual, b.String())
		})

		Convey("The capture decodes cleanly", func() {
			var buf bytes.Buffer
			n, err := m.WriteTo(&buf)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, int64(buf.Len()))

			d, err := replay.NewDecoder(&buf)
			So(err, ShouldBeNil)
			So(d.Setup().Header.GameID, ShouldEqual, 500)
			So(d.Setup().Joins, ShouldHaveLength, 4)
			So(d.Setup().DeviceProfiles, ShouldHaveLength, 4)

			for {
				_, err := d.Next(context.Background())
				if errors.Is(err, io.EOF) {
					break
				}
				So(err, ShouldBeNil)
			}
			So(d.Ticks(), ShouldEqual, 600)
		})
	})

	Convey("Invalid sizes are rejected", t, func() {
		_, err := replaygen.Generate(1, 1, 1, 10, "Outpost")
		So(err, ShouldNotBeNil)
		_, err = replaygen.Generate(1, 1, 2, 0, "Outpost")
		So(err, ShouldNotBeNil)
	})
}

func TestVerify(t *testing.T) {
	Convey("Given expected totals", t, func() {
		winner := "player01"
		exp := replaygen.Expected{
			GameID:       "9",
			Eliminations: 2,
			Spawns:       2,
			Kills:        map[string]uint64{"player01": 2, "player02": 0},
			Deaths:       map[string]uint64{"player01": 0, "player02": 2},
			Winner:       winner,
		}
		got := &replaygen.SummaryView{
			GameID:            "9",
			TotalEliminations: 2,
			TotalSpawns:       2,
			Winner:            &winner,
		}
		got.Players = map[string]struct {
			Kills  uint64 `json:"Kills"`
			Deaths uint64 `json:"Deaths"`
		}{
			"player01": {Kills: 2},
			"player02": {Deaths: 2},
		}

		Convey("A matching summary has no diffs", func() {
			So(replaygen.Verify(exp, got), ShouldBeEmpty)
		})

		Convey("Wrong totals are reported", func() {
			got.TotalEliminations = 3
			delete(got.Players, "player02")
			diffs := replaygen.Verify(exp, got)
			So(diffs, ShouldHaveLength, 2)
		})
	})
}
