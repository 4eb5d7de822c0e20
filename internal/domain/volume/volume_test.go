package volume_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/okian/replaystats/internal/domain/model"
	"github.com/okian/replaystats/internal/domain/volume"
	. "github.com/smartystreets/goconvey/convey"
)

func TestVolume(t *testing.T) {
	Convey("Given a 100x50x30 volume at origin (-50,0,10) with 10 unit cells", t, func() {
		v, err := volume.New(
			volume.Transform{Translation: model.Vector{X: -50, Y: 0, Z: 10}},
			model.Vector{X: 100, Y: 50, Z: 30}, 10,
		)
		So(err, ShouldBeNil)

		Convey("Dims are the ceiling of extent over resolution", func() {
			So(v.Dims(), ShouldResemble, [3]int32{10, 5, 3})
		})

		Convey("A point on the lower bound lands in cell 0", func() {
			So(v.AddPoint(model.Vector{X: -50, Y: 0, Z: 10}), ShouldBeTrue)
			So(v.Count(0, 0, 0), ShouldEqual, 1)
		})

		Convey("A point just under the extent lands in the last cell", func() {
			So(v.AddPoint(model.Vector{X: 49.999, Y: 49.999, Z: 39.999}), ShouldBeTrue)
			So(v.Count(9, 4, 2), ShouldEqual, 1)
		})

		Convey("Points at or beyond the extent are dropped", func() {
			So(v.AddPoint(model.Vector{X: 50, Y: 10, Z: 20}), ShouldBeFalse)
			So(v.AddPoint(model.Vector{X: 0, Y: 50, Z: 20}), ShouldBeFalse)
			So(v.AddPoint(model.Vector{X: 0, Y: 10, Z: 40}), ShouldBeFalse)
			So(v.AddPoint(model.Vector{X: -50.001, Y: 10, Z: 20}), ShouldBeFalse)
			So(v.Total(), ShouldEqual, 0)
		})

		Convey("Non-finite points are dropped", func() {
			So(v.AddPoint(model.Vector{X: math.NaN(), Y: 10, Z: 20}), ShouldBeFalse)
			So(v.AddPoint(model.Vector{X: 0, Y: math.NaN(), Z: 20}), ShouldBeFalse)
			So(v.AddPoint(model.Vector{X: 0, Y: 10, Z: math.NaN()}), ShouldBeFalse)
			So(v.AddPoint(model.Vector{X: math.Inf(1), Y: 10, Z: 20}), ShouldBeFalse)
			So(v.AddPoint(model.Vector{X: math.Inf(-1), Y: 10, Z: 20}), ShouldBeFalse)
			So(v.Total(), ShouldEqual, 0)
		})

		Convey("Serialization is deterministic and decodable", func() {
			v.AddPoint(model.Vector{X: -45, Y: 5, Z: 15})
			v.AddPoint(model.Vector{X: -45, Y: 5, Z: 15})
			v.AddPoint(model.Vector{X: 25, Y: 35, Z: 35})

			a := v.Serialize()
			b := v.Serialize()
			So(bytes.Equal(a, b), ShouldBeTrue)
			So(len(a), ShouldEqual, 12+4*10*5*3)
			// dims are little-endian int32
			So(a[:4], ShouldResemble, []byte{10, 0, 0, 0})

			g, err := volume.Decode(a)
			So(err, ShouldBeNil)
			So(g.Dims, ShouldResemble, v.Dims())
			So(g.At(0, 0, 0), ShouldEqual, 2)
			So(g.At(7, 3, 2), ShouldEqual, 1)
			// X varies fastest
			So(g.Cells[0], ShouldEqual, 2)
			So(g.Cells[7+10*(3+5*2)], ShouldEqual, 1)
		})

		Convey("Truncated data fails to decode", func() {
			_, err := volume.Decode(v.Serialize()[:20])
			So(errors.Is(err, volume.ErrCorrupt), ShouldBeTrue)
		})
	})

	Convey("Given invalid bounds", t, func() {
		_, err := volume.New(volume.Transform{}, model.Vector{X: 1, Y: 1, Z: 0}, 1)
		So(errors.Is(err, volume.ErrInvalidBounds), ShouldBeTrue)
		_, err = volume.New(volume.Transform{}, model.Vector{X: 1, Y: 1, Z: 1}, 0)
		So(errors.Is(err, volume.ErrInvalidBounds), ShouldBeTrue)
	})

	Convey("Given a rotated transform", t, func() {
		tr := volume.Transform{Translation: model.Vector{X: 100}, Rotation: model.Rotator{Yaw: 90}}
		local := tr.InverseTransformPosition(model.Vector{X: 100, Y: 10})
		So(local.X, ShouldAlmostEqual, 10, 1e-9)
		So(local.Y, ShouldAlmostEqual, 0, 1e-9)
		back := tr.TransformPosition(local)
		So(back.X, ShouldAlmostEqual, 100, 1e-9)
		So(back.Y, ShouldAlmostEqual, 10, 1e-9)
	})
}

func TestCatalog(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := volume.DefaultCatalog()

		Convey("Known maps resolve", func() {
			b, err := c.Lookup("Stadium")
			So(err, ShouldBeNil)
			So(b.Resolution, ShouldEqual, 100)
			v, err := b.Volume()
			So(err, ShouldBeNil)
			So(v.Dims(), ShouldResemble, [3]int32{117, 116, 90})
			So(len(c.Names()), ShouldEqual, 4)
		})

		Convey("Prison keeps its tall Z extent", func() {
			b, err := c.Lookup("Prison")
			So(err, ShouldBeNil)
			So(b.Size.Z, ShouldEqual, 3500)
		})

		Convey("Unknown maps are a configuration gap", func() {
			_, err := c.Lookup("Moonbase")
			So(errors.Is(err, volume.ErrUnknownMap), ShouldBeTrue)
		})

		Convey("Extra entries are validated", func() {
			ext, err := c.With(volume.Bounds{Name: "Arena", Size: model.Vector{X: 10, Y: 10, Z: 10}, Resolution: 5})
			So(err, ShouldBeNil)
			_, err = ext.Lookup("Arena")
			So(err, ShouldBeNil)
			_, err = c.Lookup("Arena")
			So(err, ShouldNotBeNil)

			_, err = c.With(volume.Bounds{Name: "Bad", Size: model.Vector{X: 10, Y: 10, Z: 10}})
			So(errors.Is(err, volume.ErrInvalidBounds), ShouldBeTrue)
		})
	})
}
