// Package volume accumulates position visits in a bounded 3D grid.
package volume

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/okian/replaystats/internal/domain/model"
)

// Volume is a dense count-per-cell grid over a bounded region.
type Volume struct {
	transform  Transform
	extent     model.Vector
	resolution float64
	dims       [3]int32
	cells      []uint32
	total      uint64
}

// New allocates a volume covering [0, extent) in the transform's frame with
// cubic cells of edge resolution.
func New(t Transform, extent model.Vector, resolution float64) (*Volume, error) {
	if resolution <= 0 || extent.X <= 0 || extent.Y <= 0 || extent.Z <= 0 {
		return nil, fmt.Errorf("%w: extent %v resolution %v", ErrInvalidBounds, extent, resolution)
	}
	v := &Volume{transform: t, extent: extent, resolution: resolution}
	v.dims = [3]int32{
		int32(math.Ceil(extent.X / resolution)),
		int32(math.Ceil(extent.Y / resolution)),
		int32(math.Ceil(extent.Z / resolution)),
	}
	v.cells = make([]uint32, int(v.dims[0])*int(v.dims[1])*int(v.dims[2]))
	return v, nil
}

// AddPoint counts a world position. Points outside the region, including
// non-finite ones, are dropped and AddPoint reports false.
func (v *Volume) AddPoint(p model.Vector) bool {
	local := v.transform.InverseTransformPosition(p)
	// Written as negated in-range checks so NaN coordinates fail them.
	if !(local.X >= 0 && local.X < v.extent.X) ||
		!(local.Y >= 0 && local.Y < v.extent.Y) ||
		!(local.Z >= 0 && local.Z < v.extent.Z) {
		return false
	}
	ix := int32(math.Floor(local.X / v.resolution))
	iy := int32(math.Floor(local.Y / v.resolution))
	iz := int32(math.Floor(local.Z / v.resolution))
	if ix < 0 || iy < 0 || iz < 0 || ix >= v.dims[0] || iy >= v.dims[1] || iz >= v.dims[2] {
		return false
	}
	v.cells[v.index(ix, iy, iz)]++
	v.total++
	return true
}

func (v *Volume) index(x, y, z int32) int {
	return int(x) + int(v.dims[0])*(int(y)+int(v.dims[1])*int(z))
}

// Dims returns the cell counts along X, Y and Z.
func (v *Volume) Dims() [3]int32 { return v.dims }

// Resolution returns the cell edge length.
func (v *Volume) Resolution() float64 { return v.resolution }

// Count returns the visits of one cell; out-of-range cells report 0.
func (v *Volume) Count(x, y, z int32) uint32 {
	if x < 0 || y < 0 || z < 0 || x >= v.dims[0] || y >= v.dims[1] || z >= v.dims[2] {
		return 0
	}
	return v.cells[v.index(x, y, z)]
}

// Total returns the number of accepted points.
func (v *Volume) Total() uint64 { return v.total }

// Serialize returns the little-endian dims (int32 x3) followed by every cell
// count (uint32) with X varying fastest.
func (v *Volume) Serialize() []byte {
	var buf bytes.Buffer
	buf.Grow(12 + 4*len(v.cells))
	_, _ = v.WriteTo(&buf)
	return buf.Bytes()
}

// WriteTo streams the serialized form to w.
func (v *Volume) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, v.dims); err != nil {
		return 0, err
	}
	if err := binary.Write(w, binary.LittleEndian, v.cells); err != nil {
		return 12, err
	}
	return int64(12 + 4*len(v.cells)), nil
}

// Grid is a decoded volume.
type Grid struct {
	Dims  [3]int32
	Cells []uint32
}

// At returns the count of one cell.
func (g Grid) At(x, y, z int32) uint32 {
	return g.Cells[int(x)+int(g.Dims[0])*(int(y)+int(g.Dims[1])*int(z))]
}

// Decode parses the output of Serialize.
func Decode(b []byte) (Grid, error) {
	var g Grid
	r := bytes.NewReader(b)
	if err := binary.Read(r, binary.LittleEndian, &g.Dims); err != nil {
		return Grid{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if g.Dims[0] <= 0 || g.Dims[1] <= 0 || g.Dims[2] <= 0 {
		return Grid{}, fmt.Errorf("%w: dims %v", ErrCorrupt, g.Dims)
	}
	n := int(g.Dims[0]) * int(g.Dims[1]) * int(g.Dims[2])
	if r.Len() != 4*n {
		return Grid{}, fmt.Errorf("%w: want %d cell bytes, have %d", ErrCorrupt, 4*n, r.Len())
	}
	g.Cells = make([]uint32, n)
	if err := binary.Read(r, binary.LittleEndian, g.Cells); err != nil {
		return Grid{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return g, nil
}
