package volume

import (
	"math"

	"github.com/okian/replaystats/internal/domain/model"
)

// Transform places the volume's local frame in the world.
type Transform struct {
	Translation model.Vector
	Rotation    model.Rotator
}

// InverseTransformPosition maps a world position into the local frame.
func (t Transform) InverseTransformPosition(p model.Vector) model.Vector {
	d := p.Sub(t.Translation)
	if t.Rotation == (model.Rotator{}) {
		return d
	}
	x, y, z := t.axes()
	return model.Vector{X: d.Dot(x), Y: d.Dot(y), Z: d.Dot(z)}
}

// TransformPosition maps a local position into the world.
func (t Transform) TransformPosition(p model.Vector) model.Vector {
	if t.Rotation == (model.Rotator{}) {
		return p.Add(t.Translation)
	}
	x, y, z := t.axes()
	return x.Scale(p.X).Add(y.Scale(p.Y)).Add(z.Scale(p.Z)).Add(t.Translation)
}

// axes returns the rotated local X, Y and Z unit axes.
func (t Transform) axes() (x, y, z model.Vector) {
	const rad = math.Pi / 180
	sp, cp := math.Sincos(t.Rotation.Pitch * rad)
	sy, cy := math.Sincos(t.Rotation.Yaw * rad)
	sr, cr := math.Sincos(t.Rotation.Roll * rad)

	x = model.Vector{X: cp * cy, Y: cp * sy, Z: sp}
	y = model.Vector{X: sr*sp*cy - cr*sy, Y: sr*sp*sy + cr*cy, Z: -sr * cp}
	z = model.Vector{X: -(cr*sp*cy + sr*sy), Y: cy*sr - cr*sp*sy, Z: cr * cp}
	return x, y, z
}
