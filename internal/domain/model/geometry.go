package model

import "math"

// Vector is a position or direction in world units.
type Vector struct {
	X, Y, Z float64
}

// Add returns v+o.
func (v Vector) Add(o Vector) Vector { return Vector{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vector) Sub(o Vector) Vector { return Vector{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v*s.
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product.
func (v Vector) Dot(o Vector) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Length returns the euclidean norm.
func (v Vector) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Dist returns the distance between two points.
func (v Vector) Dist(o Vector) float64 { return v.Sub(o).Length() }

// IsZero reports whether every component is exactly zero.
func (v Vector) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Rotator is an orientation in degrees.
type Rotator struct {
	Pitch, Yaw, Roll float64
}

const degToRad = math.Pi / 180

// Vector returns the unit forward direction of r. Roll does not affect it.
func (r Rotator) Vector() Vector {
	sp, cp := math.Sincos(r.Pitch * degToRad)
	sy, cy := math.Sincos(r.Yaw * degToRad)
	return Vector{X: cp * cy, Y: cp * sy, Z: sp}
}

// DirectionToRotator returns the pitch and yaw that point along d. Roll is
// always zero. A zero vector yields a zero rotator.
func DirectionToRotator(d Vector) Rotator {
	if d.IsZero() {
		return Rotator{}
	}
	return Rotator{
		Pitch: math.Atan2(d.Z, math.Hypot(d.X, d.Y)) / degToRad,
		Yaw:   math.Atan2(d.Y, d.X) / degToRad,
	}
}

// Axis is the direction option chosen for a dash.
type Axis uint8

// Dash axes.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisNegX
	AxisNegY
	AxisNegZ
	AxisCustom
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	case AxisNegX:
		return "-X"
	case AxisNegY:
		return "-Y"
	case AxisNegZ:
		return "-Z"
	default:
		return "CUSTOM"
	}
}

// ParseAxis is the inverse of Axis.String. Unknown names map to AxisCustom.
func ParseAxis(s string) Axis {
	switch s {
	case "X":
		return AxisX
	case "Y":
		return AxisY
	case "Z":
		return AxisZ
	case "-X":
		return AxisNegX
	case "-Y":
		return AxisNegY
	case "-Z":
		return AxisNegZ
	default:
		return AxisCustom
	}
}
