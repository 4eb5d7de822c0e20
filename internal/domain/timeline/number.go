package timeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/replaystats/internal/domain/model"
)

// Number is a float rendered with a fixed number of decimals.
type Number struct {
	Value    float64
	Decimals int
}

// Round wraps v for output with d decimals.
func Round(v float64, d int) Number { return Number{Value: v, Decimals: d} }

// String renders the rounded value. Negative zero prints as 0 and
// non-finite values print as 0.
func (n Number) String() string {
	if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		n.Value = 0
	}
	s := strconv.FormatFloat(n.Value, 'f', n.Decimals, 64)
	if s[0] == '-' {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == 0 {
			return s[1:]
		}
	}
	return s
}

// MarshalJSON renders the number unquoted.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.String()), nil
}

// Vec renders a position as three rounded coordinates.
func Vec(v model.Vector, d int) []Number {
	return []Number{Round(v.X, d), Round(v.Y, d), Round(v.Z, d)}
}

// Dir renders a direction as whole-degree [pitch, yaw].
func Dir(v model.Vector) []Number {
	r := model.DirectionToRotator(v)
	return []Number{Round(r.Pitch, 0), Round(r.Yaw, 0)}
}

// UnmarshalJSON reads a JSON number and keeps its decimal count.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(b)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	n.Value = v
	n.Decimals = 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		n.Decimals = len(s) - i - 1
	}
	return nil
}
