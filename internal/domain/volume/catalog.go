package volume

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/okian/replaystats/internal/domain/model"
)

// Bounds is the density configuration of one map.
type Bounds struct {
	Name       string       `validate:"required"`
	Origin     model.Vector `validate:"-"`
	Size       model.Vector `validate:"-"`
	Resolution float64      `validate:"gt=0"`
}

// Volume allocates an empty volume for the bounds.
func (b Bounds) Volume() (*Volume, error) {
	return New(Transform{Translation: b.Origin}, b.Size, b.Resolution)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that the bounds describe a non-empty region.
func (b Bounds) Validate() error {
	if err := getValidator().Struct(b); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidBounds, b.Name, err)
	}
	if b.Size.X <= 0 || b.Size.Y <= 0 || b.Size.Z <= 0 {
		return fmt.Errorf("%w: %s: size %v", ErrInvalidBounds, b.Name, b.Size)
	}
	return nil
}

// Catalog maps map names to density bounds.
type Catalog struct {
	bounds map[string]Bounds
}

// DefaultCatalog returns the bounds of the shipped maps.
func DefaultCatalog() *Catalog {
	return &Catalog{bounds: map[string]Bounds{
		"Outpost": {
			Name:       "Outpost",
			Origin:     model.Vector{X: -3900, Y: -3800, Z: -1200},
			Size:       model.Vector{X: 3500 + 3900, Y: 1200 + 3800, Z: 3300 + 1200},
			Resolution: 50,
		},
		"Observatory": {
			Name:       "Observatory",
			Origin:     model.Vector{X: -7500, Y: -4100, Z: -600},
			Size:       model.Vector{X: 6700 + 7500, Y: 5000 + 4100, Z: 1200 + 600},
			Resolution: 50,
		},
		"Prison": {
			Name:   "Prison",
			Origin: model.Vector{X: -6500, Y: -2200, Z: -500},
			// Z extends 2200 above the upper floor.
			Size:       model.Vector{X: 4600 + 6500, Y: 4000 + 2200, Z: 1300 + 2200},
			Resolution: 50,
		},
		"Stadium": {
			Name:       "Stadium",
			Origin:     model.Vector{X: -2200, Y: -5000, Z: -4000},
			Size:       model.Vector{X: 9500 + 2200, Y: 6600 + 5000, Z: 5000 + 4000},
			Resolution: 100,
		},
	}}
}

// With returns a copy of c with extra entries added or replaced.
func (c *Catalog) With(extra ...Bounds) (*Catalog, error) {
	out := &Catalog{bounds: make(map[string]Bounds, len(c.bounds)+len(extra))}
	for k, v := range c.bounds {
		out.bounds[k] = v
	}
	for _, b := range extra {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		out.bounds[b.Name] = b
	}
	return out, nil
}

// Lookup returns the bounds for a map name.
func (c *Catalog) Lookup(name string) (Bounds, error) {
	b, ok := c.bounds[name]
	if !ok {
		return Bounds{}, fmt.Errorf("%w: %q", ErrUnknownMap, name)
	}
	return b, nil
}

// Names lists configured maps in no particular order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.bounds))
	for k := range c.bounds {
		out = append(out, k)
	}
	return out
}
