// Package falloff generates edge-shaping masks that bias a tile's border toward a target elevation.
package falloff

import (
	"fmt"
	"math"

	"github.com/Faultbox/tilegen/internal/grid"
	tmath "github.com/Faultbox/tilegen/pkg/math"
)

// Shape selects the distance metric of the mask.
type Shape int

const (
	// ShapeRadial uses Euclidean distance from the center: ~0 in the middle, 1 at the corners.
	ShapeRadial Shape = iota
	// ShapeSquare uses Chebyshev distance: the whole border reaches 1, not only the corners.
	ShapeSquare
)

func (s Shape) String() string {
	switch s {
	case ShapeRadial:
		return "radial"
	case ShapeSquare:
		return "square"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(text []byte) error {
	switch string(text) {
	case "radial", "inverse", "":
		*s = ShapeRadial
	case "square", "edge":
		*s = ShapeSquare
	default:
		return fmt.Errorf("unknown falloff shape %q", text)
	}
	return nil
}

// Params controls the steepness curve v^a / (v^a + (b - b*v)^a).
type Params struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
}

// DefaultParams returns a=3, b=2.2.
func DefaultParams() Params {
	return Params{A: 3, B: 2.2}
}

// Evaluate reshapes v in [0, 1], pushing mid-range values toward 0 or 1.
func Evaluate(v float64, p Params) float64 {
	va := math.Pow(v, p.A)
	denom := va + math.Pow(p.B-p.B*v, p.A)
	if denom == 0 {
		return 0
	}
	return va / denom
}

// Generate builds a size×size mask. It is a pure function of its arguments.
func Generate(size int, shape Shape, p Params) *grid.Field {
	mask := grid.New(size, size)
	if size <= 0 {
		return mask
	}

	span := float64(size - 1)
	if span == 0 {
		span = 1
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := float64(x)/span*2 - 1
			j := float64(y)/span*2 - 1

			var d float64
			switch shape {
			case ShapeSquare:
				d = max(math.Abs(i), math.Abs(j))
			default:
				d = math.Sqrt(i*i + j*j)
			}

			mask.Set(x, y, Evaluate(tmath.Clamp01(d), p))
		}
	}
	return mask
}
