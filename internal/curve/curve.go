// Package curve implements the keyframed height curve applied to normalized heights before meshing.
package curve

import (
	"errors"
	"fmt"

	tmath "github.com/Faultbox/tilegen/pkg/math"
)

var ErrUnsortedKeys = errors.New("curve keys must have ascending input")

// Interpolation selects how values between two keys are blended.
type Interpolation int

const (
	Linear Interpolation = iota
	Smooth
)

func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "linear"
	case Smooth:
		return "smooth"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (i Interpolation) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Interpolation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "linear", "":
		*i = Linear
	case "smooth":
		*i = Smooth
	default:
		return fmt.Errorf("unknown interpolation %q", text)
	}
	return nil
}

// Key maps an input height to an output height.
type Key struct {
	In  float64 `yaml:"in"`
	Out float64 `yaml:"out"`
}

// Curve is an immutable keyframed mapping. The zero value is the identity.
type Curve struct {
	Keys          []Key         `yaml:"keys"`
	Interpolation Interpolation `yaml:"interpolation"`
}

// Identity returns the empty curve.
func Identity() Curve {
	return Curve{}
}

// New builds a curve and validates key order.
func New(interp Interpolation, keys ...Key) (Curve, error) {
	c := Curve{Keys: append([]Key(nil), keys...), Interpolation: interp}
	if err := c.Validate(); err != nil {
		return Curve{}, err
	}
	return c, nil
}

// Validate checks that key inputs are strictly ascending.
func (c Curve) Validate() error {
	for i := 1; i < len(c.Keys); i++ {
		if c.Keys[i].In <= c.Keys[i-1].In {
			return fmt.Errorf("%w: key %d (%.3f) after %.3f", ErrUnsortedKeys, i, c.Keys[i].In, c.Keys[i-1].In)
		}
	}
	return nil
}

// IsIdentity reports whether the curve has no keys.
func (c Curve) IsIdentity() bool {
	return len(c.Keys) == 0
}

// Evaluate maps t through the curve. Without keys it returns t unchanged;
// outside the key range it holds the first or last output.
func (c Curve) Evaluate(t float64) float64 {
	keys := c.Keys
	switch {
	case len(keys) == 0:
		return t
	case t <= keys[0].In:
		return keys[0].Out
	case t >= keys[len(keys)-1].In:
		return keys[len(keys)-1].Out
	}

	// Key counts are small; a linear scan beats a binary search here.
	i := 1
	for i < len(keys)-1 && t >= keys[i].In {
		i++
	}
	a, b := keys[i-1], keys[i]
	f := (t - a.In) / (b.In - a.In)
	if c.Interpolation == Smooth {
		f = tmath.SmoothStep(f)
	}
	return tmath.Lerp(a.Out, b.Out, f)
}
