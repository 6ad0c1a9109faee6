package noise

import "fmt"

const (
	// MinScale replaces non-positive scales to avoid division by zero.
	MinScale = 0.0001

	// OffsetRange bounds the per-octave seed offsets to [-OffsetRange, OffsetRange].
	OffsetRange = 100000

	// GlobalEstimateFactor scales the analytic amplitude bound in GlobalEstimate mode.
	// Summed octaves rarely approach the bound, so a fraction of it is used.
	GlobalEstimateFactor = 0.9
)

// NormalizeMode selects how raw octave sums are remapped into [0, 1].
type NormalizeMode int

const (
	// NormalizeLocal remaps with the tile's own extrema. Not stitchable across tiles.
	NormalizeLocal NormalizeMode = iota
	// NormalizeGlobal remaps with an analytic amplitude estimate so tiles sharing a seed line up.
	NormalizeGlobal
)

func (m NormalizeMode) String() string {
	switch m {
	case NormalizeLocal:
		return "local"
	case NormalizeGlobal:
		return "global"
	default:
		return fmt.Sprintf("NormalizeMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m NormalizeMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *NormalizeMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "local", "":
		*m = NormalizeLocal
	case "global", "global_estimate":
		*m = NormalizeGlobal
	default:
		return fmt.Errorf("unknown normalize mode %q", text)
	}
	return nil
}

// Offset is a 2D position in grid cells.
type Offset struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Add returns o + other.
func (o Offset) Add(other Offset) Offset {
	return Offset{X: o.X + other.X, Y: o.Y + other.Y}
}

// Params holds the layered noise settings.
type Params struct {
	Seed        int64         `yaml:"seed"`
	Scale       float64       `yaml:"scale"`
	Octaves     int           `yaml:"octaves"`
	Persistence float64       `yaml:"persistence"`
	Lacunarity  float64       `yaml:"lacunarity"`
	Offset      Offset        `yaml:"offset"`
	Normalize   NormalizeMode `yaml:"normalize"`
	Kind        Kind          `yaml:"kind"`
}

// DefaultParams returns the settings of the reference island tile.
func DefaultParams() Params {
	return Params{
		Seed:        1,
		Scale:       50,
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2,
		Normalize:   NormalizeLocal,
		Kind:        KindPerlin,
	}
}

// Sanitized returns a copy with out-of-domain values clamped rather than rejected:
// scale <= 0 becomes MinScale, octaves < 0 becomes 0 and lacunarity < 1 becomes 1.
func (p Params) Sanitized() Params {
	if p.Scale <= 0 {
		p.Scale = MinScale
	}
	if p.Octaves < 0 {
		p.Octaves = 0
	}
	if p.Lacunarity < 1 {
		p.Lacunarity = 1
	}
	return p
}

// MaxAmplitude is the geometric series sum of octave amplitudes.
func MaxAmplitude(p Params) float64 {
	p = p.Sanitized()
	total, amplitude := 0.0, 1.0
	for i := 0; i < p.Octaves; i++ {
		total += amplitude
		amplitude *= p.Persistence
	}
	return total
}
