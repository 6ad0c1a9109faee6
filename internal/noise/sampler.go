package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Kind selects the coherent noise function sampled by each octave.
type Kind int

const (
	KindPerlin Kind = iota
	KindSimplex
)

func (k Kind) String() string {
	switch k {
	case KindPerlin:
		return "perlin"
	case KindSimplex:
		return "simplex"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "perlin", "":
		*k = KindPerlin
	case "simplex":
		*k = KindSimplex
	default:
		return fmt.Errorf("unknown noise kind %q", text)
	}
	return nil
}

// Sampler evaluates a seeded 2D coherent noise function in roughly [-1, 1].
// Implementations are read-only after construction and safe for concurrent use.
type Sampler interface {
	Sample(x, y float64) float64
}

// NewSampler builds the sampler for kind, seeded with seed.
func NewSampler(kind Kind, seed int64) Sampler {
	switch kind {
	case KindSimplex:
		return simplexSampler{noise: opensimplex.New(seed)}
	default:
		// alpha/beta only matter for n > 1; octaves are layered by Generator.
		return perlinSampler{noise: perlin.NewPerlin(2, 2, 1, seed)}
	}
}

// perlinBias keeps sample coordinates positive: go-perlin truncates toward zero
// when locating the lattice cell, which breaks continuity for negative inputs.
const perlinBias = 1 << 20

type perlinSampler struct {
	noise *perlin.Perlin
}

func (s perlinSampler) Sample(x, y float64) float64 {
	return s.noise.Noise2D(x+perlinBias, y+perlinBias)
}

type simplexSampler struct {
	noise opensimplex.Noise
}

func (s simplexSampler) Sample(x, y float64) float64 {
	return s.noise.Eval2(x, y)
}
