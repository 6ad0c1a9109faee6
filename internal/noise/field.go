// Package noise synthesizes height fields from layered, seeded coherent noise.
package noise

import (
	"math"
	"math/rand"

	"github.com/Faultbox/tilegen/internal/grid"
	tmath "github.com/Faultbox/tilegen/pkg/math"
)

// OctaveOffsets derives one decorrelating offset per octave from seed.
// The same seed always yields the same offsets.
func OctaveOffsets(seed int64, octaves int) []Offset {
	prng := rand.New(rand.NewSource(seed))
	offsets := make([]Offset, max(octaves, 0))
	for i := range offsets {
		offsets[i] = Offset{
			X: float64(prng.Intn(2*OffsetRange+1) - OffsetRange),
			Y: float64(prng.Intn(2*OffsetRange+1) - OffsetRange),
		}
	}
	return offsets
}

// Generator samples layered noise for a fixed parameter set.
// It holds no mutable state, so one Generator may serve many goroutines.
type Generator struct {
	params       Params
	sampler      Sampler
	offsets      []Offset
	maxAmplitude float64
}

// NewGenerator sanitizes p and prepares the sampler and octave offsets.
func NewGenerator(p Params) *Generator {
	p = p.Sanitized()
	return &Generator{
		params:       p,
		sampler:      NewSampler(p.Kind, p.Seed),
		offsets:      OctaveOffsets(p.Seed, p.Octaves),
		maxAmplitude: MaxAmplitude(p),
	}
}

// Params returns the sanitized parameters in use.
func (g *Generator) Params() Params {
	return g.params
}

// Generate fills a width×height field centered on center (in grid cells,
// added to the configured offset). Values are normalized into [0, 1].
func (g *Generator) Generate(width, height int, center Offset) *grid.Field {
	field := grid.New(width, height)
	if field.Len() == 0 {
		return field
	}

	p := g.params
	origin := p.Offset.Add(center)
	halfW := float64(width-1) / 2
	halfH := float64(height-1) / 2

	lo, hi := math.Inf(1), math.Inf(-1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			amplitude, frequency := 1.0, 1.0
			sum := 0.0

			for _, octave := range g.offsets {
				sx := (float64(x)-halfW+origin.X)/p.Scale*frequency + octave.X
				sy := (float64(y)-halfH+origin.Y)/p.Scale*frequency + octave.Y

				sum += g.sampler.Sample(sx, sy) * amplitude

				amplitude *= p.Persistence
				frequency *= p.Lacunarity
			}

			lo = min(lo, sum)
			hi = max(hi, sum)
			field.Set(x, y, sum)
		}
	}

	values := field.Values()
	switch p.Normalize {
	case NormalizeGlobal:
		estimate := g.maxAmplitude * GlobalEstimateFactor
		for i, v := range values {
			if estimate <= 0 {
				values[i] = 0
				continue
			}
			values[i] = tmath.Clamp01((v + estimate) / (2 * estimate))
		}
	default:
		for i, v := range values {
			values[i] = tmath.InverseLerp(lo, hi, v)
		}
	}

	return field
}

// Generate is the one-shot form: build a Generator for p and sample a single
// width×height tile at p.Offset.
func Generate(width, height int, p Params) *grid.Field {
	return NewGenerator(p).Generate(width, height, Offset{})
}
