package terrain

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/tilegen/internal/falloff"
	"github.com/Faultbox/tilegen/internal/grid"
	"github.com/Faultbox/tilegen/internal/logger"
	"github.com/Faultbox/tilegen/internal/noise"
	"github.com/Faultbox/tilegen/internal/region"
	tmath "github.com/Faultbox/tilegen/pkg/math"
)

// DefaultSize is the classic chunk size: 240 is divisible by 2, 4, 6, 8, 10 and 12.
const DefaultSize = 241

var ErrInvalidSize = errors.New("tile size must be an odd integer >= 3")

// Composition decides how the falloff mask combines with the noise heights.
type Composition int

const (
	// ComposeSubtract carves the border down: an island surrounded by water.
	ComposeSubtract Composition = iota
	// ComposeAdd raises the border: a basin surrounded by mountains.
	ComposeAdd
)

func (c Composition) String() string {
	switch c {
	case ComposeSubtract:
		return "subtract"
	case ComposeAdd:
		return "add"
	default:
		return fmt.Sprintf("Composition(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Composition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Composition) UnmarshalText(text []byte) error {
	switch string(text) {
	case "subtract", "water", "":
		*c = ComposeSubtract
	case "add", "mountains":
		*c = ComposeAdd
	default:
		return fmt.Errorf("unknown falloff composition %q", text)
	}
	return nil
}

// Apply combines a height with a mask value and clamps the result to [0, 1].
func (c Composition) Apply(height, mask float64) float64 {
	if c == ComposeAdd {
		return tmath.Clamp01(height + mask)
	}
	return tmath.Clamp01(height - mask)
}

// FalloffSettings controls the optional edge mask.
type FalloffSettings struct {
	Enabled bool
	Shape   falloff.Shape
	Compose Composition
	Params  falloff.Params
}

// Settings configures a Builder.
type Settings struct {
	Size    int
	Noise   noise.Params
	Regions region.Table
	Falloff FalloffSettings
}

// DefaultSettings returns a 241×241 island tile.
func DefaultSettings() Settings {
	return Settings{
		Size:    DefaultSize,
		Noise:   noise.DefaultParams(),
		Regions: region.DefaultTable(),
		Falloff: FalloffSettings{
			Enabled: false,
			Shape:   falloff.ShapeRadial,
			Compose: ComposeSubtract,
			Params:  falloff.DefaultParams(),
		},
	}
}

// Validate checks the settings at the generation boundary.
func (s Settings) Validate() error {
	if s.Size < 3 || s.Size%2 == 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSize, s.Size)
	}
	if err := s.Regions.Validate(); err != nil {
		return fmt.Errorf("regions: %w", err)
	}
	return nil
}

// Builder turns a tile center into height and color data.
// It is read-only after construction and safe for concurrent Build calls.
type Builder struct {
	settings Settings
	noise    *noise.Generator
	mask     *grid.Field
}

// NewBuilder validates settings and precomputes everything shared between tiles.
func NewBuilder(s Settings) (*Builder, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if !s.Regions.HasBaseRegion() {
		logger.Warn("region table has no zero threshold; low heights fall back to the zero color",
			zap.Float64("lowest", s.Regions[0].Threshold))
	}

	b := &Builder{
		settings: s,
		noise:    noise.NewGenerator(s.Noise),
	}
	if s.Falloff.Enabled {
		b.mask = falloff.Shared().Get(s.Size, s.Falloff.Shape, s.Falloff.Params)
	}
	return b, nil
}

// Settings returns the builder's configuration.
func (b *Builder) Settings() Settings {
	return b.settings
}

// Build generates the tile centered at center (grid cells, relative to the configured offset).
func (b *Builder) Build(center noise.Offset) *TileData {
	start := time.Now()
	size := b.settings.Size

	heights := b.noise.Generate(size, size, center)
	values := heights.Values()

	if b.mask != nil {
		compose := b.settings.Falloff.Compose
		for i, m := range b.mask.Values() {
			values[i] = compose.Apply(values[i], m)
		}
	}

	colors := make([]region.Color, len(values))
	for i, h := range values {
		colors[i] = region.Classify(h, b.settings.Regions)
	}

	logger.Debug("tile built",
		zap.Float64("x", center.X),
		zap.Float64("y", center.Y),
		zap.Int("size", size),
		zap.Duration("took", time.Since(start)),
	)

	return &TileData{
		Center:  center,
		Heights: heights,
		Colors:  ColorBuffer{Size: size, Colors: colors},
	}
}
