package region

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
)

// Color is an 8-bit RGBA color that reads and writes as "#rrggbb" or "#rrggbbaa".
type Color color.NRGBA

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA(c).RGBA()
}

// NRGBA returns the image/color form.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA(c)
}

func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(strings.TrimSpace(string(text)), "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("color %q: expected #rrggbb or #rrggbbaa", text)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("color %q: %w", text, err)
	}
	*c = Color{R: b[0], G: b[1], B: b[2], A: 255}
	if len(b) == 4 {
		c.A = b[3]
	}
	return nil
}
