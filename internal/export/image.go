// Package export writes tiles and meshes to images and OBJ files.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/Faultbox/tilegen/internal/grid"
	"github.com/Faultbox/tilegen/internal/terrain"
	tmath "github.com/Faultbox/tilegen/pkg/math"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is an image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// HeightImage renders a field as grayscale: 0 is black, 1 is white.
// Values outside [0, 1] are clamped.
func HeightImage(field *grid.Field) *image.Gray {
	w, h := field.Width(), field.Height()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := tmath.Clamp01(field.At(x, y))
			img.SetGray(x, y, color.Gray{Y: uint8(v*255 + 0.5)})
		}
	}
	return img
}

// ColorImage renders a color buffer with one pixel per cell.
func ColorImage(colors terrain.ColorBuffer) *image.NRGBA {
	n := colors.Size
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			img.SetNRGBA(x, y, colors.At(x, y).NRGBA())
		}
	}
	return img
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// SaveImage writes img to path, choosing the format from the extension.
func SaveImage(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, img, format); err != nil {
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	return file.Close()
}
