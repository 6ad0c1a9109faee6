package terrain

import (
	"errors"
	"fmt"
)

var ErrUnsupportedLOD = errors.New("unsupported LOD for this tile size")

// MaxLOD bounds the LOD search in ValidLODs.
const MaxLOD = 6

// Stride returns the sampling step for lod: 1 for lod 0, otherwise 2*lod.
func Stride(lod int) int {
	if lod == 0 {
		return 1
	}
	return lod * 2
}

// CheckLOD reports whether lod can sample a width×height field without
// skipping the last row or column.
func CheckLOD(width, height, lod int) error {
	if lod < 0 {
		return fmt.Errorf("%w: negative lod %d", ErrUnsupportedLOD, lod)
	}
	if width < 2 || height < 2 {
		return fmt.Errorf("%w: field %dx%d too small to mesh", ErrUnsupportedLOD, width, height)
	}
	s := Stride(lod)
	if (width-1)%s != 0 || (height-1)%s != 0 {
		return fmt.Errorf("%w: lod %d (stride %d) does not divide %dx%d", ErrUnsupportedLOD, lod, s, width-1, height-1)
	}
	return nil
}

// ValidLODs lists the LODs in [0, MaxLOD] usable for a size×size tile.
func ValidLODs(size int) []int {
	var lods []int
	for lod := 0; lod <= MaxLOD; lod++ {
		if CheckLOD(size, size, lod) == nil {
			lods = append(lods, lod)
		}
	}
	return lods
}
