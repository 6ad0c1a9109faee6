// Package grid provides the row-major scalar grid shared by noise, falloff and height data.
package grid

import "fmt"

// Field is a W×H grid of float64 samples stored row-major (index = y*W + x).
//
// A Field handed out by a generator is treated as immutable: generators write
// into freshly allocated fields and never touch them after returning.
type Field struct {
	width  int
	height int
	values []float64
}

// New allocates a zeroed field. Non-positive dimensions yield an empty field.
func New(width, height int) *Field {
	width = max(width, 0)
	height = max(height, 0)
	return &Field{
		width:  width,
		height: height,
		values: make([]float64, width*height),
	}
}

// FromValues wraps values as a width×height field.
func FromValues(width, height int, values []float64) (*Field, error) {
	if width < 0 || height < 0 || len(values) != width*height {
		return nil, fmt.Errorf("field size mismatch: %dx%d needs %d values, got %d",
			width, height, width*height, len(values))
	}
	return &Field{width: width, height: height, values: values}, nil
}

// Width returns the number of columns.
func (f *Field) Width() int { return f.width }

// Height returns the number of rows.
func (f *Field) Height() int { return f.height }

// Len returns the number of cells.
func (f *Field) Len() int { return len(f.values) }

// Index returns the row-major index of (x, y).
func (f *Field) Index(x, y int) int { return y*f.width + x }

// At returns the value at (x, y).
func (f *Field) At(x, y int) float64 {
	return f.values[y*f.width+x]
}

// Set writes the value at (x, y).
func (f *Field) Set(x, y int, v float64) {
	f.values[y*f.width+x] = v
}

// Values returns the backing row-major slice; writes go through to the field.
func (f *Field) Values() []float64 {
	return f.values
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	values := make([]float64, len(f.values))
	copy(values, f.values)
	return &Field{width: f.width, height: f.height, values: values}
}

// Range returns the minimum and maximum sample. An empty field returns (0, 0).
func (f *Field) Range() (lo, hi float64) {
	if len(f.values) == 0 {
		return 0, 0
	}
	lo, hi = f.values[0], f.values[0]
	for _, v := range f.values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// Equal reports whether both fields have the same shape and bit-identical samples.
func (f *Field) Equal(other *Field) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.width != other.width || f.height != other.height {
		return false
	}
	for i, v := range f.values {
		if v != other.values[i] {
			return false
		}
	}
	return true
}
