// Package region classifies normalized heights into named, colored bands.
package region

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyRegions    = errors.New("region table is empty")
	ErrUnsortedRegions = errors.New("region thresholds must be non-decreasing")
)

// Region is one height band: every height at or above Threshold (and below
// the next region's threshold) is painted Color.
type Region struct {
	Name      string  `yaml:"name"`
	Threshold float64 `yaml:"threshold"`
	Color     Color   `yaml:"color"`
}

// Table is an ordered list of regions with ascending thresholds.
type Table []Region

// Validate checks the table is non-empty and sorted by threshold.
// Classification never sorts, so an unsorted table would mis-classify silently.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyRegions
	}
	for i := 1; i < len(t); i++ {
		if t[i].Threshold < t[i-1].Threshold {
			return fmt.Errorf("%w: %q (%.3f) follows %q (%.3f)",
				ErrUnsortedRegions, t[i].Name, t[i].Threshold, t[i-1].Name, t[i-1].Threshold)
		}
	}
	return nil
}

// HasBaseRegion reports whether the first threshold is <= 0, which guarantees
// every normalized height is covered.
func (t Table) HasBaseRegion() bool {
	return len(t) > 0 && t[0].Threshold <= 0
}

// Index returns the position of the region classifying h, or -1 if h lies
// below every threshold.
func (t Table) Index(h float64) int {
	idx := -1
	for i := range t {
		if h < t[i].Threshold {
			break
		}
		idx = i
	}
	return idx
}

// Classify returns the color of the highest region whose threshold does not
// exceed h. Unclassified heights get the zero color.
func Classify(h float64, t Table) Color {
	if i := t.Index(h); i >= 0 {
		return t[i].Color
	}
	return Color{}
}

// DefaultTable returns the classic island palette.
func DefaultTable() Table {
	return Table{
		{Name: "Water Deep", Threshold: 0, Color: RGB(0x32, 0x63, 0xc3)},
		{Name: "Water Shallow", Threshold: 0.3, Color: RGB(0x36, 0x67, 0xc7)},
		{Name: "Sand", Threshold: 0.4, Color: RGB(0xd2, 0xd0, 0x7d)},
		{Name: "Grass", Threshold: 0.45, Color: RGB(0x56, 0x98, 0x17)},
		{Name: "Grass 2", Threshold: 0.55, Color: RGB(0x3e, 0x6b, 0x12)},
		{Name: "Rock", Threshold: 0.6, Color: RGB(0x5a, 0x45, 0x3c)},
		{Name: "Rock 2", Threshold: 0.7, Color: RGB(0x4b, 0x3c, 0x35)},
		{Name: "Snow", Threshold: 0.9, Color: RGB(0xff, 0xff, 0xff)},
	}
}
