package terrain

import (
	"github.com/Faultbox/tilegen/internal/curve"
	"github.com/Faultbox/tilegen/internal/grid"
	"github.com/Faultbox/tilegen/pkg/math"
)

// MeshSettings maps normalized heights to world elevation.
type MeshSettings struct {
	HeightMultiplier float64
	Curve            curve.Curve
}

// DefaultMeshSettings keeps water flat and lets land rise up to 26 units.
func DefaultMeshSettings() MeshSettings {
	return MeshSettings{
		HeightMultiplier: 26,
		Curve: curve.Curve{
			Keys:          []curve.Key{{In: 0, Out: 0}, {In: 0.4, Out: 0}, {In: 1, Out: 1}},
			Interpolation: curve.Smooth,
		},
	}
}

// Elevation returns curve(h) * multiplier. An empty curve is the identity.
func (s MeshSettings) Elevation(h float64) float32 {
	return float32(s.Curve.Evaluate(h) * s.HeightMultiplier)
}

// Extract builds the mesh of field at lod using these settings.
func (s MeshSettings) Extract(field *grid.Field, lod int) (*Mesh, error) {
	return Extract(field, s.HeightMultiplier, s.Curve, lod)
}

// Extract converts a height field into a mesh sampled every Stride(lod) cells.
//
// Vertices are centered on the origin: X grows with the column, Z shrinks with
// the row and Y is the elevation. Each sampled quad becomes two triangles with
// counter-clockwise winding seen from +Y. Normals also account for a one-step
// border ring extrapolated past the edge; the ring itself is not emitted.
func Extract(field *grid.Field, heightMultiplier float64, heightCurve curve.Curve, lod int) (*Mesh, error) {
	width, height := field.Width(), field.Height()
	if err := CheckLOD(width, height, lod); err != nil {
		return nil, err
	}

	settings := MeshSettings{HeightMultiplier: heightMultiplier, Curve: heightCurve}
	stride := Stride(lod)
	cols := (width-1)/stride + 1
	rows := (height-1)/stride + 1

	ring := buildRing(field, settings, stride, cols, rows)

	mesh := &Mesh{
		Positions:         make([]math.Vec3, 0, cols*rows),
		UVs:               make([]math.Vec2, 0, cols*rows),
		Indices:           make([]uint32, 0, (cols-1)*(rows-1)*6),
		LOD:               lod,
		Stride:            stride,
		VerticesPerLine:   cols,
		VerticesPerColumn: rows,
	}

	uScale := 1 / float32(width-1)
	vScale := 1 / float32(height-1)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x, y := col*stride, row*stride
			mesh.Positions = append(mesh.Positions, ring.at(col, row))
			mesh.UVs = append(mesh.UVs, math.Vec2{X: float32(x) * uScale, Y: float32(y) * vScale})

			if col < cols-1 && row < rows-1 {
				a := uint32(row*cols + col)
				b := a + 1
				c := a + uint32(cols)
				d := c + 1
				mesh.Indices = append(mesh.Indices,
					a, d, c,
					d, a, b,
				)
			}
		}
	}

	mesh.Normals = ring.normals()
	mesh.Bounds = computeBounds(mesh.Positions)
	return mesh, nil
}

// ring holds vertex positions for the sampled grid plus one border step on
// every side, so edge normals see neighbours that lie outside the tile.
type ring struct {
	cols, rows int
	positions  []math.Vec3 // (cols+2)×(rows+2)
}

func buildRing(field *grid.Field, s MeshSettings, stride, cols, rows int) *ring {
	r := &ring{
		cols:      cols,
		rows:      rows,
		positions: make([]math.Vec3, (cols+2)*(rows+2)),
	}

	lastX, lastY := field.Width()-1, field.Height()-1
	topLeftX := float32(lastX) / -2
	topLeftZ := float32(lastY) / 2

	var elevation func(x, y int) float32
	elevation = func(x, y int) float32 {
		// Linear extrapolation past the edge, mirrored about the boundary sample.
		switch {
		case x < 0:
			return 2*elevation(0, y) - elevation(-x, y)
		case x > lastX:
			return 2*elevation(lastX, y) - elevation(2*lastX-x, y)
		case y < 0:
			return 2*elevation(x, 0) - elevation(x, -y)
		case y > lastY:
			return 2*elevation(x, lastY) - elevation(x, 2*lastY-y)
		}
		return s.Elevation(field.At(x, y))
	}

	for row := -1; row <= rows; row++ {
		for col := -1; col <= cols; col++ {
			x, y := col*stride, row*stride
			r.positions[r.index(col, row)] = math.Vec3{
				X: topLeftX + float32(x),
				Y: elevation(x, y),
				Z: topLeftZ - float32(y),
			}
		}
	}
	return r
}

func (r *ring) index(col, row int) int {
	return (row+1)*(r.cols+2) + (col + 1)
}

func (r *ring) at(col, row int) math.Vec3 {
	return r.positions[r.index(col, row)]
}

func (r *ring) inside(col, row int) bool {
	return col >= 0 && col < r.cols && row >= 0 && row < r.rows
}

// normals accumulates area-weighted face normals of every quad touching an
// emitted vertex, border quads included.
func (r *ring) normals() []math.Vec3 {
	sums := make([]math.Vec3, r.cols*r.rows)

	addFace := func(c0, r0, c1, r1, c2, r2 int) {
		p0, p1, p2 := r.at(c0, r0), r.at(c1, r1), r.at(c2, r2)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, v := range [3][2]int{{c0, r0}, {c1, r1}, {c2, r2}} {
			if r.inside(v[0], v[1]) {
				i := v[1]*r.cols + v[0]
				sums[i] = sums[i].Add(n)
			}
		}
	}

	for row := -1; row < r.rows; row++ {
		for col := -1; col < r.cols; col++ {
			// a=(col,row) b=(col+1,row) c=(col,row+1) d=(col+1,row+1)
			addFace(col, row, col+1, row+1, col, row+1)
			addFace(col+1, row+1, col, row, col+1, row)
		}
	}

	for i := range sums {
		sums[i] = sums[i].Normalize()
	}
	return sums
}

func computeBounds(positions []math.Vec3) Bounds {
	if len(positions) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}
