// Package terrain builds terrain tiles (height field + color buffer) and extracts
// level-of-detail meshes from them.
package terrain

import (
	"github.com/Faultbox/tilegen/internal/grid"
	"github.com/Faultbox/tilegen/internal/noise"
	"github.com/Faultbox/tilegen/internal/region"
	"github.com/Faultbox/tilegen/pkg/math"
)

// ColorBuffer holds one color per height cell, row-major (index = y*Size + x).
type ColorBuffer struct {
	Size   int
	Colors []region.Color
}

// At returns the color of cell (x, y).
func (c ColorBuffer) At(x, y int) region.Color {
	return c.Colors[y*c.Size+x]
}

// TileData is the immutable result of building one tile.
type TileData struct {
	Center  noise.Offset
	Heights *grid.Field // normalized heights, Size×Size
	Colors  ColorBuffer
}

// Size returns the tile dimension N.
func (t *TileData) Size() int {
	return t.Heights.Width()
}

// Mesh holds vertex and index buffers ready for upload to a renderer or physics engine.
// Positions, Normals and UVs are parallel arrays.
type Mesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Indices   []uint32
	Bounds    Bounds

	LOD               int
	Stride            int
	VerticesPerLine   int // vertices along X
	VerticesPerColumn int // vertices along Z
}

// TriangleCount returns the number of emitted triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexIndex returns the vertex index of sampled grid column col and row row.
func (m *Mesh) VertexIndex(col, row int) int {
	return row*m.VerticesPerLine + col
}

// Collider is the geometry view consumed by a physics collaborator.
type Collider struct {
	Positions []math.Vec3
	Indices   []uint32
}

// Collider returns the mesh's geometry for collision. Buffers are shared, not copied.
func (m *Mesh) Collider() Collider {
	return Collider{Positions: m.Positions, Indices: m.Indices}
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns the extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}
