package export

import (
	"image"
	"image/color"
	"math"

	"github.com/Faultbox/tilegen/internal/terrain"
	tmath "github.com/Faultbox/tilegen/pkg/math"
)

// Ambient is the light every cell receives regardless of its slope.
const Ambient = 0.35

// SunDirection converts an azimuth (degrees around +Y, 0 = +Z) and an
// elevation above the horizon (degrees) into a unit vector pointing at the sun.
func SunDirection(azimuth, elevation float64) tmath.Vec3 {
	az := azimuth * math.Pi / 180
	el := elevation * math.Pi / 180
	return tmath.Vec3{
		X: float32(math.Cos(el) * math.Sin(az)),
		Y: float32(math.Sin(el)),
		Z: float32(math.Cos(el) * math.Cos(az)),
	}
}

// ShadedImage lights the region colors with the mesh normals, one pixel per
// mesh vertex. Colors are sampled at the mesh stride.
func ShadedImage(colors terrain.ColorBuffer, mesh *terrain.Mesh, sun tmath.Vec3) *image.NRGBA {
	sun = sun.Normalize()
	img := image.NewNRGBA(image.Rect(0, 0, mesh.VerticesPerLine, mesh.VerticesPerColumn))

	for row := 0; row < mesh.VerticesPerColumn; row++ {
		for col := 0; col < mesh.VerticesPerLine; col++ {
			n := mesh.Normals[mesh.VertexIndex(col, row)]
			light := Ambient + (1-Ambient)*math.Max(0, float64(n.Dot(sun)))

			c := colors.At(col*mesh.Stride, row*mesh.Stride)
			img.SetNRGBA(col, row, color.NRGBA{
				R: shade(c.R, light),
				G: shade(c.G, light),
				B: shade(c.B, light),
				A: c.A,
			})
		}
	}
	return img
}

func shade(v uint8, light float64) uint8 {
	return uint8(math.Min(255, float64(v)*light+0.5))
}
