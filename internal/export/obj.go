package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/tilegen/internal/terrain"
)

// WriteOBJ writes mesh as a Wavefront OBJ with positions, UVs and normals.
// OBJ indices are 1-based; every vertex shares the same index across v/vt/vn.
func WriteOBJ(w io.Writer, mesh *terrain.Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# terrain mesh lod %d, %d vertices, %d triangles\n",
		mesh.LOD, len(mesh.Positions), mesh.TriangleCount())

	for _, p := range mesh.Positions {
		fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	for _, uv := range mesh.UVs {
		fmt.Fprintf(bw, "vt %g %g\n", uv.X, 1-uv.Y)
	}
	for _, n := range mesh.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a, b, c := mesh.Indices[i]+1, mesh.Indices[i+1]+1, mesh.Indices[i+2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}

	return bw.Flush()
}

// SaveOBJ writes mesh to path.
func SaveOBJ(path string, mesh *terrain.Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := WriteOBJ(file, mesh); err != nil {
		return fmt.Errorf("writing OBJ: %w", err)
	}
	return file.Close()
}
