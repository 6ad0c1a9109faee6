package preview

import (
	"github.com/Faultbox/tilegen/internal/terrain"
)

// request is what a client sends over /ws.
type request struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	LOD *int    `json:"lod,omitempty"`
}

type tileMessage struct {
	Type    string    `json:"type"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Size    int       `json:"size"`
	Heights []float32 `json:"heights"`
	Colors  []byte    `json:"colors"` // packed RGB, base64 in JSON
}

type meshMessage struct {
	Type      string    `json:"type"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	LOD       int       `json:"lod"`
	Positions []float32 `json:"positions"`
	Normals   []float32 `json:"normals"`
	UVs       []float32 `json:"uvs"`
	Indices   []uint32  `json:"indices"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newTileMessage(tile *terrain.TileData) tileMessage {
	values := tile.Heights.Values()
	heights := make([]float32, len(values))
	for i, h := range values {
		heights[i] = float32(h)
	}

	colors := make([]byte, 0, len(tile.Colors.Colors)*3)
	for _, c := range tile.Colors.Colors {
		colors = append(colors, c.R, c.G, c.B)
	}

	return tileMessage{
		Type:    "tile",
		X:       tile.Center.X,
		Y:       tile.Center.Y,
		Size:    tile.Size(),
		Heights: heights,
		Colors:  colors,
	}
}

func newMeshMessage(tile *terrain.TileData, mesh *terrain.Mesh) meshMessage {
	msg := meshMessage{
		Type:      "mesh",
		X:         tile.Center.X,
		Y:         tile.Center.Y,
		LOD:       mesh.LOD,
		Positions: make([]float32, 0, len(mesh.Positions)*3),
		Normals:   make([]float32, 0, len(mesh.Normals)*3),
		UVs:       make([]float32, 0, len(mesh.UVs)*2),
		Indices:   mesh.Indices,
	}
	for _, p := range mesh.Positions {
		msg.Positions = append(msg.Positions, p.X, p.Y, p.Z)
	}
	for _, n := range mesh.Normals {
		msg.Normals = append(msg.Normals, n.X, n.Y, n.Z)
	}
	for _, uv := range mesh.UVs {
		msg.UVs = append(msg.UVs, uv.X, uv.Y)
	}
	return msg
}
