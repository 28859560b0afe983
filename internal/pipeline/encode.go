package pipeline

import (
	"encoding/json"

	"voxelcore/internal/mesh"
	"voxelcore/internal/store"
)

// wireGeometry is the JSON wire record a mesh.Geometry bucket serializes
// to, matching the wire form: { voxel, at?, faceName?, positions[],
// indices[], uvs[], lights[] }.
type wireGeometry struct {
	Voxel     uint32    `json:"voxel"`
	At        *[3]int32 `json:"at,omitempty"`
	FaceName  string    `json:"faceName,omitempty"`
	Positions []float32 `json:"positions"`
	Indices   []uint32  `json:"indices"`
	UVs       []float32 `json:"uvs"`
	Lights    []uint32  `json:"lights"`
}

func toWire(g *mesh.Geometry) wireGeometry {
	w := wireGeometry{
		Voxel:   g.Key.BlockID,
		Indices: g.Indices,
	}
	if g.Key.Kind == mesh.KindFace {
		w.FaceName = g.Key.FaceName
	}
	if g.Key.Kind == mesh.KindIsolated {
		w.FaceName = g.Key.FaceName
		at := [3]int32{g.Key.X, g.Key.Y, g.Key.Z}
		w.At = &at
	}
	w.Positions = make([]float32, 0, len(g.Vertices)*3)
	w.UVs = make([]float32, 0, len(g.Vertices)*2)
	w.Lights = make([]uint32, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		w.Positions = append(w.Positions, v.Pos[0], v.Pos[1], v.Pos[2])
		w.UVs = append(w.UVs, v.UV[0], v.UV[1])
		w.Lights = append(w.Lights, v.Light)
	}
	return w
}

const fluidLightBit = 1 << 18

// isTransparentGeometry reports whether a geometry bucket belongs on the
// transparent/fluid render pass rather than the opaque one, judged by the
// fluid flag baked into its vertices' packed light words (every vertex in
// a fluid-emitted bucket carries it, since emitFluidFaces sets it
// unconditionally).
func isTransparentGeometry(g *mesh.Geometry) bool {
	if len(g.Vertices) == 0 {
		return false
	}
	return g.Vertices[0].Light&fluidLightBit != 0
}

// encodeGeometries splits a mesh pass's output into opaque and
// transparent/fluid JSON payloads, the two byte buffers store.Mesh keeps
// separate so a renderer can draw fluids with blending enabled without a
// second full mesh. Encoding failures are treated as empty payloads —
// mesh encoding never fails a chunk, matching the failure semantics the
// rest of the pipeline follows for meshing.
func encodeGeometries(geoms []*mesh.Geometry) *store.Mesh {
	var opaque, transparent []wireGeometry
	for _, g := range geoms {
		w := toWire(g)
		if isTransparentGeometry(g) {
			transparent = append(transparent, w)
		} else {
			opaque = append(opaque, w)
		}
	}

	opaqueBytes, err := json.Marshal(opaque)
	if err != nil {
		opaqueBytes = nil
	}
	transparentBytes, err := json.Marshal(transparent)
	if err != nil {
		transparentBytes = nil
	}

	return &store.Mesh{Opaque: opaqueBytes, Transparent: transparentBytes}
}
