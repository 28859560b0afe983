// Package mesh turns a windowed voxel/light view into renderable geometry:
// a naive per-voxel mesher, a greedy coplanar-quad mesher, and fluid
// surface shaping, grounded on the teacher's internal/meshing package
// (buildGreedyForDirection's run-then-grow mask scan, BuildFluidMesh's
// per-block corner-height sampling) generalized from the teacher's fixed
// block catalog to this module's rotation-aware, dynamic-pattern-capable
// Block model.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/registry"
)

// Vertex is one corner of an emitted quad: a position in chunk-local
// space, a texture UV, and a packed lighting word combining the raw
// light/sunlight nibbles, ambient occlusion, and two flag bits -
// matching the `light | (ao << 16) | fluid_bit(18) | wave_bit(20)`
// encoding this mesher's source material uses so a single uint32 per
// vertex carries everything the fragment shader needs.
type Vertex struct {
	Pos   mgl32.Vec3
	UV    mgl32.Vec2
	Light uint32
}

const (
	fluidBit = 1 << 18
	waveBit  = 1 << 20
)

// PackLight combines a raw light word, a 0-3 ambient occlusion value, and
// the fluid/wave flags into one vertex attribute.
func PackLight(light uint32, ao uint8, fluid, wave bool) uint32 {
	packed := light | (uint32(ao) << 16)
	if fluid {
		packed |= fluidBit
	}
	if wave {
		packed |= waveBit
	}
	return packed
}

// KeyKind distinguishes the three ways a face's triangles get grouped.
type KeyKind int

const (
	KindBlock KeyKind = iota
	KindFace
	KindIsolated
)

// Key identifies one geometry bucket: all triangles sharing a Key are
// written to the same vertex/index run.
type Key struct {
	Kind     KeyKind
	BlockID  uint32
	FaceName string
	X, Y, Z  int32
}

// Geometry is one bucket's accumulated triangle data.
type Geometry struct {
	Key      Key
	Vertices []Vertex
	Indices  []uint32
}

// Builder accumulates Geometry buckets keyed by Key, appending quads as
// the mesher walks the region.
type Builder struct {
	buckets map[Key]*Geometry
	order   []Key
}

func NewBuilder() *Builder {
	return &Builder{buckets: make(map[Key]*Geometry)}
}

func (b *Builder) bucket(key Key) *Geometry {
	g, ok := b.buckets[key]
	if !ok {
		g = &Geometry{Key: key}
		b.buckets[key] = g
		b.order = append(b.order, key)
	}
	return g
}

// AddQuad appends a quad (4 corners, CCW winding as given) as two
// triangles to the bucket named by key. flip chooses which diagonal the
// quad splits on: false splits (0,1,2)/(2,3,0), true splits
// (0,1,3)/(1,2,3) — the mesher picks whichever hides an ambient
// occlusion seam better.
func (b *Builder) AddQuad(key Key, corners [4]Vertex, flip bool) {
	g := b.bucket(key)
	base := uint32(len(g.Vertices))
	g.Vertices = append(g.Vertices, corners[0], corners[1], corners[2], corners[3])
	if flip {
		g.Indices = append(g.Indices,
			base+0, base+1, base+3,
			base+1, base+2, base+3,
		)
	} else {
		g.Indices = append(g.Indices,
			base+0, base+1, base+2,
			base+2, base+3, base+0,
		)
	}
}

// Geometries returns every accumulated bucket, in first-touched order
// (stable output for fixture-based parity tests).
func (b *Builder) Geometries() []*Geometry {
	out := make([]*Geometry, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.buckets[k])
	}
	return out
}

// keyFor resolves the geometry key for one face of one voxel, per the
// grouping rules: whole-block cache for ordinary faces, a per-face-name
// bucket for independent faces (so every voxel of that block contributes
// to one shared run), and a per-voxel bucket for isolated faces.
func keyFor(block *registry.Block, face registry.Face, vx, vy, vz int32) Key {
	switch {
	case face.Isolated:
		return Key{Kind: KindIsolated, BlockID: block.ID, FaceName: face.Name, X: vx, Y: vy, Z: vz}
	case face.Independent:
		return Key{Kind: KindFace, BlockID: block.ID, FaceName: face.Name}
	default:
		return Key{Kind: KindBlock, BlockID: block.ID}
	}
}
