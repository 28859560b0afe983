// Package registry holds the static block catalog: Block definitions, the
// rotation-aware transparency table, and the dense/sparse id lookup that
// backs every other subsystem's "what block is this" question.
package registry

import (
	"fmt"
	"math"

	"voxelcore/internal/voxel"
)

// Registry is the immutable, build-once catalog of every Block a world can
// contain, plus the derived lookup structures (dense array or sparse map,
// chosen by id compactness) and the precomputed rotated-transparency table.
type Registry struct {
	blocks      []Block // dense, indexed by id, populated only if useDense
	sparse      map[uint32]*Block
	useDense    bool
	maxID       uint32
	airIndex    uint32
	defaultID   uint32
	faceSource  [6][8][6]int // [rotationValue][yaw][worldFace] -> body-space face index (0..5)
}

const minDenseLimit = 64

// New builds a Registry from a set of authored blocks. airIndex identifies
// the block id treated as the always-transparent, always-empty fallback;
// defaultID is returned by Lookup for unknown ids instead of panicking.
//
// New panics on malformed input (duplicate ids, airIndex not present) since
// this only ever runs once at world-server startup, never on the per-tick
// hot path.
func New(blocks []Block, airIndex, defaultID uint32) *Registry {
	r := &Registry{airIndex: airIndex, defaultID: defaultID}
	r.buildCache(blocks)
	r.buildTransparencyTable()
	return r
}

func (r *Registry) buildCache(blocks []Block) {
	seen := make(map[uint32]bool, len(blocks))
	var maxID uint32
	for i := range blocks {
		blocks[i].recomputeFlags()
		id := blocks[i].ID
		if seen[id] {
			panic(fmt.Sprintf("registry: duplicate block id %d (%s)", id, blocks[i].Name))
		}
		seen[id] = true
		if id > maxID {
			maxID = id
		}
	}
	if !seen[r.airIndex] {
		panic(fmt.Sprintf("registry: air index %d has no block definition", r.airIndex))
	}

	r.maxID = maxID
	denseLimit := uint32(len(blocks)) * 8
	if denseLimit < minDenseLimit {
		denseLimit = minDenseLimit
	}

	if maxID <= denseLimit {
		r.useDense = true
		r.blocks = make([]Block, maxID+1)
		filled := make([]bool, maxID+1)
		for _, b := range blocks {
			r.blocks[b.ID] = b
			filled[b.ID] = true
		}
		// Any dense slot left unfilled (a gap below maxID) falls back to
		// the air definition so dense lookups never return a zero Block.
		air := r.blocks[r.airIndex]
		for id, ok := range filled {
			if !ok {
				r.blocks[id] = air
			}
		}
	} else {
		r.sparse = make(map[uint32]*Block, len(blocks))
		for i := range blocks {
			r.sparse[blocks[i].ID] = &blocks[i]
		}
	}
}

// Lookup returns the Block for id, falling back to air and finally to the
// configured default block if id is unknown. Mirrors LightRegistry's
// get_block_by_id fallback chain: air-special-case, dense, sparse, default.
func (r *Registry) Lookup(id uint32) *Block {
	if id == r.airIndex {
		if r.useDense {
			return &r.blocks[r.airIndex]
		}
		return r.sparse[r.airIndex]
	}
	if r.useDense {
		if id <= r.maxID {
			return &r.blocks[id]
		}
	} else if b, ok := r.sparse[id]; ok {
		return b
	}
	if r.useDense {
		return &r.blocks[r.defaultID]
	}
	return r.sparse[r.defaultID]
}

// HasType reports whether id names a registered block. Dense gap slots hold
// a copy of the air block, so a dense slot counts only when its stored id
// matches; an empty sparse map (a degenerate registry) reports only the
// air index.
func (r *Registry) HasType(id uint32) bool {
	if r.useDense {
		return id <= r.maxID && r.blocks[id].ID == id
	}
	if _, ok := r.sparse[id]; ok {
		return true
	}
	if len(r.sparse) == 0 {
		return id == r.airIndex
	}
	return false
}

// GetRotatedTransparency returns the block's transparency for face `face`
// (0=px,1=py,2=pz,3=nx,4=ny,5=nz) after applying rot. Blocks whose six
// static transparency values are already uniform skip the table lookup
// entirely, since rotation cannot change a uniform result.
func (b *Block) GetRotatedTransparency(face int, rot voxel.BlockRotation, reg *Registry) bool {
	if b.HasUniformTransparency {
		return b.Transparency[0]
	}
	src := reg.faceSource[rot.Value][rot.Yaw][face]
	return b.Transparency[src]
}

// RotatedTransparency returns the transparency of all six world-space
// faces after applying rot, in one call. Used by the light engine, which
// needs the whole array per voxel rather than one face at a time.
func (b *Block) RotatedTransparency(rot voxel.BlockRotation, reg *Registry) [6]bool {
	if b.HasUniformTransparency {
		return b.Transparency
	}
	var out [6]bool
	for face := 0; face < 6; face++ {
		out[face] = b.Transparency[reg.faceSource[rot.Value][rot.Yaw][face]]
	}
	return out
}

// GetTransparencyFromRawVoxel decodes rotation from raw and looks up this
// block's transparency for the given face, accounting for rotation.
func (b *Block) GetTransparencyFromRawVoxel(face int, raw uint32, reg *Registry) bool {
	return b.GetRotatedTransparency(face, voxel.RotationFromRaw(raw), reg)
}

// TransparencyFromRawVoxel decodes rotation from raw and returns all six
// rotated face-transparency values in one call.
func (b *Block) TransparencyFromRawVoxel(raw uint32, reg *Registry) [6]bool {
	return b.RotatedTransparency(voxel.RotationFromRaw(raw), reg)
}

// faceDirs are the six cardinal direction vectors, index-aligned with
// Block.Transparency (0=px, 1=py, 2=pz, 3=nx, 4=ny, 5=nz).
var faceDirs = [6][3]float64{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
	{-1, 0, 0},
	{0, -1, 0},
	{0, 0, -1},
}

// buildTransparencyTable precomputes, for every (rotation value, yaw
// segment, world-space face) triple, which body-space face index of
// Block.Transparency answers "is this world face open". A world face
// direction is rotated by the inverse of the placement rotation to recover
// the body-space direction it originated from, then snapped back to the
// nearest cardinal axis by transparencySourceIndex — this mirrors the
// source registry's rounding-based transparency_source_index rather than
// hand-tracking a face-permutation table per rotation variant.
//
// The eight yaw segments (45-degree steps) are the full set this module's
// packed voxel word can express (see voxel.YRotation); unlike the crate
// this is ported from, which reserves a 16-segment table even though only
// 8 values are ever produced by BlockRotation, this table is sized exactly
// to what can be encoded. See DESIGN.md for the full rationale.
func (r *Registry) buildTransparencyTable() {
	for rv := voxel.PYRotation; rv <= voxel.NZRotation; rv++ {
		for yaw := voxel.Y000; yaw <= voxel.Y315; yaw++ {
			rot := voxel.BlockRotation{Value: rv, Yaw: yaw}
			for face := 0; face < 6; face++ {
				node := faceDirs[face]
				rot.RotateInverse(&node, false)
				r.faceSource[rv][yaw][face] = transparencySourceIndex(node)
			}
		}
	}
}

// transparencySourceIndex rounds a direction vector back to the nearest of
// the six cardinal face indices (px=0, py=1, pz=2, nx=3, ny=4, nz=5). NaN or
// infinite components fall back to index 5, matching the defensive clamp in
// the registry this table construction is grounded on.
func transparencySourceIndex(node [3]float64) int {
	bestAxis, bestSign := 2, -1.0
	bestMag := math.Inf(-1)
	for axis := 0; axis < 3; axis++ {
		v := node[axis]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 5
		}
		mag := math.Abs(math.Round(v))
		if mag > bestMag {
			bestMag = mag
			bestAxis = axis
			if v < 0 {
				bestSign = -1.0
			} else {
				bestSign = 1.0
			}
		}
	}
	if bestSign > 0 {
		return bestAxis
	}
	return bestAxis + 3
}
