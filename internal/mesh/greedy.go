package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/registry"
)

// faceKey is the per-cell signature the greedy scan merges on: cells with
// an identical key coalesce into one rectangle. Including the four corner
// AO/light values in the key (rather than only the block/face identity)
// means a run only merges across a region with uniform occlusion and
// lighting — exactly the common case (open, evenly lit areas), while
// still falling back to per-voxel emission the instant lighting varies.
type faceKey struct {
	blockID     uint32
	faceName    string
	independent bool
	aoNN, aoPN, aoPP, aoNP uint8
	lightNN, lightPN, lightPP, lightNP uint32
}

// greedyDirs are the six sweep directions, in the same px/py/pz/nx/ny/nz
// order the registry's transparency table uses.
var greedyDirs = [6][3]int32{
	{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	{-1, 0, 0}, {0, -1, 0}, {0, 0, -1},
}

// MeshSpaceGreedy runs the coplanar-quad mesher over [min, min+shape): for
// every cardinal direction, sweep slices perpendicular to it and merge
// adjacent eligible cells into single quads. Voxels that aren't eligible
// for greedy merging (fluids, dynamic patterns, rotated blocks, isolated
// faces) are left for a single ordinary per-voxel pass afterward, so
// every voxel is meshed exactly once regardless of eligibility.
func MeshSpaceGreedy(a Access, reg *registry.Registry, min, shape [3]int32) []*Geometry {
	builder := NewBuilder()
	handled := make(map[[3]int32]bool)

	for _, dir := range greedyDirs {
		sweepDirection(builder, a, reg, min, shape, dir, handled)
	}

	for x := int32(0); x < shape[0]; x++ {
		for y := int32(0); y < shape[1]; y++ {
			for z := int32(0); z < shape[2]; z++ {
				vx, vy, vz := min[0]+x, min[1]+y, min[2]+z
				if handled[[3]int32{vx, vy, vz}] {
					continue
				}
				meshVoxel(builder, a, reg, vx, vy, vz)
			}
		}
	}

	return builder.Geometries()
}

func sweepDirection(builder *Builder, a Access, reg *registry.Registry, min, shape, dir [3]int32, handled map[[3]int32]bool) {
	axis := 0
	switch {
	case dir[0] != 0:
		axis = 0
	case dir[1] != 0:
		axis = 1
	default:
		axis = 2
	}
	u, v := inPlaneAxes(dir)
	sizeAxis, sizeU, sizeV := shape[axis], shape[u], shape[v]
	if sizeAxis <= 0 || sizeU <= 0 || sizeV <= 0 {
		return
	}

	positivePattern := dir[0] > 0 || dir[1] < 0 || dir[2] > 0

	for layer := int32(0); layer < sizeAxis; layer++ {
		mask := make([]*faceKey, sizeU*sizeV)
		faces := make([]*registry.Face, sizeU*sizeV)

		for iu := int32(0); iu < sizeU; iu++ {
			for iv := int32(0); iv < sizeV; iv++ {
				pos := [3]int32{}
				pos[axis] = layer
				pos[u] = iu
				pos[v] = iv
				vx, vy, vz := min[0]+pos[0], min[1]+pos[1], min[2]+pos[2]

				block, _ := lookupAt(a, reg, vx, vy, vz)
				if block.IsEmpty || !block.GreedyMeshEligibleNoRotate {
					continue
				}
				hasIsolated := false
				for i := range block.Faces {
					if block.Faces[i].Isolated {
						hasIsolated = true
						break
					}
				}
				if hasIsolated {
					continue
				}
				if block.IsOpaque && allNeighborsOpaque(a, reg, vx, vy, vz) {
					handled[[3]int32{vx, vy, vz}] = true
					continue
				}

				var face *registry.Face
				for i := range block.Faces {
					if block.Faces[i].Dir == dir {
						face = &block.Faces[i]
						break
					}
				}
				if face == nil || face.Isolated {
					continue
				}

				neighborBlock, _ := lookupAt(a, reg, vx+dir[0], vy+dir[1], vz+dir[2])
				if !shouldRenderFace(block, neighborBlock) {
					handled[[3]int32{vx, vy, vz}] = true
					continue
				}

				handled[[3]int32{vx, vy, vz}] = true

				nvx, nvy, nvz := vx+dir[0], vy+dir[1], vz+dir[2]
				key := &faceKey{
					blockID:     block.ID,
					faceName:    face.Name,
					independent: face.Independent,
					aoNN:        cornerAO(a, reg, nvx, nvy, nvz, dir, -1, -1),
					aoPN:        cornerAO(a, reg, nvx, nvy, nvz, dir, 1, -1),
					aoPP:        cornerAO(a, reg, nvx, nvy, nvz, dir, 1, 1),
					aoNP:        cornerAO(a, reg, nvx, nvy, nvz, dir, -1, 1),
					lightNN:     cornerLight(a, reg, nvx, nvy, nvz, dir, -1, -1),
					lightPN:     cornerLight(a, reg, nvx, nvy, nvz, dir, 1, -1),
					lightPP:     cornerLight(a, reg, nvx, nvy, nvz, dir, 1, 1),
					lightNP:     cornerLight(a, reg, nvx, nvy, nvz, dir, -1, 1),
				}
				mask[iu*sizeV+iv] = key
				faces[iu*sizeV+iv] = face
			}
		}

		scanMask(builder, mask, faces, sizeU, sizeV, min, layer, axis, u, v, dir, positivePattern)
	}
}

func keyEqual(a, b *faceKey) bool {
	return *a == *b
}

func scanMask(builder *Builder, mask []*faceKey, faces []*registry.Face, sizeU, sizeV int32, min [3]int32, layer int32, axis, u, v int, dir [3]int32, positivePattern bool) {
	i := int32(0)
	total := sizeU * sizeV
	for i < total {
		if mask[i] == nil {
			i++
			continue
		}
		key := mask[i]
		face := faces[i]
		u0 := i / sizeV
		v0 := i % sizeV

		width := int32(1)
		for v1 := v0 + 1; v1 < sizeV && mask[u0*sizeV+v1] != nil && keyEqual(mask[u0*sizeV+v1], key); v1++ {
			width++
		}

		height := int32(1)
	outer:
		for u1 := u0 + 1; u1 < sizeU; u1++ {
			for v1 := v0; v1 < v0+width; v1++ {
				if mask[u1*sizeV+v1] == nil || !keyEqual(mask[u1*sizeV+v1], key) {
					break outer
				}
			}
			height++
		}

		emitMergedQuad(builder, key, face, min, layer, axis, u, v, u0, v0, height, width, dir, positivePattern)

		for uu := u0; uu < u0+height; uu++ {
			for vv := v0; vv < v0+width; vv++ {
				mask[uu*sizeV+vv] = nil
			}
		}

		i++
	}
}

func emitMergedQuad(builder *Builder, key *faceKey, face *registry.Face, min [3]int32, layer int32, axis, u, v int, u0, v0, height, width int32, dir [3]int32, positivePattern bool) {
	planeCoord := float32(min[axis] + layer)
	if dir[axis] > 0 {
		planeCoord += 1
	}

	makePos := func(uCoord, vCoord float32) mgl32.Vec3 {
		var pos mgl32.Vec3
		pos[axis] = planeCoord
		pos[u] = float32(min[u]) + uCoord
		pos[v] = float32(min[v]) + vCoord
		return pos
	}

	u0f, v0f := float32(u0), float32(v0)
	hf, wf := float32(height), float32(width)

	var positions [4]mgl32.Vec3
	var uvs [4]mgl32.Vec2
	if positivePattern {
		positions = [4]mgl32.Vec3{
			makePos(u0f, v0f),
			makePos(u0f+hf, v0f),
			makePos(u0f+hf, v0f+wf),
			makePos(u0f, v0f+wf),
		}
		uvs = [4]mgl32.Vec2{{0, 0}, {hf, 0}, {hf, wf}, {0, wf}}
	} else {
		positions = [4]mgl32.Vec3{
			makePos(u0f, v0f),
			makePos(u0f, v0f+wf),
			makePos(u0f+hf, v0f+wf),
			makePos(u0f+hf, v0f),
		}
		uvs = [4]mgl32.Vec2{{0, 0}, {0, wf}, {hf, wf}, {hf, 0}}
	}

	ao := [4]uint8{key.aoNN, key.aoPN, key.aoPP, key.aoNP}
	light := [4]uint32{key.lightNN, key.lightPN, key.lightPP, key.lightNP}
	if !positivePattern {
		ao = [4]uint8{key.aoNN, key.aoNP, key.aoPP, key.aoPN}
		light = [4]uint32{key.lightNN, key.lightNP, key.lightPP, key.lightPN}
	}

	var corners [4]Vertex
	for i := 0; i < 4; i++ {
		corners[i] = Vertex{Pos: positions[i], UV: uvs[i], Light: PackLight(light[i], ao[i], false, false)}
	}

	flip := shouldFlipGreedyQuad(ao, light)
	builder.AddQuad(Key{Kind: keyKindFor(face), BlockID: key.blockID, FaceName: key.faceName}, corners, flip)
}

func keyKindFor(face *registry.Face) KeyKind {
	if face.Independent {
		return KindFace
	}
	return KindBlock
}
