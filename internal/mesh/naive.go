package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

// MeshSpace runs the naive, per-voxel mesher over the voxel-space
// rectangle [min, min+shape) of a, returning every non-empty geometry
// bucket the region produced.
func MeshSpace(a Access, reg *registry.Registry, min, shape [3]int32) []*Geometry {
	builder := NewBuilder()

	for x := int32(0); x < shape[0]; x++ {
		vx := min[0] + x
		for y := int32(0); y < shape[1]; y++ {
			vy := min[1] + y
			for z := int32(0); z < shape[2]; z++ {
				vz := min[2] + z
				meshVoxel(builder, a, reg, vx, vy, vz)
			}
		}
	}

	return builder.Geometries()
}

func meshVoxel(builder *Builder, a Access, reg *registry.Registry, vx, vy, vz int32) {
	block, raw := lookupAt(a, reg, vx, vy, vz)
	if block.IsEmpty {
		return
	}
	if block.IsOpaque && allNeighborsOpaque(a, reg, vx, vy, vz) {
		return
	}

	if block.IsFluid && block.HasStandardSixFaces {
		emitFluidFaces(builder, a, reg, block, raw, vx, vy, vz)
		return
	}

	rot := voxel.RotationFromRaw(raw)

	if len(block.DynamicPatterns) > 0 {
		for _, pattern := range block.DynamicPatterns {
			for _, part := range pattern.Parts {
				if !registry.Evaluate(part.Rule, vx, vy, vz, a) {
					continue
				}
				for _, face := range part.Faces {
					emitFace(builder, a, reg, block, rot, vx, vy, vz, face, part.WorldSpace)
				}
				return
			}
		}
	}

	for _, face := range block.Faces {
		emitFace(builder, a, reg, block, rot, vx, vy, vz, face, false)
	}
}

func round64(v float64) int32 {
	return int32(math.Round(v))
}

func signOfUnit(v float32) int32 {
	if v > 0.5 {
		return 1
	}
	return -1
}

func cornerSign(pos mgl32.Vec3, dir [3]int32) (signU, signV int32) {
	u, v := inPlaneAxes(dir)
	return signOfUnit(pos[u]), signOfUnit(pos[v])
}

func emitFace(builder *Builder, a Access, reg *registry.Registry, block *registry.Block, rot voxel.BlockRotation, vx, vy, vz int32, face registry.Face, worldSpace bool) {
	effDir := [3]float64{float64(face.Dir[0]), float64(face.Dir[1]), float64(face.Dir[2])}
	if block.Rotatable && !worldSpace {
		rot.Rotate(&effDir, false)
	}
	ddx, ddy, ddz := round64(effDir[0]), round64(effDir[1]), round64(effDir[2])

	neighborBlock, _ := lookupAt(a, reg, vx+ddx, vy+ddy, vz+ddz)
	if !shouldRenderFace(block, neighborBlock) {
		return
	}

	dirI := [3]int32{ddx, ddy, ddz}
	key := keyFor(block, face, vx, vy, vz)

	var corners [4]Vertex
	var aoVals [4]uint8
	var lightVals [4]uint32
	for i, c := range face.Corners {
		pos := [3]float64{float64(c.Pos[0]), float64(c.Pos[1]), float64(c.Pos[2])}
		if block.Rotatable && !worldSpace {
			rot.Rotate(&pos, true)
		}
		worldPos := mgl32.Vec3{
			float32(vx) + float32(pos[0]),
			float32(vy) + float32(pos[1]),
			float32(vz) + float32(pos[2]),
		}

		signU, signV := cornerSign(c.Pos, face.Dir)
		ao := cornerAO(a, reg, vx+ddx, vy+ddy, vz+ddz, dirI, signU, signV)
		light := cornerLight(a, reg, vx+ddx, vy+ddy, vz+ddz, dirI, signU, signV)
		aoVals[i] = ao
		lightVals[i] = light
		corners[i] = Vertex{Pos: worldPos, UV: c.UV, Light: PackLight(light, ao, false, false)}
	}

	flip := shouldFlipQuad(aoVals, lightVals)
	builder.AddQuad(key, corners, flip)
}

// shouldFlipQuad decides which diagonal a quad splits on: the primary
// test compares the ambient-occlusion sum of the 0/3 diagonal against the
// 1/2 diagonal, and a per-channel tie-break (ozao imbalance plus a
// midpoint-anomaly check) runs whenever that comparison doesn't already
// favor the default split.
func shouldFlipQuad(ao [4]uint8, light [4]uint32) bool {
	diagSum := uint32(ao[0]) + uint32(ao[3])
	offSum := uint32(ao[1]) + uint32(ao[2])
	if diagSum > offSum {
		return true
	}
	return quadChannelPrefersFlip(diagSum == offSum, light[0], light[1], light[2], light[3])
}

func cornerHeightFor(signX, signZ int32, nn, np, pn, pp float32) float32 {
	switch {
	case signX < 0 && signZ < 0:
		return nn
	case signX < 0 && signZ >= 0:
		return np
	case signX >= 0 && signZ < 0:
		return pn
	default:
		return pp
	}
}

func emitFluidFaces(builder *Builder, a Access, reg *registry.Registry, block *registry.Block, raw uint32, vx, vy, vz int32) {
	stage := voxel.ExtractStage(raw)
	nn, np, pn, pp := fluidCorners(a, reg, vx, vy, vz, block.ID, stage)

	for _, face := range block.Faces {
		dir := face.Dir
		neighborBlock, _ := lookupAt(a, reg, vx+dir[0], vy+dir[1], vz+dir[2])
		if !shouldRenderFace(block, neighborBlock) {
			continue
		}

		key := keyFor(block, face, vx, vy, vz)
		var corners [4]Vertex
		var aoVals [4]uint8
		var lightVals [4]uint32
		for i, c := range face.Corners {
			y := c.Pos[1]
			signX := signOfUnit(c.Pos[0])
			signZ := signOfUnit(c.Pos[2])
			wave := false
			if c.Pos[1] > 0.5 {
				y = cornerHeightFor(signX, signZ, nn, np, pn, pp)
				if dir[1] > 0 {
					y -= surfaceOffset
				}
				wave = true
			}

			worldPos := mgl32.Vec3{float32(vx) + c.Pos[0], float32(vy) + y, float32(vz) + c.Pos[2]}
			signU, signV := cornerSign(c.Pos, dir)
			ao := cornerAO(a, reg, vx+dir[0], vy+dir[1], vz+dir[2], dir, signU, signV)
			light := cornerLight(a, reg, vx+dir[0], vy+dir[1], vz+dir[2], dir, signU, signV)
			aoVals[i] = ao
			lightVals[i] = light
			corners[i] = Vertex{Pos: worldPos, UV: c.UV, Light: PackLight(light, ao, true, wave)}
		}

		flip := shouldFlipQuad(aoVals, lightVals)
		builder.AddQuad(key, corners, flip)
	}
}
