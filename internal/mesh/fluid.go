package mesh

import (
	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

// surfaceOffset insets a fluid's top face slightly below 1.0 so it never
// z-fights with a solid block placed directly above a shallow fluid.
const surfaceOffset = 0.005

// fluidSelfHeight is a fluid voxel's own surface height before any
// neighbor averaging, derived from its stage (0..15, deeper stage =
// shallower water) and floored so a fluid is never rendered perfectly
// flat against its supporting block.
func fluidSelfHeight(stage uint32) float32 {
	h := 0.875 - 0.1*float32(stage)
	if h < 0.1 {
		return 0.1
	}
	return h
}

// fluidHeightAt reports the height a neighboring cell contributes to a
// shared corner: its own effective height if it holds the same fluid, or
// 1.0 if the same fluid sits directly above it (a full column always
// presents a flat 1.0 top locally), or not-ok if it isn't part of this
// fluid body at all.
func fluidHeightAt(a Access, reg *registry.Registry, vx, vy, vz int32, fluidID uint32) (float32, bool) {
	block, raw := lookupAt(a, reg, vx, vy, vz)
	if block.ID == fluidID {
		return fluidSelfHeight(voxel.ExtractStage(raw)), true
	}
	aboveBlock, _ := lookupAt(a, reg, vx, vy+1, vz)
	if aboveBlock.ID == fluidID {
		return 1.0, true
	}
	return 0, false
}

// fluidCornerHeight computes one of the four top-face corner heights for
// a fluid voxel, per the averaging/forcing/collapsing rules: average the
// self height with up to three diagonal-adjacent contributors; force 1.0
// if the same fluid continues directly above any of the corner's four
// cells (a continuous surface shouldn't dip at the seam); otherwise, if
// this corner has no fluid neighbors at all and borders open air,
// collapse to a thin lip instead of extending the fluid's own height into
// empty space.
func fluidCornerHeight(a Access, reg *registry.Registry, vx, vy, vz int32, fluidID uint32, stage uint32, signX, signZ int32) float32 {
	selfHeight := fluidSelfHeight(stage)
	sum := selfHeight
	count := 1

	edgeX := [3]int32{vx + signX, vy, vz}
	edgeZ := [3]int32{vx, vy, vz + signZ}
	diag := [3]int32{vx + signX, vy, vz + signZ}
	neighbors := [3][3]int32{edgeX, edgeZ, diag}

	for _, n := range neighbors {
		if h, ok := fluidHeightAt(a, reg, n[0], n[1], n[2], fluidID); ok {
			sum += h
			count++
		}
	}

	above := [4][3]int32{
		{vx, vy + 1, vz},
		{edgeX[0], vy + 1, edgeX[2]},
		{edgeZ[0], vy + 1, edgeZ[2]},
		{diag[0], vy + 1, diag[2]},
	}
	for _, p := range above {
		block, _ := lookupAt(a, reg, p[0], p[1], p[2])
		if block.ID == fluidID {
			return 1.0
		}
	}

	if count == 1 {
		for _, n := range neighbors {
			block, _ := lookupAt(a, reg, n[0], n[1], n[2])
			if block.IsEmpty {
				return 0.1
			}
		}
	}

	return sum / float32(count)
}

// fluidCorners returns the fluid's four top-face corner heights, indexed
// (-x,-z), (-x,+z), (+x,-z), (+x,+z).
func fluidCorners(a Access, reg *registry.Registry, vx, vy, vz int32, fluidID uint32, stage uint32) (nn, np, pn, pp float32) {
	nn = fluidCornerHeight(a, reg, vx, vy, vz, fluidID, stage, -1, -1)
	np = fluidCornerHeight(a, reg, vx, vy, vz, fluidID, stage, -1, 1)
	pn = fluidCornerHeight(a, reg, vx, vy, vz, fluidID, stage, 1, -1)
	pp = fluidCornerHeight(a, reg, vx, vy, vz, fluidID, stage, 1, 1)
	return
}
