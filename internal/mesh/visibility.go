package mesh

import (
	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

// Access is the read surface the mesher needs over a windowed region: raw
// voxel words (for neighbor/occlusion checks) and raw light words (for
// per-corner light sampling). *space.Space satisfies this directly.
type Access interface {
	GetRawVoxel(vx, vy, vz int32) uint32
	GetRawLight(vx, vy, vz int32) uint32
}

func lookupAt(a Access, reg *registry.Registry, vx, vy, vz int32) (*registry.Block, uint32) {
	raw := a.GetRawVoxel(vx, vy, vz)
	return reg.Lookup(voxel.ExtractID(raw)), raw
}

// shouldRenderFace decides whether the face of `self` pointing toward
// `neighbor` needs geometry. Mirrors the naive mesher's render rule:
// always render against empty space; a see-through block renders against
// a different, also-see-through (or non-overlapping) neighbor; a fluid
// renders against an opaque non-fluid neighbor; an ordinary opaque block
// is culled only by a neighbor that is both opaque and a full unit cube
// (a slab or stair neighbor still leaves a gap to mesh).
func shouldRenderFace(self, neighbor *registry.Block) bool {
	if neighbor.IsEmpty {
		return true
	}
	if self.IsFluid {
		return neighbor.IsOpaque && !neighbor.IsFluid
	}
	if !self.IsOpaque {
		if neighbor.ID == self.ID {
			return false
		}
		if !neighbor.IsOpaque {
			return true
		}
		return !aabbsOverlap(self, neighbor)
	}
	return !(neighbor.IsOpaque && neighbor.IsFullBlock)
}

func aabbsOverlap(self, neighbor *registry.Block) bool {
	if len(self.AABBs) == 0 || len(neighbor.AABBs) == 0 {
		return false
	}
	for _, a := range self.AABBs {
		for _, b := range neighbor.AABBs {
			if a.Intersects(b) {
				return true
			}
		}
	}
	return false
}

// isOpaqueAt reports whether the voxel at (vx,vy,vz) is opaque, used by
// both interior-cull and ambient-occlusion sampling.
func isOpaqueAt(a Access, reg *registry.Registry, vx, vy, vz int32) bool {
	block, _ := lookupAt(a, reg, vx, vy, vz)
	return block.IsOpaque
}

// allNeighborsOpaque is the naive mesher's interior-cull test: a fully
// surrounded opaque voxel contributes no visible geometry at all.
func allNeighborsOpaque(a Access, reg *registry.Registry, vx, vy, vz int32) bool {
	return isOpaqueAt(a, reg, vx+1, vy, vz) &&
		isOpaqueAt(a, reg, vx-1, vy, vz) &&
		isOpaqueAt(a, reg, vx, vy+1, vz) &&
		isOpaqueAt(a, reg, vx, vy-1, vz) &&
		isOpaqueAt(a, reg, vx, vy, vz+1) &&
		isOpaqueAt(a, reg, vx, vy, vz-1)
}

// inPlaneAxes returns the two axis indices spanning the plane
// perpendicular to a face direction's fixed axis.
func inPlaneAxes(dir [3]int32) (u, v int) {
	switch {
	case dir[0] != 0:
		return 1, 2
	case dir[1] != 0:
		return 0, 2
	default:
		return 0, 1
	}
}

// cornerAO samples the classic three-neighbor voxel ambient occlusion
// value (0..3, 0 darkest) for one quad corner: the two edge-adjacent
// voxels and the diagonal corner voxel, all offset from the face's
// outward neighbor cell along the in-plane axes toward that corner. This
// is an approximation of the source mesher's full diagonal-leak rejection
// rule set (see DESIGN.md); it captures the same visual cue — darkening
// concave corners — with a much smaller rule count.
func cornerAO(a Access, reg *registry.Registry, nvx, nvy, nvz int32, dir [3]int32, signU, signV int32) uint8 {
	u, v := inPlaneAxes(dir)

	offsetAxis := func(base [3]int32, axis int, amount int32) [3]int32 {
		base[axis] += amount
		return base
	}

	base := [3]int32{nvx, nvy, nvz}
	side1 := offsetAxis(base, u, signU)
	side2 := offsetAxis(base, v, signV)
	corner := offsetAxis(offsetAxis(base, u, signU), v, signV)

	s1 := isOpaqueAt(a, reg, side1[0], side1[1], side1[2])
	s2 := isOpaqueAt(a, reg, side2[0], side2[1], side2[2])
	if s1 && s2 {
		return 0
	}
	c := isOpaqueAt(a, reg, corner[0], corner[1], corner[2])
	occluded := 0
	if s1 {
		occluded++
	}
	if s2 {
		occluded++
	}
	if c {
		occluded++
	}
	return uint8(3 - occluded)
}

// hasChannelMidpointAnomaly reports whether one off-diagonal corner's
// channel value bulges past the midpoint of the two main-diagonal corners
// (a, d) enough that splitting the quad along that diagonal would read as
// a lighting discontinuity.
func hasChannelMidpointAnomaly(a, b, c, d uint32) bool {
	sum := a + d
	return (2*b > sum && sum > 2*c) || (2*c > sum && sum > 2*b)
}

// quadChannelPrefersFlip is the per-channel tie-break the ambient-
// occlusion-sum test falls back on when it doesn't already decide the
// split: checked red, then green, then blue, each looking for either an
// "ozao" imbalance (the main a/d diagonal's channel sum reads lower than
// the b/c diagonal while the AO sums are tied) or a midpoint anomaly (one
// corner unlit in that channel while the opposite corners bulge past the
// main diagonal's midpoint). aoTied must be true only when the caller's
// AO-sum comparison was an exact tie; the anomaly check still applies
// even when it wasn't.
func quadChannelPrefersFlip(aoTied bool, lightA, lightB, lightC, lightD uint32) bool {
	channel := func(shift uint) bool {
		a := (lightA >> shift) & 0xF
		b := (lightB >> shift) & 0xF
		c := (lightC >> shift) & 0xF
		d := (lightD >> shift) & 0xF
		ozao := aoTied && a+d < b+c
		anomaly := (a == 0 || b == 0 || c == 0 || d == 0) && hasChannelMidpointAnomaly(a, b, c, d)
		return ozao || anomaly
	}
	return channel(uint(voxel.RedShift)) || channel(uint(voxel.GreenShift)) || channel(uint(voxel.BlueShift))
}

// shouldFlipGreedyQuad is shouldFlipQuad's counterpart for a merged
// greedy quad, whose corners run NN, PN, PP, NP — so the main diagonal is
// (0,2) rather than naive's (0,3). It also skips the per-channel
// tie-break outright when the AO sums aren't tied and every corner has
// light in every channel, since the anomaly check can never fire then.
func shouldFlipGreedyQuad(ao [4]uint8, light [4]uint32) bool {
	diagSum := uint32(ao[0]) + uint32(ao[2])
	offSum := uint32(ao[1]) + uint32(ao[3])
	if diagSum > offSum {
		return true
	}
	tied := diagSum == offSum
	if !tied && allChannelsLit(light) {
		return false
	}
	return quadChannelPrefersFlip(tied, light[0], light[1], light[3], light[2])
}

func allChannelsLit(light [4]uint32) bool {
	for _, shift := range [3]uint{uint(voxel.RedShift), uint(voxel.GreenShift), uint(voxel.BlueShift)} {
		for _, l := range light {
			if (l>>shift)&0xF == 0 {
				return false
			}
		}
	}
	return true
}

// cornerLight averages the non-opaque octant samples' raw light words
// around one quad corner (the neighbor cell itself plus the same three
// offsets cornerAO inspects), skipping any sample whose voxel is opaque.
// A corner with no surviving samples is dark (light word 0).
func cornerLight(a Access, reg *registry.Registry, nvx, nvy, nvz int32, dir [3]int32, signU, signV int32) uint32 {
	u, v := inPlaneAxes(dir)
	offsetAxis := func(base [3]int32, axis int, amount int32) [3]int32 {
		base[axis] += amount
		return base
	}
	base := [3]int32{nvx, nvy, nvz}
	samples := [4][3]int32{
		base,
		offsetAxis(base, u, signU),
		offsetAxis(base, v, signV),
		offsetAxis(offsetAxis(base, u, signU), v, signV),
	}

	var sumSun, sumRed, sumGreen, sumBlue, count uint32
	for _, s := range samples {
		if isOpaqueAt(a, reg, s[0], s[1], s[2]) {
			continue
		}
		raw := a.GetRawLight(s[0], s[1], s[2])
		sumSun += voxel.ExtractSunlight(raw)
		sumRed += voxel.ExtractRed(raw)
		sumGreen += voxel.ExtractGreen(raw)
		sumBlue += voxel.ExtractBlue(raw)
		count++
	}
	if count == 0 {
		return 0
	}
	light := uint32(0)
	light = voxel.InsertSunlight(light, sumSun/count)
	light = voxel.InsertRed(light, sumRed/count)
	light = voxel.InsertGreen(light, sumGreen/count)
	light = voxel.InsertBlue(light, sumBlue/count)
	return light
}
