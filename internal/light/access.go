package light

import (
	"math"

	"voxelcore/internal/voxel"
)

// Node is one entry in a flood-fill queue: a voxel position and the light
// level being propagated from (or removed at) it.
type Node struct {
	Voxel [3]int32
	Level uint32
}

// VoxelAccess is the read/write surface the light engine needs over a
// windowed view of the world (typically a Space). It operates on raw
// voxel/light words directly rather than per-channel convenience
// accessors, matching how the flood-fill hot path in the region this
// engine is grounded on bypasses those accessors for speed.
type VoxelAccess interface {
	GetRawVoxel(vx, vy, vz int32) uint32
	GetRawLight(vx, vy, vz int32) uint32
	SetRawLight(vx, vy, vz int32, level uint32) bool
	GetMaxHeight(vx, vz int32) int32
}

// neighbors are the six axis-aligned voxel offsets, ordered +x, -x, +z,
// -z, +y, -y. Direction index in this order is used throughout the engine
// to index into sourceFaceByDir/targetFaceByDir.
var neighbors = [6][3]int32{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 0, 1},
	{0, 0, -1},
	{0, 1, 0},
	{0, -1, 0},
}

// sourceFaceByDir/targetFaceByDir map a neighbor direction index to the
// Block.Transparency face index (order px=0,py=1,pz=2,nx=3,ny=4,nz=5) that
// must be open on the source/target side of that step for light to cross.
var sourceFaceByDir = [6]int{0, 3, 2, 5, 1, 4}
var targetFaceByDir = [6]int{3, 0, 5, 2, 4, 1}

func canEnterDirection(source, target [6]bool, dirIndex int) bool {
	return source[sourceFaceByDir[dirIndex]] && target[targetFaceByDir[dirIndex]]
}

func canEnterIntoDirection(target [6]bool, dirIndex int) bool {
	return target[targetFaceByDir[dirIndex]]
}

func torchColorMask(c voxel.Color) uint8 {
	switch c {
	case voxel.Red:
		return 1 << 0
	case voxel.Green:
		return 1 << 1
	case voxel.Blue:
		return 1 << 2
	default:
		return 0
	}
}

// checkedAddI32 is int32's checked_add: it reports ok=false instead of
// wrapping when v+delta would overflow, so a flood step can skip the
// neighbor rather than silently corrupting the coordinate.
func checkedAddI32(v, delta int32) (int32, bool) {
	if delta > 0 && v > math.MaxInt32-delta {
		return 0, false
	}
	if delta < 0 && v < math.MinInt32-delta {
		return 0, false
	}
	return v + delta, true
}

func getLightLevel(space VoxelAccess, vx, vy, vz int32, color voxel.Color) uint32 {
	return voxel.Extract(space.GetRawLight(vx, vy, vz), color)
}

func setLightLevel(space VoxelAccess, vx, vy, vz int32, level uint32, color voxel.Color) {
	raw := space.GetRawLight(vx, vy, vz)
	inserted := voxel.Insert(raw, color, level)
	if inserted != raw {
		space.SetRawLight(vx, vy, vz, inserted)
	}
}
