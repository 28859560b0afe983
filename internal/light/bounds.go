package light

import "math"

// Bounds limits flood-fill/propagation to a rectangular region of the
// world on the X/Z plane (Y is always limited separately by Config's
// MaxHeight). A zero-dimension Shape names an empty region, not an
// unbounded one — ContainsXZ always reports false for it.
type Bounds struct {
	Min   [3]int32
	Shape [3]int32
}

// ContainsXZ reports whether (vx, vz) lies within the bounds. Uses a
// 32-bit fast path when it provably cannot overflow, falling back to
// saturating 64-bit arithmetic otherwise — mirrors the overflow-safety
// approach of the region this module is grounded on.
func (b Bounds) ContainsXZ(vx, vz int32) bool {
	if b.Shape[0] == 0 || b.Shape[2] == 0 {
		return false
	}

	if b.Shape[0] <= math.MaxInt32-b.Min[0] && b.Shape[2] <= math.MaxInt32-b.Min[2] {
		endX := b.Min[0] + b.Shape[0]
		endZ := b.Min[2] + b.Shape[2]
		return vx >= b.Min[0] && vx < endX && vz >= b.Min[2] && vz < endZ
	}

	startX, startZ := int64(b.Min[0]), int64(b.Min[2])
	endX := satAddI64(startX, int64(b.Shape[0]))
	endZ := satAddI64(startZ, int64(b.Shape[2]))
	x64, z64 := int64(vx), int64(vz)
	return x64 >= startX && x64 < endX && z64 >= startZ && z64 < endZ
}

func satAddI64(a, b int64) int64 {
	sum := a + b
	if b > 0 && sum < a {
		return math.MaxInt64
	}
	if b < 0 && sum > a {
		return math.MinInt64
	}
	return sum
}
