package voxel

import "math"

// Rotation identifies which of the six faces of a block points "up" in
// world space. The zero value (PY) is the default, unrotated orientation.
type Rotation uint32

const (
	PYRotation Rotation = iota
	NYRotation
	PXRotation
	NXRotation
	PZRotation
	NZRotation
)

// YRotation is one of eight 45-degree yaw segments applied on top of a Rotation.
type YRotation uint32

const (
	Y000 YRotation = iota
	Y045
	Y090
	Y135
	Y180
	Y225
	Y270
	Y315
)

var yRotationDegrees = [8]float64{0, 45, 90, 135, 180, 225, 270, 315}

const piOver2 = math.Pi / 2

// BlockRotation is the decoded (primary orientation, yaw) pair extracted
// from a packed voxel word, together with the geometry operations the
// mesher and registry need to perform on it.
type BlockRotation struct {
	Value Rotation
	Yaw   YRotation
}

// Encode builds a BlockRotation from the raw (rotation, yRotation) nibbles
// stored in a packed voxel word. Out-of-range rotation values fall back to
// PYRotation and yaw values are masked to their low three bits rather than
// panicking — malformed input never crashes this module.
func Encode(value uint32, yRotation uint32) BlockRotation {
	v := Rotation(value)
	if v > NZRotation {
		v = PYRotation
	}
	y := YRotation(yRotation & 0x7)
	return BlockRotation{Value: v, Yaw: y}
}

// Decode returns the raw (rotation, yRotation) nibble pair for this rotation.
func (r BlockRotation) Decode() (uint32, uint32) {
	return uint32(r.Value), uint32(r.Yaw)
}

func (r BlockRotation) yawRadians() float64 {
	return yRotationDegrees[r.Yaw&0x7] * math.Pi / 180
}

// Rotate applies this rotation to a 3D position, optionally translating
// the result back into the [0,1]^3 unit cube afterward (used when rotating
// face geometry rather than direction vectors).
func (r BlockRotation) Rotate(node *[3]float64, translate bool) {
	theta := r.yawRadians()
	switch r.Value {
	case PXRotation:
		if theta != 0 {
			rotateY(node, theta)
		}
		rotateZ(node, -piOver2)
		if translate {
			node[1] += 1.0
		}
	case NXRotation:
		if theta != 0 {
			rotateY(node, theta)
		}
		rotateZ(node, piOver2)
		if translate {
			node[0] += 1.0
		}
	case PYRotation:
		if theta != 0 {
			rotateY(node, theta)
		}
	case NYRotation:
		if theta != 0 {
			rotateY(node, theta)
		}
		rotateX(node, piOver2*2.0)
		if translate {
			node[1] += 1.0
			node[2] += 1.0
		}
	case PZRotation:
		if theta != 0 {
			rotateY(node, theta)
		}
		rotateX(node, piOver2)
		if translate {
			node[1] += 1.0
		}
	case NZRotation:
		if theta != 0 {
			rotateY(node, theta)
		}
		rotateX(node, -piOver2)
		if translate {
			node[2] += 1.0
		}
	}
}

// RotateInverse applies the inverse of this rotation.
func (r BlockRotation) RotateInverse(node *[3]float64, translate bool) {
	switch r.Value {
	case PXRotation:
		BlockRotation{Value: NXRotation, Yaw: r.Yaw}.Rotate(node, translate)
	case NXRotation:
		BlockRotation{Value: PXRotation, Yaw: r.Yaw}.Rotate(node, translate)
	case PYRotation:
		BlockRotation{Value: NYRotation, Yaw: r.Yaw}.Rotate(node, translate)
	case NYRotation:
		BlockRotation{Value: PYRotation, Yaw: r.Yaw}.Rotate(node, translate)
	case PZRotation:
		BlockRotation{Value: NZRotation, Yaw: r.Yaw}.Rotate(node, translate)
	case NZRotation:
		BlockRotation{Value: PZRotation, Yaw: r.Yaw}.Rotate(node, translate)
	}
}

func rotateX(node *[3]float64, theta float64) {
	sin, cos := math.Sincos(theta)
	y, z := node[1], node[2]
	node[1] = y*cos - z*sin
	node[2] = z*cos + y*sin
}

func rotateY(node *[3]float64, theta float64) {
	sin, cos := math.Sincos(theta)
	x, z := node[0], node[2]
	node[0] = x*cos + z*sin
	node[2] = z*cos - x*sin
}

func rotateZ(node *[3]float64, theta float64) {
	sin, cos := math.Sincos(theta)
	x, y := node[0], node[1]
	node[0] = x*cos - y*sin
	node[1] = y*cos + x*sin
}

// RotationFromRaw decodes the BlockRotation embedded in a packed voxel word.
func RotationFromRaw(raw uint32) BlockRotation {
	return Encode(ExtractRotation(raw), ExtractYRotation(raw))
}
