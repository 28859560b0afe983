package registry

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/voxel"
)

// AABB is an axis-aligned bounding box in unit-block space, [0,1]^3.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB builds an AABB from six scalar extents.
func NewAABB(minX, minY, minZ, maxX, maxY, maxZ float32) AABB {
	return AABB{Min: mgl32.Vec3{minX, minY, minZ}, Max: mgl32.Vec3{maxX, maxY, maxZ}}
}

func (a AABB) Width() float32  { return a.Max[0] - a.Min[0] }
func (a AABB) Height() float32 { return a.Max[1] - a.Min[1] }
func (a AABB) Depth() float32  { return a.Max[2] - a.Min[2] }

// Intersects reports whether two AABBs overlap on all three axes.
func (a AABB) Intersects(b AABB) bool {
	return a.Min[0] < b.Max[0] && a.Max[0] > b.Min[0] &&
		a.Min[1] < b.Max[1] && a.Max[1] > b.Min[1] &&
		a.Min[2] < b.Max[2] && a.Max[2] > b.Min[2]
}

// CornerData is one vertex of a BlockFace: a unit-cube position plus its UV.
type CornerData struct {
	Pos mgl32.Vec3
	UV  mgl32.Vec2
}

// Face is a quad of a block's geometry: a direction and four corners.
type Face struct {
	Name       string
	Dir        [3]int32
	Corners    [4]CornerData
	Independent bool
	Isolated   bool
}

// ConditionalPart is one branch of a DynamicPattern: if Rule matches the
// voxel's surroundings, these faces/AABBs/transparency replace the block's
// static geometry for that voxel.
type ConditionalPart struct {
	Rule            Rule
	Faces           []Face
	AABBs           []AABB
	Transparency    *[6]bool
	WorldSpace      bool
	RedLightLevel   *uint32
	GreenLightLevel *uint32
	BlueLightLevel  *uint32
}

// DynamicPattern is an ordered sequence of conditional parts; the first
// matching part wins.
type DynamicPattern struct {
	Parts []ConditionalPart
}

// Block is the immutable static description of a block type, as stored in
// the Registry. Field order and meaning follow the teacher's registry
// convention, generalized with the light/meshing properties this core
// needs (transparency per face, dynamic patterns, greedy-eligibility).
type Block struct {
	ID   uint32
	Name string

	Rotatable  bool
	YRotatable bool

	IsEmpty bool
	IsFluid bool
	IsPlant bool
	IsSolid bool

	// Transparency is in face order px, py, pz, nx, ny, nz.
	Transparency [6]bool
	LightReduce  bool

	RedLightLevel   uint32
	GreenLightLevel uint32
	BlueLightLevel  uint32

	DynamicPatterns []DynamicPattern

	Faces []Face
	AABBs []AABB

	// Derived flags, computed once by recomputeFlags.
	IsOpaque                   bool
	IsAllTransparent           bool
	HasUniformTransparency     bool
	HasStandardSixFaces        bool
	HasDiagonalFaces           bool
	IsFullBlock                bool
	IsLight                    bool
	GreedyMeshEligibleNoRotate bool

	staticTorchMask  uint8
	dynamicTorchMask uint8
}

const (
	redTorchMask   uint8 = 1 << 0
	greenTorchMask uint8 = 1 << 1
	blueTorchMask  uint8 = 1 << 2
	allTorchMasks        = redTorchMask | greenTorchMask | blueTorchMask
)

// DefaultAir returns the canonical air block: fully transparent, empty, no light.
func DefaultAir() Block {
	b := Block{
		ID:           0,
		Name:         "air",
		IsEmpty:      true,
		Transparency: [6]bool{true, true, true, true, true, true},
	}
	b.recomputeFlags()
	return b
}

// recomputeFlags derives IsOpaque/IsAllTransparent/torch masks/greedy
// eligibility from the block's authored fields. Called once by the
// Registry at build time (see Registry.buildCache), mirroring LightBlock's
// recompute_flags in the lighting crate this is grounded on.
func (b *Block) recomputeFlags() {
	allOpen := true
	allClosed := true
	for _, t := range b.Transparency {
		if t {
			allClosed = false
		} else {
			allOpen = false
		}
	}
	b.IsOpaque = allClosed
	b.IsAllTransparent = allOpen

	t0 := b.Transparency[0]
	uniform := true
	for _, t := range b.Transparency[1:] {
		if t != t0 {
			uniform = false
			break
		}
	}
	b.HasUniformTransparency = uniform

	var static uint8
	if b.RedLightLevel > 0 {
		static |= redTorchMask
	}
	if b.GreenLightLevel > 0 {
		static |= greenTorchMask
	}
	if b.BlueLightLevel > 0 {
		static |= blueTorchMask
	}

	var dynamic uint8
	for _, pattern := range b.DynamicPatterns {
		for _, part := range pattern.Parts {
			if part.RedLightLevel != nil && *part.RedLightLevel > 0 {
				dynamic |= redTorchMask
			}
			if part.GreenLightLevel != nil && *part.GreenLightLevel > 0 {
				dynamic |= greenTorchMask
			}
			if part.BlueLightLevel != nil && *part.BlueLightLevel > 0 {
				dynamic |= blueTorchMask
			}
			if dynamic == allTorchMasks {
				break
			}
		}
		if dynamic == allTorchMasks {
			break
		}
	}

	b.staticTorchMask = static
	b.dynamicTorchMask = dynamic
	b.IsLight = (static | dynamic) != 0

	var sumVolume float32
	for _, aabb := range b.AABBs {
		sumVolume += aabb.Width() * aabb.Height() * aabb.Depth()
	}
	b.IsFullBlock = absf32(sumVolume-1.0) < 1e-6

	faceNames := map[string]bool{}
	diagonal := false
	for _, f := range b.Faces {
		faceNames[f.Name] = true
		if f.Dir[0] != 0 && f.Dir[1] != 0 {
			diagonal = true
		}
		if f.Dir[0] != 0 && f.Dir[2] != 0 {
			diagonal = true
		}
		if f.Dir[1] != 0 && f.Dir[2] != 0 {
			diagonal = true
		}
	}
	b.HasDiagonalFaces = diagonal
	_, hasPX := faceNames["px"]
	_, hasNX := faceNames["nx"]
	_, hasPY := faceNames["py"]
	_, hasNY := faceNames["ny"]
	_, hasPZ := faceNames["pz"]
	_, hasNZ := faceNames["nz"]
	b.HasStandardSixFaces = hasPX && hasNX && hasPY && hasNY && hasPZ && hasNZ

	b.GreedyMeshEligibleNoRotate = !b.IsFluid && !b.Rotatable && !b.YRotatable &&
		len(b.DynamicPatterns) == 0 && b.IsFullBlock && !b.HasDiagonalFaces
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// HasStaticTorchColor reports whether the block statically emits the given channel.
func (b *Block) HasStaticTorchColor(c voxel.Color) bool {
	return b.staticTorchMask&colorMask(c) != 0
}

// HasDynamicTorchColor reports whether some dynamic pattern part may emit the given channel.
func (b *Block) HasDynamicTorchColor(c voxel.Color) bool {
	return b.dynamicTorchMask&colorMask(c) != 0
}

func colorMask(c voxel.Color) uint8 {
	switch c {
	case voxel.Red:
		return redTorchMask
	case voxel.Green:
		return greenTorchMask
	case voxel.Blue:
		return blueTorchMask
	default:
		return 0
	}
}

// GetTorchLightLevel returns the static light level for the given channel
// (0 for Sunlight, which blocks never "emit" in the static sense).
func (b *Block) GetTorchLightLevel(c voxel.Color) uint32 {
	switch c {
	case voxel.Red:
		return b.RedLightLevel
	case voxel.Green:
		return b.GreenLightLevel
	case voxel.Blue:
		return b.BlueLightLevel
	default:
		return 0
	}
}

// GetTorchLightLevelAtXYZ resolves the light level this block emits on the
// given channel at a specific voxel position, evaluating dynamic pattern
// parts in order and returning the first match's level for that channel.
// Falls back to the static level if no dynamic mask bit is set for this
// channel, or if no part matches.
func (b *Block) GetTorchLightLevelAtXYZ(vx, vy, vz int32, c voxel.Color, r VoxelReader) uint32 {
	mask := colorMask(c)
	if b.dynamicTorchMask&mask == 0 {
		return b.GetTorchLightLevel(c)
	}
	for _, pattern := range b.DynamicPatterns {
		for _, part := range pattern.Parts {
			level := partLevel(&part, c)
			if level == nil {
				continue
			}
			if Evaluate(part.Rule, vx, vy, vz, r) {
				return *level
			}
		}
	}
	return b.GetTorchLightLevel(c)
}

// GetTorchLightLevelsAtXYZ resolves red, green, and blue channel levels in a
// single pass over the dynamic patterns, stopping as soon as every channel
// that has a dynamic mask bit set has been resolved by some matching part.
func (b *Block) GetTorchLightLevelsAtXYZ(vx, vy, vz int32, r VoxelReader) (red, green, blue uint32) {
	red, green, blue = b.RedLightLevel, b.GreenLightLevel, b.BlueLightLevel
	unresolved := b.dynamicTorchMask
	if unresolved == 0 {
		return
	}

	for _, pattern := range b.DynamicPatterns {
		for _, part := range pattern.Parts {
			partMask := uint8(0)
			if unresolved&redTorchMask != 0 && part.RedLightLevel != nil {
				partMask |= redTorchMask
			}
			if unresolved&greenTorchMask != 0 && part.GreenLightLevel != nil {
				partMask |= greenTorchMask
			}
			if unresolved&blueTorchMask != 0 && part.BlueLightLevel != nil {
				partMask |= blueTorchMask
			}
			if partMask == 0 {
				continue
			}
			if !Evaluate(part.Rule, vx, vy, vz, r) {
				continue
			}
			if partMask&redTorchMask != 0 {
				red = *part.RedLightLevel
				unresolved &^= redTorchMask
			}
			if partMask&greenTorchMask != 0 {
				green = *part.GreenLightLevel
				unresolved &^= greenTorchMask
			}
			if partMask&blueTorchMask != 0 {
				blue = *part.BlueLightLevel
				unresolved &^= blueTorchMask
			}
			if unresolved == 0 {
				return
			}
		}
	}
	return
}

func partLevel(part *ConditionalPart, c voxel.Color) *uint32 {
	switch c {
	case voxel.Red:
		return part.RedLightLevel
	case voxel.Green:
		return part.GreenLightLevel
	case voxel.Blue:
		return part.BlueLightLevel
	default:
		return nil
	}
}

// StandardFaces returns the six axis-aligned unit-cube faces used by a
// default full block, matching the teacher-grounded BlockBuilder defaults.
func StandardFaces() []Face {
	return []Face{
		{
			Name: "nx", Dir: [3]int32{-1, 0, 0},
			Corners: [4]CornerData{
				{Pos: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{0, 1}},
				{Pos: mgl32.Vec3{0, 0, 0}, UV: mgl32.Vec2{0, 0}},
				{Pos: mgl32.Vec3{0, 1, 1}, UV: mgl32.Vec2{1, 1}},
				{Pos: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{1, 0}},
			},
		},
		{
			Name: "px", Dir: [3]int32{1, 0, 0},
			Corners: [4]CornerData{
				{Pos: mgl32.Vec3{1, 1, 1}, UV: mgl32.Vec2{0, 1}},
				{Pos: mgl32.Vec3{1, 0, 1}, UV: mgl32.Vec2{0, 0}},
				{Pos: mgl32.Vec3{1, 1, 0}, UV: mgl32.Vec2{1, 1}},
				{Pos: mgl32.Vec3{1, 0, 0}, UV: mgl32.Vec2{1, 0}},
			},
		},
		{
			Name: "ny", Dir: [3]int32{0, -1, 0},
			Corners: [4]CornerData{
				{Pos: mgl32.Vec3{1, 0, 1}, UV: mgl32.Vec2{1, 0}},
				{Pos: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{0, 0}},
				{Pos: mgl32.Vec3{1, 0, 0}, UV: mgl32.Vec2{1, 1}},
				{Pos: mgl32.Vec3{0, 0, 0}, UV: mgl32.Vec2{0, 1}},
			},
		},
		{
			Name: "py", Dir: [3]int32{0, 1, 0},
			Corners: [4]CornerData{
				{Pos: mgl32.Vec3{0, 1, 1}, UV: mgl32.Vec2{1, 1}},
				{Pos: mgl32.Vec3{1, 1, 1}, UV: mgl32.Vec2{0, 1}},
				{Pos: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{1, 0}},
				{Pos: mgl32.Vec3{1, 1, 0}, UV: mgl32.Vec2{0, 0}},
			},
		},
		{
			Name: "nz", Dir: [3]int32{0, 0, -1},
			Corners: [4]CornerData{
				{Pos: mgl32.Vec3{1, 0, 0}, UV: mgl32.Vec2{0, 0}},
				{Pos: mgl32.Vec3{0, 0, 0}, UV: mgl32.Vec2{1, 0}},
				{Pos: mgl32.Vec3{1, 1, 0}, UV: mgl32.Vec2{0, 1}},
				{Pos: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{1, 1}},
			},
		},
		{
			Name: "pz", Dir: [3]int32{0, 0, 1},
			Corners: [4]CornerData{
				{Pos: mgl32.Vec3{0, 0, 1}, UV: mgl32.Vec2{0, 0}},
				{Pos: mgl32.Vec3{1, 0, 1}, UV: mgl32.Vec2{1, 0}},
				{Pos: mgl32.Vec3{0, 1, 1}, UV: mgl32.Vec2{0, 1}},
				{Pos: mgl32.Vec3{1, 1, 1}, UV: mgl32.Vec2{1, 1}},
			},
		},
	}
}

// Builder constructs a Block with sensible defaults, mirroring the
// teacher-grounded BlockBuilder fluent API (one full unit cube, standard
// six faces, solid, opaque).
type Builder struct {
	b Block
}

// NewBlock starts a Builder for a named block id.
func NewBlock(id uint32, name string) *Builder {
	return &Builder{b: Block{
		ID:    id,
		Name:  name,
		Faces: StandardFaces(),
		AABBs: []AABB{NewAABB(0, 0, 0, 1, 1, 1)},
		IsSolid: true,
	}}
}

func (bld *Builder) Rotatable(v bool) *Builder             { bld.b.Rotatable = v; return bld }
func (bld *Builder) YRotatable(v bool) *Builder            { bld.b.YRotatable = v; return bld }
func (bld *Builder) IsEmpty(v bool) *Builder                { bld.b.IsEmpty = v; return bld }
func (bld *Builder) IsFluid(v bool) *Builder                { bld.b.IsFluid = v; return bld }
func (bld *Builder) IsPlant(v bool) *Builder                { bld.b.IsPlant = v; return bld }
func (bld *Builder) IsSolid(v bool) *Builder                { bld.b.IsSolid = v; return bld }
func (bld *Builder) Transparency(t [6]bool) *Builder        { bld.b.Transparency = t; return bld }
func (bld *Builder) LightReduce(v bool) *Builder             { bld.b.LightReduce = v; return bld }
func (bld *Builder) RedLightLevel(v uint32) *Builder        { bld.b.RedLightLevel = v; return bld }
func (bld *Builder) GreenLightLevel(v uint32) *Builder       { bld.b.GreenLightLevel = v; return bld }
func (bld *Builder) BlueLightLevel(v uint32) *Builder        { bld.b.BlueLightLevel = v; return bld }
func (bld *Builder) Faces(f []Face) *Builder                { bld.b.Faces = f; return bld }
func (bld *Builder) AABBs(a []AABB) *Builder                { bld.b.AABBs = a; return bld }
func (bld *Builder) DynamicPatterns(p []DynamicPattern) *Builder {
	bld.b.DynamicPatterns = p
	return bld
}

// Build finalizes the Block, computing its derived flags.
func (bld *Builder) Build() Block {
	bld.b.recomputeFlags()
	return bld.b
}
