package light

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"voxelcore/internal/registry"
	"voxelcore/internal/voxel"
)

// fakeSpace is a dense in-memory VoxelAccess over a single chunk-sized
// region, letting the scenario tests below exercise the flood-fill engine
// without standing up a full store/space stack.
type fakeSpace struct {
	shape  [3]int32
	voxels []uint32
	lights []uint32
}

func newFakeSpace(shape [3]int32) *fakeSpace {
	n := int(shape[0]) * int(shape[1]) * int(shape[2])
	return &fakeSpace{shape: shape, voxels: make([]uint32, n), lights: make([]uint32, n)}
}

func (f *fakeSpace) index(vx, vy, vz int32) (int, bool) {
	if vx < 0 || vy < 0 || vz < 0 || vx >= f.shape[0] || vy >= f.shape[1] || vz >= f.shape[2] {
		return 0, false
	}
	return int(vx*f.shape[1]*f.shape[2] + vy*f.shape[2] + vz), true
}

func (f *fakeSpace) GetRawVoxel(vx, vy, vz int32) uint32 {
	i, ok := f.index(vx, vy, vz)
	if !ok {
		return 0
	}
	return f.voxels[i]
}

func (f *fakeSpace) SetRawVoxel(vx, vy, vz int32, raw uint32) {
	if i, ok := f.index(vx, vy, vz); ok {
		f.voxels[i] = raw
	}
}

func (f *fakeSpace) GetRawLight(vx, vy, vz int32) uint32 {
	i, ok := f.index(vx, vy, vz)
	if !ok {
		return 0
	}
	return f.lights[i]
}

func (f *fakeSpace) SetRawLight(vx, vy, vz int32, raw uint32) bool {
	i, ok := f.index(vx, vy, vz)
	if !ok {
		return false
	}
	if f.lights[i] == raw {
		return false
	}
	f.lights[i] = raw
	return true
}

func (f *fakeSpace) GetMaxHeight(vx, vz int32) int32 { return f.shape[1] }

func testRegistry(extra ...registry.Block) *registry.Registry {
	air := registry.DefaultAir()
	blocks := append([]registry.Block{air}, extra...)
	return registry.New(blocks, air.ID, air.ID)
}

const (
	airID         = 0
	lightReduceID = 1
	redTorchID    = 2
)

func lightReducerBlock() registry.Block {
	return registry.NewBlock(lightReduceID, "light-reducer").
		IsSolid(false).
		Transparency([6]bool{true, true, true, true, true, true}).
		LightReduce(true).
		Build()
}

func redTorchBlock() registry.Block {
	return registry.NewBlock(redTorchID, "red-torch").
		IsSolid(false).
		Transparency([6]bool{true, true, true, true, true, true}).
		RedLightLevel(15).
		Build()
}

// S1 — sunlight descends through air: in an empty chunk, sunlight is 15 at
// every cell from the top down to the bottom.
func TestSunlightDescendsThroughEmptyChunk(t *testing.T) {
	const chunkSize, maxHeight = 16, 64
	shape := [3]int32{chunkSize, maxHeight, chunkSize}
	space := newFakeSpace(shape)
	reg := testRegistry()
	cfg := Config{ChunkSize: chunkSize, MaxHeight: maxHeight, MaxLightLevel: 15, MaxChunk: [2]int32{1000, 1000}, MinChunk: [2]int32{-1000, -1000}}

	result := Propagate(space, [3]int32{}, shape, reg, cfg)
	FloodLight(space, result.Sunlight, voxel.Sunlight, cfg, nil, reg)

	for y := int32(0); y < maxHeight; y++ {
		got := voxel.ExtractSunlight(space.GetRawLight(8, y, 8))
		require.Equalf(t, uint32(15), got, "sunlight at y=%d", y)
	}
}

// S2 — a light_reduce non-opaque block drops sunlight by exactly one level
// at itself; the column below is shadowed by Propagate's top-down sweep but
// relit by FloodLight's lateral spread from the untouched neighbor column,
// and a neighboring column with no reducer in it is unaffected throughout.
func TestLightReducerDropsOneSunlightLevel(t *testing.T) {
	const chunkSize, maxHeight = 16, 64
	shape := [3]int32{chunkSize, maxHeight, chunkSize}
	space := newFakeSpace(shape)
	reg := testRegistry(lightReducerBlock())
	cfg := Config{ChunkSize: chunkSize, MaxHeight: maxHeight, MaxLightLevel: 15, MaxChunk: [2]int32{1000, 1000}, MinChunk: [2]int32{-1000, -1000}}

	space.SetRawVoxel(8, 48, 8, voxel.InsertID(0, lightReduceID))

	result := Propagate(space, [3]int32{}, shape, reg, cfg)
	FloodLight(space, result.Sunlight, voxel.Sunlight, cfg, nil, reg)

	require.Equal(t, uint32(15), voxel.ExtractSunlight(space.GetRawLight(8, 49, 8)), "untouched column above the reducer stays at full sunlight")
	require.Equal(t, uint32(14), voxel.ExtractSunlight(space.GetRawLight(8, 48, 8)), "the reducer cell itself drops exactly one level")

	below := voxel.ExtractSunlight(space.GetRawLight(8, 47, 8))
	require.Greaterf(t, below, uint32(0), "the shadowed column is relit by lateral flood from the untouched neighbor, not left dark")
	require.Lessf(t, below, uint32(15), "the shadowed column still reads lower than the untouched neighbor column")

	require.Equal(t, uint32(15), voxel.ExtractSunlight(space.GetRawLight(9, 50, 8)), "a neighboring column with no reducer in it keeps full sunlight at every height")
}

// S3 — a red torch floods its neighborhood, and removing it clears the
// source and every cell that was lit only because of it.
func TestTorchFloodsAndRemoves(t *testing.T) {
	const chunkSize, maxHeight = 16, 64
	shape := [3]int32{chunkSize, maxHeight, chunkSize}
	space := newFakeSpace(shape)
	reg := testRegistry(redTorchBlock())
	cfg := Config{ChunkSize: chunkSize, MaxHeight: maxHeight, MaxLightLevel: 15, MaxChunk: [2]int32{1000, 1000}, MinChunk: [2]int32{-1000, -1000}}

	space.SetRawVoxel(8, 32, 8, voxel.InsertID(0, redTorchID))
	setLightLevel(space, 8, 32, 8, 15, voxel.Red)

	FloodLight(space, []Node{{Voxel: [3]int32{8, 32, 8}, Level: 15}}, voxel.Red, cfg, nil, reg)
	require.Greater(t, voxel.ExtractRed(space.GetRawLight(9, 32, 8)), uint32(0))

	RemoveLight(space, [3]int32{8, 32, 8}, voxel.Red, cfg, reg)

	require.Equal(t, uint32(0), voxel.ExtractRed(space.GetRawLight(8, 32, 8)))
	require.Equal(t, uint32(0), voxel.ExtractRed(space.GetRawLight(9, 32, 8)))
}

// originSpace is a VoxelAccess windowed at an arbitrary origin rather than
// zero, so a flood step's neighbor arithmetic can be exercised right at
// the edge of int32's range without the fake itself overflowing.
type originSpace struct {
	min    [3]int32
	shape  [3]int32
	voxels []uint32
	lights []uint32
}

func newOriginSpace(min, shape [3]int32) *originSpace {
	n := int(shape[0]) * int(shape[1]) * int(shape[2])
	return &originSpace{min: min, shape: shape, voxels: make([]uint32, n), lights: make([]uint32, n)}
}

func (o *originSpace) index(vx, vy, vz int32) (int, bool) {
	lx, ly, lz := vx-o.min[0], vy-o.min[1], vz-o.min[2]
	if lx < 0 || ly < 0 || lz < 0 || lx >= o.shape[0] || ly >= o.shape[1] || lz >= o.shape[2] {
		return 0, false
	}
	return int(lx*o.shape[1]*o.shape[2] + ly*o.shape[2] + lz), true
}

func (o *originSpace) GetRawVoxel(vx, vy, vz int32) uint32 {
	i, ok := o.index(vx, vy, vz)
	if !ok {
		return 0
	}
	return o.voxels[i]
}

func (o *originSpace) SetRawVoxel(vx, vy, vz int32, raw uint32) {
	if i, ok := o.index(vx, vy, vz); ok {
		o.voxels[i] = raw
	}
}

func (o *originSpace) GetRawLight(vx, vy, vz int32) uint32 {
	i, ok := o.index(vx, vy, vz)
	if !ok {
		return 0
	}
	return o.lights[i]
}

func (o *originSpace) SetRawLight(vx, vy, vz int32, raw uint32) bool {
	i, ok := o.index(vx, vy, vz)
	if !ok {
		return false
	}
	if o.lights[i] == raw {
		return false
	}
	o.lights[i] = raw
	return true
}

func (o *originSpace) GetMaxHeight(vx, vz int32) int32 { return o.shape[1] }

// A flood step must skip a neighbor coordinate that would overflow int32
// rather than silently wrap it into an unrelated voxel.
func TestFloodLightSkipsOverflowingNeighborCoordinates(t *testing.T) {
	const chunkSize = 16
	sourceChunkX := int32(math.MaxInt32) / chunkSize
	cfg := Config{ChunkSize: chunkSize, MaxHeight: 2, MaxLightLevel: 15, MinChunk: [2]int32{sourceChunkX, 0}, MaxChunk: [2]int32{sourceChunkX, 0}}

	space := newOriginSpace([3]int32{math.MaxInt32, 0, 0}, [3]int32{1, 2, 1})
	reg := testRegistry(redTorchBlock())

	space.SetRawVoxel(math.MaxInt32, 1, 0, voxel.InsertID(0, redTorchID))
	setLightLevel(space, math.MaxInt32, 1, 0, 15, voxel.Red)

	FloodLight(space, []Node{{Voxel: [3]int32{math.MaxInt32, 1, 0}, Level: 15}}, voxel.Red, cfg, nil, reg)

	require.Equal(t, uint32(15), voxel.ExtractRed(space.GetRawLight(math.MaxInt32, 1, 0)))
}

// Removal must likewise skip an overflowing neighbor step instead of
// wrapping, while still clearing the source voxel itself.
func TestRemoveLightSkipsOverflowingNeighborCoordinates(t *testing.T) {
	const chunkSize = 16
	sourceChunkX := int32(math.MaxInt32) / chunkSize
	cfg := Config{ChunkSize: chunkSize, MaxHeight: 2, MaxLightLevel: 15, MinChunk: [2]int32{sourceChunkX, 0}, MaxChunk: [2]int32{sourceChunkX, 0}}

	space := newOriginSpace([3]int32{math.MaxInt32, 0, 0}, [3]int32{1, 2, 1})
	reg := testRegistry(redTorchBlock())

	space.SetRawVoxel(math.MaxInt32, 1, 0, voxel.InsertID(0, redTorchID))
	setLightLevel(space, math.MaxInt32, 1, 0, 15, voxel.Red)

	RemoveLight(space, [3]int32{math.MaxInt32, 1, 0}, voxel.Red, cfg, reg)

	require.Equal(t, uint32(0), voxel.ExtractRed(space.GetRawLight(math.MaxInt32, 1, 0)))
}
