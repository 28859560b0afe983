package space

import (
	"testing"

	"voxelcore/internal/store"
	"voxelcore/internal/voxel"
)

type fakeProvider struct {
	chunks map[[2]int32]*store.Chunk
}

func (p *fakeProvider) Get(coord [2]int32) *store.Chunk { return p.chunks[coord] }

func newFakeProvider(coords ...[2]int32) *fakeProvider {
	p := &fakeProvider{chunks: make(map[[2]int32]*store.Chunk)}
	for _, c := range coords {
		p.chunks[c] = store.NewChunk("test", c[0], c[1], 16, 64, 4)
	}
	return p
}

func testOptions() Options {
	return Options{Margin: 16, ChunkSize: 16, SubChunks: 4, MaxHeight: 64, MaxLightLevel: 15}
}

func TestGetRawVoxelPanicsWithoutNeedsVoxels(t *testing.T) {
	provider := newFakeProvider([2]int32{0, 0})
	sp := NewBuilder(provider, [2]int32{0, 0}, testOptions()).NeedsLights().Build()

	defer func() {
		if recover() == nil {
			t.Errorf("expected GetRawVoxel to panic when voxels were not requested")
		}
	}()
	sp.GetRawVoxel(0, 0, 0)
}

func TestGetRawVoxelReadsCenterChunkData(t *testing.T) {
	provider := newFakeProvider([2]int32{0, 0})
	c := provider.chunks[[2]int32{0, 0}]
	c.SetLocalRawVoxel(5, 5, 5, voxel.InsertID(0, 42))

	sp := NewBuilder(provider, [2]int32{0, 0}, testOptions()).NeedsVoxels().Build()
	got := voxel.ExtractID(sp.GetRawVoxel(5, 5, 5))
	if got != 42 {
		t.Errorf("GetRawVoxel: got id %d, want 42", got)
	}
}

func TestGetRawVoxelReturnsZeroForUnloadedNeighborChunk(t *testing.T) {
	provider := newFakeProvider([2]int32{0, 0})
	sp := NewBuilder(provider, [2]int32{0, 0}, testOptions()).NeedsVoxels().Build()

	// A voxel in a neighboring chunk that was never provided should read as
	// empty rather than panic.
	got := sp.GetRawVoxel(-20, 0, 0)
	if got != 0 {
		t.Errorf("GetRawVoxel for an unloaded neighbor: got %d, want 0", got)
	}
}

func TestStrictBuildPanicsOnMissingNeighborChunk(t *testing.T) {
	provider := newFakeProvider([2]int32{0, 0})

	defer func() {
		if recover() == nil {
			t.Errorf("expected Strict().Build() to panic when a neighbor chunk is missing")
		}
	}()
	NewBuilder(provider, [2]int32{0, 0}, testOptions()).NeedsVoxels().Strict().Build()
}

func TestSetRawLightMarksUpdatedLevel(t *testing.T) {
	provider := newFakeProvider([2]int32{0, 0})
	sp := NewBuilder(provider, [2]int32{0, 0}, testOptions()).NeedsLights().Build()

	sp.SetRawLight(0, 0, 0, voxel.InsertSunlight(0, 15))

	if len(sp.UpdatedLevels) == 0 {
		t.Errorf("expected SetRawLight to record at least one updated sub-chunk level")
	}
}
