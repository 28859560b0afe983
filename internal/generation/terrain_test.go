package generation

import (
	"testing"

	"voxelcore/internal/store"
	"voxelcore/internal/voxel"
)

const (
	chunkSize = 16
	maxHeight = 64
	subChunks = 4
	solidID   = 7
)

func newTestChunk(cx, cz int32) *store.Chunk {
	return store.NewChunk("test", cx, cz, chunkSize, maxHeight, subChunks)
}

func TestHeightmapStageIsDeterministicForAFixedSeed(t *testing.T) {
	stage := NewHeightmapStage(42, solidID)

	a := stage.Process(newTestChunk(0, 0))
	b := stage.Process(newTestChunk(0, 0))

	for lx := int32(0); lx < chunkSize; lx++ {
		for lz := int32(0); lz < chunkSize; lz++ {
			if a.LocalMaxHeight(lx, lz) != b.LocalMaxHeight(lx, lz) {
				t.Fatalf("height map differs at (%d,%d) across runs with the same seed", lx, lz)
			}
		}
	}
}

func TestHeightmapStageFillsOnlyUpToRecordedHeight(t *testing.T) {
	stage := NewHeightmapStage(42, solidID)
	c := stage.Process(newTestChunk(0, 0))

	for lx := int32(0); lx < chunkSize; lx += 4 {
		for lz := int32(0); lz < chunkSize; lz += 4 {
			height := c.LocalMaxHeight(lx, lz)

			for ly := int32(0); ly < int32(height); ly++ {
				if got := voxel.ExtractID(c.LocalRawVoxel(lx, ly, lz)); got != solidID {
					t.Errorf("(%d,%d,%d): got block id %d below the height map, want solid id %d", lx, ly, lz, got, solidID)
				}
			}
			if int32(height) < maxHeight {
				if got := voxel.ExtractID(c.LocalRawVoxel(lx, int32(height), lz)); got != 0 {
					t.Errorf("(%d,%d,%d): got block id %d at the height map's surface, want air (0)", lx, height, lz, got)
				}
			}
		}
	}
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	var order []string
	p := NewPipeline(
		recordingStage{name: "first", order: &order},
		recordingStage{name: "second", order: &order},
	)
	p.Run(newTestChunk(0, 0))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("got stage order %v, want [first second]", order)
	}
}

type recordingStage struct {
	name  string
	order *[]string
}

func (r recordingStage) Name() string { return r.name }
func (r recordingStage) Process(c *store.Chunk) *store.Chunk {
	*r.order = append(*r.order, r.name)
	return c
}
