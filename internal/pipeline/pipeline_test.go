package pipeline

import (
	"testing"
	"time"

	"voxelcore/internal/config"
	"voxelcore/internal/generation"
	"voxelcore/internal/registry"
	"voxelcore/internal/store"
)

func testRegistry() *registry.Registry {
	air := registry.DefaultAir()
	stone := registry.NewBlock(1, "stone").Build()
	return registry.New([]registry.Block{air, stone}, air.ID, air.ID)
}

func testConfig() *config.WorldConfig {
	c := config.Defaults()
	c.ChunkSize = 16
	c.MaxHeight = 64
	c.SubChunks = 4
	c.MaxLightLevel = 15
	c.MinChunk = [2]int32{-4, -4}
	c.MaxChunk = [2]int32{4, 4}
	return c
}

func TestPipelineAdvancesASingleChunkToReady(t *testing.T) {
	cfg := testConfig()
	st := store.NewStore(cfg)
	reg := testRegistry()
	gen := generation.NewPipeline(generation.NewHeightmapStage(1, 1))

	lightRadius := (int32(cfg.MaxLightLevel) + cfg.ChunkSize - 1) / cfg.ChunkSize
	p := New(st, reg, gen, 4, lightRadius, true)
	defer p.Close()

	p.AddTicket([2]int32{0, 0})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if st.IsChunkReady([2]int32{0, 0}) {
			c := st.Get([2]int32{0, 0})
			if len(c.Meshes) == 0 {
				t.Fatalf("chunk reached Ready status but recorded no meshed levels")
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("chunk (0,0) did not reach Ready status within the deadline")
}

func TestAddTicketOutsideWorldBoundsIsANoop(t *testing.T) {
	cfg := testConfig()
	st := store.NewStore(cfg)
	reg := testRegistry()
	gen := generation.NewPipeline(generation.NewHeightmapStage(1, 1))

	p := New(st, reg, gen, 2, 1, true)
	defer p.Close()

	p.AddTicket([2]int32{100, 100})

	time.Sleep(20 * time.Millisecond)
	if st.Get([2]int32{100, 100}) != nil {
		t.Errorf("expected a ticket outside world bounds to never create a chunk")
	}
}
