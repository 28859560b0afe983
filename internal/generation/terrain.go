package generation

import (
	"voxelcore/internal/store"
	"voxelcore/internal/voxel"
)

// HeightmapStage is the reference terrain stage: it fills every column up
// to a 2D octave-noise height with a solid block id and leaves the rest
// air, recording the height map as it goes. Grounded on the teacher's
// internal/world/chunk_provider_189.go (an authentic-noise heightmap
// generator) and internal/world/bio_generator.go, simplified from the
// teacher's full Minecraft-1.8.9 noise stack to a single deterministic
// value-noise octave sum — the pipeline's point is to exercise the
// Generate -> Lighting -> Meshing state machine end to end, not to
// reproduce a specific terrain algorithm, and the spec explicitly treats
// terrain generation as a pluggable, swappable collaborator.
type HeightmapStage struct {
	Seed        int64
	SolidID     uint32
	BaseHeight  float64
	Amplitude   float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
}

// NewHeightmapStage returns a HeightmapStage with reasonable defaults for
// a 64-tall world.
func NewHeightmapStage(seed int64, solidID uint32) *HeightmapStage {
	return &HeightmapStage{
		Seed:        seed,
		SolidID:     solidID,
		BaseHeight:  32,
		Amplitude:   16,
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2.0,
	}
}

func (s *HeightmapStage) Name() string { return "heightmap" }

func (s *HeightmapStage) Process(c *store.Chunk) *store.Chunk {
	for lx := int32(0); lx < c.ChunkSize; lx++ {
		worldX := float64(c.Min[0] + lx)
		for lz := int32(0); lz < c.ChunkSize; lz++ {
			worldZ := float64(c.Min[2] + lz)

			n := octaveNoise2D(worldX*0.01, worldZ*0.01, s.Seed, s.Octaves, s.Persistence, s.Lacunarity)
			height := int32(s.BaseHeight + (n*2-1)*s.Amplitude)
			if height < 0 {
				height = 0
			}
			if height >= c.MaxHeight {
				height = c.MaxHeight - 1
			}

			for ly := int32(0); ly <= height; ly++ {
				c.SetLocalRawVoxel(lx, ly, lz, voxel.InsertID(0, s.SolidID))
			}
			c.SetLocalMaxHeight(lx, lz, uint32(height)+1)
		}
	}
	return c
}
