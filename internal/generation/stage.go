// Package generation implements the pluggable chunk-population stage
// list the pipeline's Generate step drives. Stage is a plain interface,
// not a subclass hierarchy — composition happens by building a []Stage
// once at pipeline wiring time and running every stage over each new
// chunk in order, the same dispatch shape the teacher's own
// TerrainGenerator interface (internal/world/generator.go) uses for
// HeightAt/PopulateChunk.
package generation

import "voxelcore/internal/store"

// Stage populates or refines one aspect of a freshly-created chunk.
// Process receives ownership of c and returns the chunk to pass to the
// next stage, mirroring the single process(chunk) -> chunk contract the
// source pipeline's ChunkStage trait specifies.
type Stage interface {
	Name() string
	Process(c *store.Chunk) *store.Chunk
}

// Pipeline is an ordered list of stages run once per newly generated
// chunk.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Run(c *store.Chunk) *store.Chunk {
	for _, stage := range p.stages {
		c = stage.Process(c)
	}
	return c
}
