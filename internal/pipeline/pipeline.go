// Package pipeline drives each chunk through the
// Generating -> Lighting -> Meshing -> Ready state machine: a worker
// pool of goroutines runs generation/lighting/meshing jobs off a channel
// queue, cross-chunk dependencies gate when a chunk's lighting pass can
// start, and a listener map pushes completion instead of making waiters
// poll. Grounded on the teacher's internal/meshing/pool.go (WorkerPool,
// job/result channel shape) and internal/world/chunk_streamer.go
// (pending-set dedup around a bounded job channel), generalized from
// "mesh this chunk" to the full three-stage chunk lifecycle described by
// _examples/original_source/crates/voxelize/src/chunks/manager.rs's
// ChunkManager/JobTicket state machine.
package pipeline

import (
	"context"
	"sync"

	"voxelcore/internal/generation"
	"voxelcore/internal/light"
	"voxelcore/internal/mesh"
	"voxelcore/internal/registry"
	"voxelcore/internal/space"
	"voxelcore/internal/store"
	"voxelcore/internal/voxel"
)

// jobKind names which stage a queued job runs.
type jobKind int

const (
	jobGenerate jobKind = iota
	jobLight
	jobMesh
)

type job struct {
	kind  jobKind
	coord [2]int32
}

// ChunkPipeline owns the job queue and per-chunk dependency/listener
// bookkeeping. All chunk-map and dependency-map mutation happens on the
// worker goroutines for Generate/Light/Mesh (each job touches only its
// own coord's chunk plus a read-only Space snapshot of neighbors) and is
// serialized per chunk by the fact that a coord is only ever in the job
// queue once at a time (see pending, guarded by mu).
type ChunkPipeline struct {
	store    *store.Store
	registry *registry.Registry
	gen      *generation.Pipeline

	lightRadius int32
	greedy      bool

	jobs chan job

	mu            sync.Mutex
	pending       map[[2]int32]bool
	meshing       map[[2]int32]bool
	pendingRemesh map[[2]int32]bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a ChunkPipeline with workers goroutines draining the job
// queue; lightRadius is the Chebyshev chunk radius a Generate job must
// see resolved (at least generated) neighbors within before its Lighting
// stage can run.
func New(st *store.Store, reg *registry.Registry, gen *generation.Pipeline, workers int, lightRadius int32, greedyMeshing bool) *ChunkPipeline {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &ChunkPipeline{
		store:         st,
		registry:      reg,
		gen:           gen,
		lightRadius:   lightRadius,
		greedy:        greedyMeshing,
		jobs:          make(chan job, 4096),
		pending:       make(map[[2]int32]bool),
		meshing:       make(map[[2]int32]bool),
		pendingRemesh: make(map[[2]int32]bool),
		ctx:           ctx,
		cancel:        cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Close stops accepting new jobs and waits for in-flight ones to finish.
func (p *ChunkPipeline) Close() {
	p.cancel()
	close(p.jobs)
	p.wg.Wait()
}

// AddTicket requests a chunk at coord: if it's outside the world bounds
// the request is dropped; if the chunk was never generated (freshly
// created or absent on disk) a Generate job is enqueued.
func (p *ChunkPipeline) AddTicket(coord [2]int32) {
	if !p.store.IsWithinWorld(coord) {
		return
	}
	c, err := p.store.LoadOrCreate(coord)
	if err != nil {
		return
	}
	if c.Status != store.StatusGenerating {
		return
	}
	p.enqueue(job{kind: jobGenerate, coord: coord})
}

func (p *ChunkPipeline) enqueue(j job) bool {
	p.mu.Lock()
	if p.pending[j.coord] {
		p.mu.Unlock()
		return false
	}
	p.pending[j.coord] = true
	p.mu.Unlock()

	select {
	case p.jobs <- j:
		return true
	case <-p.ctx.Done():
		p.mu.Lock()
		delete(p.pending, j.coord)
		p.mu.Unlock()
		return false
	}
}

func (p *ChunkPipeline) worker() {
	defer p.wg.Done()
	for {
		select {
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			p.process(j)
			p.mu.Lock()
			delete(p.pending, j.coord)
			p.mu.Unlock()
			// While a job runs its coord stays in pending, so enqueue refuses
			// the job's own follow-up (the next stage, or a remesh recorded
			// during runMesh); queue it here instead.
			if c := p.store.Get(j.coord); c != nil && p.ctx.Err() == nil {
				if c.Status == store.StatusReady && len(c.UpdatedLevels) > 0 {
					p.enqueue(job{kind: jobMesh, coord: j.coord})
				} else {
					p.resolveOrAdvance(j.coord, c)
				}
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *ChunkPipeline) process(j job) {
	switch j.kind {
	case jobGenerate:
		p.runGenerate(j.coord)
	case jobLight:
		p.runLight(j.coord)
	case jobMesh:
		p.runMesh(j.coord)
	}
}

// runGenerate runs the stage list over the chunk, then records which
// neighbor chunks within lightRadius still need to exist before lighting
// can run, registering a listener against each missing neighbor so its
// own completion resolves this chunk's dependency instead of this chunk
// having to poll.
func (p *ChunkPipeline) runGenerate(coord [2]int32) {
	c := p.store.GetOrCreate(coord)
	c = p.gen.Run(c)
	c.Status = store.StatusLighting
	p.store.Put(coord, c)

	neighbors := p.store.LightTraversedChunks(coord)
	for _, n := range neighbors {
		if n == coord {
			continue
		}
		neighbor := p.store.Get(n)
		if neighbor != nil && neighbor.Status != store.StatusGenerating {
			continue
		}
		c.AddMissingDependency(n)
		p.store.AddListener(n, coord)
		if neighbor == nil {
			p.AddTicket(n)
		}
	}

	p.onChunkAdvanced(coord)
	p.resolveOrAdvance(coord, c)
}

// resolveOrAdvance enqueues the chunk's next stage once it has no
// outstanding dependencies left.
func (p *ChunkPipeline) resolveOrAdvance(coord [2]int32, c *store.Chunk) {
	if len(c.MissingDependencies) > 0 {
		return
	}
	switch c.Status {
	case store.StatusLighting:
		p.enqueue(job{kind: jobLight, coord: coord})
	case store.StatusMeshing:
		p.enqueue(job{kind: jobMesh, coord: coord})
	}
}

// onChunkAdvanced resolves coord's dependency in every chunk that
// registered as a listener against it, advancing any whose dependency
// set just emptied.
func (p *ChunkPipeline) onChunkAdvanced(coord [2]int32) {
	waiters := p.store.TakeListeners(coord)
	for _, w := range waiters {
		wc := p.store.Get(w)
		if wc == nil {
			continue
		}
		if wc.ResolveDependency(coord) {
			p.resolveOrAdvance(w, wc)
		}
	}
}

// runLight builds a window over the light-traversal neighborhood,
// propagates sunlight and floods all four channels, commits the light
// arrays back to each touched chunk atomically, and marks every
// sub-chunk level dirty for the subsequent mesh pass.
func (p *ChunkPipeline) runLight(coord [2]int32) {
	c := p.store.Get(coord)
	if c == nil {
		return
	}

	sp := space.NewBuilder(p.store, coord, space.Options{
		Margin:        p.lightRadius * c.ChunkSize,
		ChunkSize:     c.ChunkSize,
		SubChunks:     c.SubChunks,
		MaxHeight:     c.MaxHeight,
		MaxLightLevel: 15,
	}).NeedsAll().Build()

	cfg := light.Config{
		ChunkSize:     c.ChunkSize,
		MaxHeight:     c.MaxHeight,
		MaxLightLevel: 15,
		MinChunk:      p.store.MinChunk(),
		MaxChunk:      p.store.MaxChunk(),
	}

	result := light.Propagate(sp, sp.Min, sp.Shape, p.registry, cfg)
	light.FloodLight(sp, result.Sunlight, voxel.Sunlight, cfg, nil, p.registry)
	light.FloodLight(sp, result.Red, voxel.Red, cfg, nil, p.registry)
	light.FloodLight(sp, result.Green, voxel.Green, cfg, nil, p.registry)
	light.FloodLight(sp, result.Blue, voxel.Blue, cfg, nil, p.registry)

	for _, n := range p.store.LightTraversedChunks(coord) {
		nc := p.store.Get(n)
		if nc == nil {
			continue
		}
		if words, ok := sp.Lights(n); ok {
			copy(nc.Lights, words)
		}
	}

	c.MarkAllLevelsDirty()
	c.Status = store.StatusMeshing
	p.store.Put(coord, c)

	p.onChunkAdvanced(coord)
	p.resolveOrAdvance(coord, c)
}

// runMesh builds a 3x3-chunk window per dirty sub-chunk level, meshes it
// (greedy or naive per config), stores the result, and marks the chunk
// Ready. A remesh request that arrived while this job was running is
// honored by re-enqueueing once this pass completes.
func (p *ChunkPipeline) runMesh(coord [2]int32) {
	c := p.store.Get(coord)
	if c == nil {
		return
	}

	p.mu.Lock()
	p.meshing[coord] = true
	p.mu.Unlock()

	sp := space.NewBuilder(p.store, coord, space.Options{
		Margin:        c.ChunkSize,
		ChunkSize:     c.ChunkSize,
		SubChunks:     c.SubChunks,
		MaxHeight:     c.MaxHeight,
		MaxLightLevel: 15,
	}).NeedsVoxels().NeedsLights().Build()

	levelHeight := c.MaxHeight / max32(c.SubChunks, 1)
	if c.Meshes == nil {
		c.Meshes = make(map[int32]*store.Mesh)
	}

	for level := range c.UpdatedLevels {
		min := [3]int32{c.Min[0], level * levelHeight, c.Min[2]}
		shape := [3]int32{c.ChunkSize, levelHeight, c.ChunkSize}

		var geoms []*mesh.Geometry
		if p.greedy {
			geoms = mesh.MeshSpaceGreedy(sp, p.registry, min, shape)
		} else {
			geoms = mesh.MeshSpace(sp, p.registry, min, shape)
		}
		c.Meshes[level] = encodeGeometries(geoms)
	}
	c.UpdatedLevels = make(map[int32]bool)
	c.Status = store.StatusReady
	p.store.Put(coord, c)

	p.mu.Lock()
	delete(p.meshing, coord)
	remesh := p.pendingRemesh[coord]
	delete(p.pendingRemesh, coord)
	p.mu.Unlock()

	p.store.QueueSend(coord, "ready")
	p.store.QueueSave(coord)

	p.onChunkAdvanced(coord)

	if remesh {
		c.MarkAllLevelsDirty()
		p.enqueue(job{kind: jobMesh, coord: coord})
	}
}

// RequestRemesh marks coord dirty and either enqueues a fresh Mesh job
// or, if a mesh job for this coord is already running, records the
// request so runMesh re-enqueues on completion instead of the request
// being silently dropped.
func (p *ChunkPipeline) RequestRemesh(coord [2]int32, level int32) {
	c := p.store.Get(coord)
	if c == nil {
		return
	}
	c.MarkLevelDirty(level)

	p.mu.Lock()
	inFlight := p.meshing[coord]
	if inFlight {
		p.pendingRemesh[coord] = true
	}
	p.mu.Unlock()

	if !inFlight {
		p.enqueue(job{kind: jobMesh, coord: coord})
	}
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
