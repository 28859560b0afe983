package store

import (
	"container/heap"
	"sync"

	"github.com/google/uuid"

	"voxelcore/internal/config"
)

// Store is the authoritative in-memory chunk map plus the scheduling
// bookkeeping (active voxels, listeners, save/send queues) the pipeline
// drains every tick. Access is guarded by a single RWMutex, matching the
// teacher's ChunkStore convention of a map plus sync.RWMutex rather than
// a lock-free structure — this world's chunk count per server is small
// enough that contention is not the bottleneck worth optimizing first.
type Store struct {
	mu     sync.RWMutex
	chunks map[[2]int32]*Chunk

	config *config.WorldConfig

	listeners map[[2]int32][][2]int32

	activeHeap activeVoxelHeap
	activeSet  map[[3]int32]uint64

	toSave []Chunk2
	toSend []Chunk2

	persistence *Persistence
}

// Chunk2 is a lightweight (coord, message-kind) pair used by the send/save
// queues; named to avoid colliding with the Chunk type while staying close
// to the teacher's to_send: VecDeque<(Vec2<i32>, MessageType)> shape.
type Chunk2 struct {
	Coord [2]int32
	Kind  string
}

// ActiveVoxel is a voxel scheduled for a future tick-based update (a
// growing crop, a spreading fluid, a timed mechanism).
type ActiveVoxel struct {
	Tick  uint64
	Voxel [3]int32
}

// NewStore builds an empty chunk store bound to a world configuration.
func NewStore(cfg *config.WorldConfig) *Store {
	s := &Store{
		chunks:    make(map[[2]int32]*Chunk),
		config:    cfg,
		listeners: make(map[[2]int32][][2]int32),
		activeSet: make(map[[3]int32]uint64),
	}
	if cfg.Saving {
		s.persistence = NewPersistence(cfg.SaveDir)
	}
	return s
}

// Get returns the chunk at coord, or nil if not loaded.
func (s *Store) Get(coord [2]int32) *Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks[coord]
}

// GetOrCreate returns the chunk at coord, creating a fresh Generating
// chunk under write lock if one doesn't exist yet. Mirrors the
// double-checked-locking idiom this module's chunk map is grounded on.
func (s *Store) GetOrCreate(coord [2]int32) *Chunk {
	s.mu.RLock()
	c := s.chunks[coord]
	s.mu.RUnlock()
	if c != nil {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chunks[coord]; ok {
		return c
	}
	c = NewChunk(uuid.NewString(), coord[0], coord[1], s.config.ChunkSize, s.config.MaxHeight, s.config.SubChunks)
	s.chunks[coord] = c
	return c
}

// Put inserts or replaces a fully-built chunk (used when a background
// generation/lighting/meshing worker hands its result back).
func (s *Store) Put(coord [2]int32, c *Chunk) {
	s.mu.Lock()
	s.chunks[coord] = c
	s.mu.Unlock()
}

// LoadOrCreate returns the chunk at coord, attempting to load it from disk
// first (if saving is enabled) before falling back to a freshly generated
// chunk. Mirrors the teacher's test_load-then-try_load-then-generate order.
func (s *Store) LoadOrCreate(coord [2]int32) (*Chunk, error) {
	if c := s.Get(coord); c != nil {
		return c, nil
	}

	if s.persistence != nil && s.persistence.TestLoad(coord[0], coord[1]) {
		c, err := s.persistence.TryLoad(coord[0], coord[1], s.config.ChunkSize, s.config.MaxHeight, s.config.SubChunks)
		if err != nil {
			return nil, err
		}
		if c != nil {
			s.Put(coord, c)
			return c, nil
		}
	}

	return s.GetOrCreate(coord), nil
}

// SaveChunk persists a single chunk immediately. A no-op if saving is
// disabled.
func (s *Store) SaveChunk(coord [2]int32) error {
	if s.persistence == nil {
		return nil
	}
	c := s.Get(coord)
	if c == nil {
		return nil
	}
	return s.persistence.Save(c)
}

// FlushSaveQueue persists every chunk queued via QueueSave, stopping at the
// first error.
func (s *Store) FlushSaveQueue() error {
	if s.persistence == nil {
		return nil
	}
	for _, entry := range s.DrainSaveQueue() {
		if err := s.SaveChunk(entry.Coord); err != nil {
			return err
		}
	}
	return nil
}

// RawChunkByVoxel resolves the chunk owning a world voxel coordinate,
// without requiring it to be Ready.
func (s *Store) RawChunkByVoxel(vx, vz int32) *Chunk {
	return s.Get(s.mapVoxelToChunk(vx, vz))
}

func (s *Store) mapVoxelToChunk(vx, vz int32) [2]int32 {
	size := s.config.ChunkSize
	if size < 1 {
		size = 1
	}
	return [2]int32{floorDiv(vx, size), floorDiv(vz, size)}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// IsWithinWorld reports whether coord is inside the configured chunk
// bounds.
func (s *Store) IsWithinWorld(coord [2]int32) bool {
	return coord[0] >= s.config.MinChunk[0] && coord[0] <= s.config.MaxChunk[0] &&
		coord[1] >= s.config.MinChunk[1] && coord[1] <= s.config.MaxChunk[1]
}

// MinChunk returns the configured lower chunk-coordinate bound.
func (s *Store) MinChunk() [2]int32 { return s.config.MinChunk }

// MaxChunk returns the configured upper chunk-coordinate bound.
func (s *Store) MaxChunk() [2]int32 { return s.config.MaxChunk }

// IsChunkReady reports whether coord names a loaded, Ready chunk.
func (s *Store) IsChunkReady(coord [2]int32) bool {
	c := s.Get(coord)
	return c != nil && c.Status == StatusReady
}

// VoxelAffectedChunks returns every chunk coordinate a write in the world
// column (vx, vz) could touch: the owning chunk plus any edge/corner neighbors the local
// position borders, so edge writes propagate without a full neighbor scan.
func (s *Store) VoxelAffectedChunks(vx, vz int32) [][2]int32 {
	chunkSize := s.config.ChunkSize
	if chunkSize < 1 {
		chunkSize = 1
	}
	coord := s.mapVoxelToChunk(vx, vz)
	lx := vx - coord[0]*chunkSize
	lz := vz - coord[1]*chunkSize

	neighbors := make([][2]int32, 0, 9)
	push := func(ox, oz int32) {
		n := [2]int32{coord[0] + ox, coord[1] + oz}
		if s.IsWithinWorld(n) {
			neighbors = append(neighbors, n)
		}
	}

	push(0, 0)

	a := lx == 0
	b := lz == 0
	c := lx == chunkSize-1
	d := lz == chunkSize-1

	if a {
		push(-1, 0)
	}
	if b {
		push(0, -1)
	}
	if c {
		push(1, 0)
	}
	if d {
		push(0, 1)
	}
	if a && b {
		push(-1, -1)
	}
	if a && d {
		push(-1, 1)
	}
	if b && c {
		push(1, -1)
	}
	if c && d {
		push(1, 1)
	}

	return neighbors
}

// LightTraversedChunks returns every chunk coordinate within a Chebyshev
// radius of `ceil(max_light_level / chunk_size)` of coord — the
// neighborhood a lighting pass centered on coord could possibly read from
// or write to.
func (s *Store) LightTraversedChunks(coord [2]int32) [][2]int32 {
	chunkSize := s.config.ChunkSize
	if chunkSize < 1 {
		chunkSize = 1
	}
	extended := (int32(s.config.MaxLightLevel) + chunkSize - 1) / chunkSize

	minX := maxI32(coord[0]-extended, s.config.MinChunk[0])
	maxX := minI32(coord[0]+extended, s.config.MaxChunk[0])
	minZ := maxI32(coord[1]-extended, s.config.MinChunk[1])
	maxZ := minI32(coord[1]+extended, s.config.MaxChunk[1])
	if minX > maxX || minZ > maxZ {
		return nil
	}

	list := make([][2]int32, 0, int(maxX-minX+1)*int(maxZ-minZ+1))
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			list = append(list, [2]int32{x, z})
		}
	}
	return list
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// AddListener records that `listener` chunk wants to be notified when
// `coord` finishes its current pipeline stage (used for cross-chunk mesh
// dependencies at chunk borders).
func (s *Store) AddListener(coord, listener [2]int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[coord] = append(s.listeners[coord], listener)
}

// TakeListeners removes and returns every chunk coordinate waiting on
// coord.
func (s *Store) TakeListeners(coord [2]int32) [][2]int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.listeners[coord]
	delete(s.listeners, coord)
	return l
}

// ScheduleActiveVoxel queues a voxel for a tick-based revisit (fluid
// spread, crop growth). Re-scheduling the same voxel overwrites its
// previous tick rather than queuing a duplicate entry.
func (s *Store) ScheduleActiveVoxel(voxel [3]int32, tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSet[voxel] = tick
	heap.Push(&s.activeHeap, ActiveVoxel{Tick: tick, Voxel: voxel})
}

// PopDueActiveVoxels removes and returns every scheduled voxel whose tick
// has arrived (<= currentTick), skipping stale heap entries a later
// reschedule superseded.
func (s *Store) PopDueActiveVoxels(currentTick uint64) []ActiveVoxel {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []ActiveVoxel
	for s.activeHeap.Len() > 0 && s.activeHeap[0].Tick <= currentTick {
		v := heap.Pop(&s.activeHeap).(ActiveVoxel)
		latest, ok := s.activeSet[v.Voxel]
		if !ok || latest != v.Tick {
			continue
		}
		delete(s.activeSet, v.Voxel)
		due = append(due, v)
	}
	return due
}

// activeVoxelHeap is a min-heap over ActiveVoxel.Tick.
type activeVoxelHeap []ActiveVoxel

func (h activeVoxelHeap) Len() int            { return len(h) }
func (h activeVoxelHeap) Less(i, j int) bool  { return h[i].Tick < h[j].Tick }
func (h activeVoxelHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *activeVoxelHeap) Push(x interface{}) { *h = append(*h, x.(ActiveVoxel)) }
func (h *activeVoxelHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// QueueSend marks coord as ready to broadcast to subscribed clients.
func (s *Store) QueueSend(coord [2]int32, kind string) {
	s.mu.Lock()
	s.toSend = append(s.toSend, Chunk2{Coord: coord, Kind: kind})
	s.mu.Unlock()
}

// DrainSendQueue empties and returns the pending send queue.
func (s *Store) DrainSendQueue() []Chunk2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.toSend
	s.toSend = nil
	return q
}

// QueueSave marks coord as ready to persist, if saving is enabled.
func (s *Store) QueueSave(coord [2]int32) {
	if s.persistence == nil {
		return
	}
	s.mu.Lock()
	s.toSave = append(s.toSave, Chunk2{Coord: coord})
	s.mu.Unlock()
}

// DrainSaveQueue empties and returns the pending save queue.
func (s *Store) DrainSaveQueue() []Chunk2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.toSave
	s.toSave = nil
	return q
}
