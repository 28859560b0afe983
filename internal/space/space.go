// Package space provides a read/write window over a rectangle of loaded
// chunks centered on one chunk, wide enough to cover a margin of
// neighboring voxels. The lighting engine and mesher both operate on a
// Space rather than reaching into the chunk store directly, since both
// need to read (and, for lighting, write) across chunk borders without
// caring which physical chunk a given voxel happens to live in.
package space

import (
	"fmt"

	"voxelcore/internal/store"
)

// Options carries the world-shape parameters a Space needs to size
// itself and to translate between world and local voxel coordinates.
type Options struct {
	Margin        int32
	ChunkSize     int32
	SubChunks     int32
	MaxHeight     int32
	MaxLightLevel uint32
}

func (o Options) chunkSize() int32 {
	if o.ChunkSize < 1 {
		return 1
	}
	return o.ChunkSize
}

// ChunkProvider is the subset of *store.Store a Space needs to pull
// chunk data from. Defined as an interface so tests can hand a Space a
// fake chunk set without standing up a full Store.
type ChunkProvider interface {
	Get(coord [2]int32) *store.Chunk
}

// Space is a dense window of voxel/light/height-map data assembled from
// one or more loaded chunks. Which of the three data sets are actually
// populated is controlled at build time by Builder.Needs*; reading from
// an un-requested data set panics rather than silently returning zeros,
// so a caller that forgot to ask for lights can't be fooled into thinking
// a chunk is fully dark.
type Space struct {
	Coords  [2]int32
	Width   int32
	Shape   [3]int32
	Min     [3]int32
	Options Options

	// UpdatedLevels records which sub-chunk levels of the center chunk
	// were touched by a SetRawLight call during this Space's lifetime, so
	// the caller knows which mesh levels need rebuilding afterward.
	UpdatedLevels map[int32]bool

	voxels     map[[2]int32][]uint32
	lights     map[[2]int32][]uint32
	heightMaps map[[2]int32][]uint32
}

// Builder assembles a Space from a ChunkProvider via a fluent opt-in API:
// callers only pay for (and only receive access to) the data sets they
// actually need.
type Builder struct {
	provider ChunkProvider
	coords   [2]int32
	options  Options

	needsVoxels     bool
	needsLights     bool
	needsHeightMaps bool
	strict          bool
}

// NewBuilder starts building a Space centered on the chunk at coords.
func NewBuilder(provider ChunkProvider, coords [2]int32, options Options) *Builder {
	return &Builder{provider: provider, coords: coords, options: options}
}

func (b *Builder) NeedsVoxels() *Builder     { b.needsVoxels = true; return b }
func (b *Builder) NeedsLights() *Builder     { b.needsLights = true; return b }
func (b *Builder) NeedsHeightMaps() *Builder { b.needsHeightMaps = true; return b }

// NeedsAll opts into every data set.
func (b *Builder) NeedsAll() *Builder {
	return b.NeedsVoxels().NeedsLights().NeedsHeightMaps()
}

// Strict makes Build panic if any chunk within the window isn't loaded,
// instead of silently leaving that chunk's slot absent (and later reads
// into it falling through to zero values).
func (b *Builder) Strict() *Builder {
	b.strict = true
	return b
}

// Build pulls chunk data from the provider and assembles the Space. Panics
// if margin is zero, since a zero-margin space can never see past its
// center chunk's own borders and every caller of this builder needs at
// least a one-voxel margin to check neighbor transparency.
func (b *Builder) Build() *Space {
	if b.options.Margin == 0 {
		panic("space: margin must be non-zero")
	}

	chunkSize := b.options.chunkSize()
	width := chunkSize + b.options.Margin*2

	extent := (b.options.Margin + chunkSize - 1) / chunkSize

	s := &Space{
		Coords:  b.coords,
		Width:   width,
		Shape:   [3]int32{width, b.options.MaxHeight, width},
		Min:     [3]int32{b.coords[0]*chunkSize - b.options.Margin, 0, b.coords[1]*chunkSize - b.options.Margin},
		Options: b.options,
	}

	if b.needsVoxels {
		s.voxels = make(map[[2]int32][]uint32)
	}
	if b.needsLights {
		s.lights = make(map[[2]int32][]uint32)
	}
	if b.needsHeightMaps {
		s.heightMaps = make(map[[2]int32][]uint32)
	}

	for dx := -extent; dx <= extent; dx++ {
		for dz := -extent; dz <= extent; dz++ {
			coord := [2]int32{b.coords[0] + dx, b.coords[1] + dz}
			c := b.provider.Get(coord)
			if c == nil {
				if b.strict {
					panic(fmt.Sprintf("space: chunk %v not loaded", coord))
				}
				continue
			}
			if b.needsVoxels {
				s.voxels[coord] = c.Voxels
			}
			if b.needsLights {
				s.lights[coord] = c.Lights
			}
			if b.needsHeightMaps {
				s.heightMaps[coord] = c.HeightMap
			}
		}
	}

	return s
}

func (s *Space) chunkOf(vx, vz int32) ([2]int32, int32, int32) {
	chunkSize := s.Options.chunkSize()
	cx := floorDiv(vx, chunkSize)
	cz := floorDiv(vz, chunkSize)
	lx := vx - cx*chunkSize
	lz := vz - cz*chunkSize
	return [2]int32{cx, cz}, lx, lz
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func localIndex(lx, ly, lz, chunkSize, maxHeight int32) int {
	return int(lx*maxHeight*chunkSize + ly*chunkSize + lz)
}

// GetRawVoxel reads the packed voxel word at a world voxel coordinate.
// Panics if this Space wasn't built with NeedsVoxels.
func (s *Space) GetRawVoxel(vx, vy, vz int32) uint32 {
	if s.voxels == nil {
		panic("space: voxel data was not requested for this space")
	}
	if vy < 0 || vy >= s.Options.MaxHeight {
		return 0
	}
	coord, lx, lz := s.chunkOf(vx, vz)
	words, ok := s.voxels[coord]
	if !ok {
		return 0
	}
	idx := localIndex(lx, vy, lz, s.Options.chunkSize(), s.Options.MaxHeight)
	if idx < 0 || idx >= len(words) {
		return 0
	}
	return words[idx]
}

// GetVoxel returns just the block id portion of the raw voxel word.
func (s *Space) GetVoxel(vx, vy, vz int32) uint32 {
	return extractID(s.GetRawVoxel(vx, vy, vz))
}

// GetVoxelRotation returns the rotation nibbles of the raw voxel word.
func (s *Space) GetVoxelRotation(vx, vy, vz int32) (value, yaw uint32) {
	raw := s.GetRawVoxel(vx, vy, vz)
	return (raw >> 16) & 0xF, (raw >> 20) & 0xF
}

// GetVoxelStage returns the stage nibble of the raw voxel word.
func (s *Space) GetVoxelStage(vx, vy, vz int32) uint32 {
	return (s.GetRawVoxel(vx, vy, vz) >> 24) & 0xF
}

func extractID(raw uint32) uint32 {
	return raw & 0xFFFF
}

// GetRawLight reads the packed light word at a world voxel coordinate.
// Panics if this Space wasn't built with NeedsLights.
func (s *Space) GetRawLight(vx, vy, vz int32) uint32 {
	if s.lights == nil {
		panic("space: light data was not requested for this space")
	}
	if vy < 0 || vy >= s.Options.MaxHeight {
		return 0
	}
	coord, lx, lz := s.chunkOf(vx, vz)
	words, ok := s.lights[coord]
	if !ok {
		return 0
	}
	idx := localIndex(lx, vy, lz, s.Options.chunkSize(), s.Options.MaxHeight)
	if idx < 0 || idx >= len(words) {
		return 0
	}
	return words[idx]
}

// SetRawLight writes the packed light word at a world voxel coordinate,
// returning true if the value actually changed. A no-op write (the
// incoming raw word equals what's already stored) is never recorded in
// UpdatedLevels, so an idle relight pass doesn't force a mesh rebuild.
// When the write lands in the center chunk, the sub-chunk level it falls
// into is computed as
//
//	level = clamp(vy * subChunks / maxHeight, 0, subChunks-1)
//
// and recorded in UpdatedLevels.
func (s *Space) SetRawLight(vx, vy, vz int32, raw uint32) bool {
	if s.lights == nil {
		panic("space: light data was not requested for this space")
	}
	if vy < 0 || vy >= s.Options.MaxHeight {
		return false
	}
	coord, lx, lz := s.chunkOf(vx, vz)
	words, ok := s.lights[coord]
	if !ok {
		return false
	}
	idx := localIndex(lx, vy, lz, s.Options.chunkSize(), s.Options.MaxHeight)
	if idx < 0 || idx >= len(words) {
		return false
	}
	if words[idx] == raw {
		return false
	}
	words[idx] = raw

	if coord == s.Coords {
		subChunks := s.Options.SubChunks
		if subChunks < 1 {
			subChunks = 1
		}
		level := (vy * subChunks) / s.Options.MaxHeight
		if level < 0 {
			level = 0
		}
		if level >= subChunks {
			level = subChunks - 1
		}
		if s.UpdatedLevels == nil {
			s.UpdatedLevels = make(map[int32]bool)
		}
		s.UpdatedLevels[level] = true
	}
	return true
}

// GetSunlight returns the sunlight nibble of the raw light word.
func (s *Space) GetSunlight(vx, vy, vz int32) uint32 {
	return (s.GetRawLight(vx, vy, vz) >> 12) & 0xF
}

// GetMaxHeight returns the recorded top non-air voxel height at a column.
// Panics if this Space wasn't built with NeedsHeightMaps.
func (s *Space) GetMaxHeight(vx, vz int32) int32 {
	if s.heightMaps == nil {
		panic("space: height map data was not requested for this space")
	}
	coord, lx, lz := s.chunkOf(vx, vz)
	words, ok := s.heightMaps[coord]
	if !ok {
		return 0
	}
	chunkSize := s.Options.chunkSize()
	idx := int(lx*chunkSize + lz)
	if idx < 0 || idx >= len(words) {
		return 0
	}
	return int32(words[idx])
}

// Lights returns the raw light words loaded for one chunk coordinate
// within this Space, so a caller (the pipeline's lighting stage) can
// commit them back to the chunk map wholesale once flooding finishes.
// The returned slice is the Space's own backing array, not a copy.
func (s *Space) Lights(coord [2]int32) ([]uint32, bool) {
	words, ok := s.lights[coord]
	return words, ok
}

// Contains reports whether a world voxel coordinate falls within this
// Space's loaded window.
func (s *Space) Contains(vx, vy, vz int32) bool {
	if vy < 0 || vy >= s.Options.MaxHeight {
		return false
	}
	lx := vx - s.Min[0]
	lz := vz - s.Min[2]
	return lx >= 0 && lx < s.Width && lz >= 0 && lz < s.Width
}
