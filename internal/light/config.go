package light

// Config carries the world-shape parameters the light engine needs but
// that the VoxelAccess interface alone can't answer cheaply: chunk size
// (for mapping a voxel to its containing chunk), the vertical extent of
// the world, the maximum light level a channel can hold, and the chunk
// coordinate rectangle flood-fills may touch.
type Config struct {
	ChunkSize     int32
	MaxHeight     int32
	MaxLightLevel uint32
	MinChunk      [2]int32
	MaxChunk      [2]int32
}

func (c Config) chunkSize() int32 {
	if c.ChunkSize < 1 {
		return 1
	}
	return c.ChunkSize
}

// resolveChunkShift returns the power-of-two shift usable to map a voxel
// coordinate to its chunk coordinate by bit-shifting rather than dividing,
// when chunk size is a power of two (the common case for this world's
// fixed 16-wide chunks).
func resolveChunkShift(chunkSize int32) (shift uint, ok bool) {
	if chunkSize <= 0 || chunkSize&(chunkSize-1) != 0 {
		return 0, false
	}
	for s := uint(0); s < 32; s++ {
		if int32(1)<<s == chunkSize {
			return s, true
		}
	}
	return 0, false
}

func mapVoxelToChunk(vx, vz, chunkSize int32, shift uint, hasShift bool) (int32, int32) {
	if hasShift {
		return vx >> shift, vz >> shift
	}
	size := chunkSize
	if size < 1 {
		size = 1
	}
	return floorDiv(vx, size), floorDiv(vz, size)
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
