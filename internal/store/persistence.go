package store

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// chunkFileData is the on-disk shape of a saved chunk: voxel and
// height-map arrays are zlib-compressed then base64-encoded before being
// embedded in JSON, matching the teacher pack's ChunkFileData layout so a
// saved world directory stays diffable and easy to inspect by hand.
type chunkFileData struct {
	ID        string `json:"id"`
	CX        int32  `json:"cx"`
	CZ        int32  `json:"cz"`
	Voxels    string `json:"voxels"`
	HeightMap string `json:"heightMap"`
}

// Persistence reads and writes chunk columns under a "chunks" subfolder of
// the configured world save directory.
type Persistence struct {
	folder string
}

// NewPersistence prepares the chunks subfolder under dir, creating it if
// necessary.
func NewPersistence(dir string) *Persistence {
	folder := filepath.Join(dir, "chunks")
	_ = os.MkdirAll(folder, 0o755)
	return &Persistence{folder: folder}
}

func (p *Persistence) path(cx, cz int32) string {
	return filepath.Join(p.folder, fmt.Sprintf("%d.%d.json", cx, cz))
}

// TestLoad reports whether a saved file exists for (cx, cz), without
// reading it.
func (p *Persistence) TestLoad(cx, cz int32) bool {
	_, err := os.Stat(p.path(cx, cz))
	return err == nil
}

// TryLoad reads and decodes a saved chunk, reconstructing a Chunk ready to
// enter the Meshing stage (generation and lighting are assumed already
// baked into the saved voxel data). Returns (nil, nil) if no file exists.
func (p *Persistence) TryLoad(cx, cz, chunkSize, maxHeight, subChunks int32) (*Chunk, error) {
	raw, err := os.ReadFile(p.path(cx, cz))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: reading chunk %d,%d: %w", cx, cz, err)
	}

	var data chunkFileData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("store: parsing chunk %d,%d: %w", cx, cz, err)
	}

	voxels, err := decodeWords(data.Voxels)
	if err != nil {
		return nil, fmt.Errorf("store: decoding voxels for chunk %d,%d: %w", cx, cz, err)
	}
	heightMap, err := decodeWords(data.HeightMap)
	if err != nil {
		return nil, fmt.Errorf("store: decoding height map for chunk %d,%d: %w", cx, cz, err)
	}

	c := NewChunk(data.ID, cx, cz, chunkSize, maxHeight, subChunks)
	if len(voxels) == len(c.Voxels) {
		c.Voxels = voxels
	}
	if len(heightMap) == len(c.HeightMap) {
		c.HeightMap = heightMap
	} else {
		recomputeHeightMap(c)
	}
	c.Status = StatusMeshing
	return c, nil
}

// Save writes c to disk, first to a temporary file in the same directory
// then renaming it into place, so a crash mid-write never leaves a
// truncated chunk file for the next load to trip over.
func (p *Persistence) Save(c *Chunk) error {
	voxelsEnc, err := encodeWords(c.Voxels)
	if err != nil {
		return fmt.Errorf("store: encoding voxels for chunk %d,%d: %w", c.CX, c.CZ, err)
	}
	heightEnc, err := encodeWords(c.HeightMap)
	if err != nil {
		return fmt.Errorf("store: encoding height map for chunk %d,%d: %w", c.CX, c.CZ, err)
	}

	data := chunkFileData{
		ID:        c.ID,
		CX:        c.CX,
		CZ:        c.CZ,
		Voxels:    voxelsEnc,
		HeightMap: heightEnc,
	}
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("store: marshaling chunk %d,%d: %w", c.CX, c.CZ, err)
	}

	finalPath := p.path(c.CX, c.CZ)
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("store: creating %s: %w", tmpPath, err)
	}
	if _, err := f.Write(body); err != nil {
		f.Close()
		return fmt.Errorf("store: writing %s: %w", tmpPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("store: syncing %s: %w", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store: closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("store: renaming %s to %s: %w", tmpPath, finalPath, err)
	}
	return nil
}

func encodeWords(words []uint32) (string, error) {
	raw := make([]byte, len(words)*4)
	for i, w := range words {
		raw[i*4+0] = byte(w)
		raw[i*4+1] = byte(w >> 8)
		raw[i*4+2] = byte(w >> 16)
		raw[i*4+3] = byte(w >> 24)
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func decodeWords(encoded string) ([]uint32, error) {
	if encoded == "" {
		return nil, nil
	}
	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("store: decoded byte length %d not a multiple of 4", len(raw))
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
	}
	return words, nil
}

// recomputeHeightMap rebuilds the top-non-air-voxel height map from the
// voxel array when a saved file predates height map persistence.
func recomputeHeightMap(c *Chunk) {
	for lx := int32(0); lx < c.ChunkSize; lx++ {
		for lz := int32(0); lz < c.ChunkSize; lz++ {
			top := uint32(0)
			for ly := c.MaxHeight - 1; ly >= 0; ly-- {
				if c.LocalRawVoxel(lx, ly, lz)&0xFFFF != 0 {
					top = uint32(ly)
					break
				}
			}
			c.SetLocalMaxHeight(lx, lz, top)
		}
	}
}
