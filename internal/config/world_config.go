// Package config loads and serves the world server's tunable settings,
// generalizing the teacher's mutex-guarded global render settings into a
// per-world, YAML-loadable configuration object.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// WorldConfig holds every tunable the world server needs. Fields that are
// fixed for a world's lifetime (chunk shape, save paths) are set once at
// load time; fields players or admins can tune at runtime (simulation
// distance, greedy meshing toggle) are guarded by mu, following the same
// Get/Set-with-clamp pattern the teacher uses for its render settings.
type WorldConfig struct {
	mu sync.RWMutex

	ChunkSize     int32
	MaxHeight     int32
	SubChunks     int32
	MaxLightLevel uint32
	MinChunk      [2]int32
	MaxChunk      [2]int32

	Saving  bool
	SaveDir string

	simulationDistance int
	greedyMeshing      bool
	workerCount        int
}

const (
	minSimulationDistance = 2
	maxSimulationDistance = 32
)

// Defaults returns a WorldConfig with the same sized defaults the teacher
// ships for render distance and worker sizing, adapted to a server-side
// world instead of a client renderer.
func Defaults() *WorldConfig {
	return &WorldConfig{
		ChunkSize:          16,
		MaxHeight:          256,
		SubChunks:          16,
		MaxLightLevel:      15,
		MinChunk:           [2]int32{-1 << 20, -1 << 20},
		MaxChunk:           [2]int32{1<<20 - 1, 1<<20 - 1},
		simulationDistance: 8,
		greedyMeshing:      true,
		workerCount: 4,
	}
}

// Load reads a YAML world configuration file over top of Defaults().
func Load(path string) (*WorldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var doc struct {
		ChunkSize          *int32  `yaml:"chunkSize"`
		MaxHeight          *int32  `yaml:"maxHeight"`
		SubChunks          *int32  `yaml:"subChunks"`
		MaxLightLevel      *uint32 `yaml:"maxLightLevel"`
		Saving             *bool   `yaml:"saving"`
		SaveDir            *string `yaml:"saveDir"`
		SimulationDistance *int    `yaml:"simulationDistance"`
		GreedyMeshing      *bool   `yaml:"greedyMeshing"`
		WorkerCount        *int    `yaml:"workerCount"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	c := Defaults()
	if doc.ChunkSize != nil {
		c.ChunkSize = *doc.ChunkSize
	}
	if doc.MaxHeight != nil {
		c.MaxHeight = *doc.MaxHeight
	}
	if doc.SubChunks != nil {
		c.SubChunks = *doc.SubChunks
	}
	if doc.MaxLightLevel != nil {
		c.MaxLightLevel = *doc.MaxLightLevel
	}
	if doc.Saving != nil {
		c.Saving = *doc.Saving
	}
	if doc.SaveDir != nil {
		c.SaveDir = *doc.SaveDir
	}
	if doc.SimulationDistance != nil {
		c.simulationDistance = *doc.SimulationDistance
	}
	if doc.GreedyMeshing != nil {
		c.greedyMeshing = *doc.GreedyMeshing
	}
	if doc.WorkerCount != nil {
		c.workerCount = *doc.WorkerCount
	}
	return c, nil
}

// SimulationDistance returns the current simulation radius in chunks.
func (c *WorldConfig) SimulationDistance() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.simulationDistance
}

// SetSimulationDistance clamps and stores a new simulation radius.
func (c *WorldConfig) SetSimulationDistance(distance int) {
	if distance < minSimulationDistance {
		distance = minSimulationDistance
	}
	if distance > maxSimulationDistance {
		distance = maxSimulationDistance
	}
	c.mu.Lock()
	c.simulationDistance = distance
	c.mu.Unlock()
}

// GreedyMeshing reports whether the mesher should coalesce coplanar faces.
func (c *WorldConfig) GreedyMeshing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.greedyMeshing
}

// SetGreedyMeshing toggles greedy meshing at runtime.
func (c *WorldConfig) SetGreedyMeshing(enabled bool) {
	c.mu.Lock()
	c.greedyMeshing = enabled
	c.mu.Unlock()
}

// WorkerCount returns the configured mesher/pipeline worker pool size.
func (c *WorldConfig) WorkerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.workerCount < 1 {
		return 1
	}
	return c.workerCount
}
