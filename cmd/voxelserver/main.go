// Command voxelserver runs a headless voxel world server: it loads a world
// configuration, builds the block registry and chunk store, wires a
// generation/lighting/meshing pipeline, and drives a fixed-rate tick loop
// that pops due active voxels, drains the send queue and flushes the event
// bus, flushing the save queue once on shutdown —
// the server-side analogue of the teacher's cmd/mini-mc main loop, with
// the window/render/input setup (glfw, gl, player input) replaced by the
// world-simulation side that loop already drove.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voxelcore/internal/config"
	"voxelcore/internal/events"
	"voxelcore/internal/generation"
	"voxelcore/internal/logging"
	"voxelcore/internal/pipeline"
	"voxelcore/internal/registry"
	"voxelcore/internal/store"
)

const tickRate = 20 // ticks per second, matching the teacher's voxel-game convention

const (
	airBlockID   = 0
	stoneBlockID = 1
)

func main() {
	configPath := flag.String("config", "", "path to a world config YAML file (optional, defaults applied otherwise)")
	seed := flag.Int64("seed", 1, "terrain generation seed")
	flag.Parse()

	log := logging.For("main")

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Error("loading world config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	reg := buildRegistry()
	st := store.NewStore(cfg)
	gen := generation.NewPipeline(generation.NewHeightmapStage(*seed, stoneBlockID))
	bus := events.NewBus()

	lightRadius := (int32(cfg.MaxLightLevel) + cfg.ChunkSize - 1) / cfg.ChunkSize
	chunkPipeline := pipeline.New(st, reg, gen, cfg.WorkerCount(), lightRadius, cfg.GreedyMeshing())
	defer chunkPipeline.Close()

	log.Info("world server starting",
		"chunkSize", cfg.ChunkSize,
		"maxHeight", cfg.MaxHeight,
		"workers", cfg.WorkerCount(),
		"greedyMeshing", cfg.GreedyMeshing(),
		"saving", cfg.Saving,
	)

	ticketSpawnArea(chunkPipeline, cfg.SimulationDistance())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runTickLoop(ctx, log, st, bus)

	if err := st.FlushSaveQueue(); err != nil {
		log.Error("flushing save queue on shutdown", "error", err)
	}
	log.Info("world server stopped")
}

// buildRegistry returns the minimal two-block catalog (air, stone) this
// entry point exercises the pipeline with; a real deployment loads its
// catalog from data files the way the teacher's block definitions are
// authored, but Registry.New only needs a valid, non-empty block set.
func buildRegistry() *registry.Registry {
	air := registry.DefaultAir()
	stone := registry.NewBlock(stoneBlockID, "stone").Build()
	return registry.New([]registry.Block{air, stone}, airBlockID, airBlockID)
}

// ticketSpawnArea requests every chunk within simulationDistance of the
// origin so the pipeline has something to do on startup, mirroring the
// teacher's StreamChunksAroundSync(spawnX, spawnZ, ...) spawn priming.
func ticketSpawnArea(p *pipeline.ChunkPipeline, simulationDistance int) {
	r := int32(simulationDistance)
	for x := -r; x <= r; x++ {
		for z := -r; z <= r; z++ {
			p.AddTicket([2]int32{x, z})
		}
	}
}

// runTickLoop drains the store's scheduling queues every tick until ctx is
// canceled (SIGINT/SIGTERM). Draining the send queue here is the seam a
// real transport layer hooks into; with none wired, drained entries are
// simply discarded after being counted for the periodic status log.
func runTickLoop(ctx context.Context, log *slog.Logger, st *store.Store, bus *events.Bus) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			st.PopDueActiveVoxels(tick)
			sent := st.DrainSendQueue()
			bus.Flush("world", nil, nil, nil)
			if tick%(tickRate*10) == 0 {
				log.Info("tick status", "tick", tick, "chunksSent", len(sent))
			}
		}
	}
}
