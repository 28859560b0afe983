package store

import (
	"testing"

	"voxelcore/internal/config"
)

func testConfig() *config.WorldConfig {
	c := config.Defaults()
	c.ChunkSize = 16
	c.MaxHeight = 64
	c.SubChunks = 4
	c.MaxLightLevel = 15
	c.MinChunk = [2]int32{-2, -2}
	c.MaxChunk = [2]int32{2, 2}
	return c
}

func TestGetOrCreateReusesExistingChunk(t *testing.T) {
	s := NewStore(testConfig())
	first := s.GetOrCreate([2]int32{0, 0})
	second := s.GetOrCreate([2]int32{0, 0})
	if first != second {
		t.Errorf("GetOrCreate returned a different chunk for the same coordinate")
	}
}

func TestGetReturnsNilForUnknownCoordinate(t *testing.T) {
	s := NewStore(testConfig())
	if s.Get([2]int32{5, 5}) != nil {
		t.Errorf("Get: want nil for a coordinate never created")
	}
}

func TestIsWithinWorldRespectsConfiguredBounds(t *testing.T) {
	s := NewStore(testConfig())
	if !s.IsWithinWorld([2]int32{2, -2}) {
		t.Errorf("expected the bounds' corner to be within the world")
	}
	if s.IsWithinWorld([2]int32{3, 0}) {
		t.Errorf("expected a coordinate past MaxChunk to be outside the world")
	}
}

func TestVoxelAffectedChunksOnlyOwningChunkForInteriorVoxel(t *testing.T) {
	s := NewStore(testConfig())
	got := s.VoxelAffectedChunks(8, 8)
	if len(got) != 1 || got[0] != ([2]int32{0, 0}) {
		t.Errorf("interior voxel: got %v, want only the owning chunk", got)
	}
}

func TestVoxelAffectedChunksIncludesNeighborsAtChunkEdge(t *testing.T) {
	s := NewStore(testConfig())
	got := s.VoxelAffectedChunks(0, 8)
	if len(got) != 2 {
		t.Errorf("edge voxel: got %d affected chunks, want 2 (owner + one neighbor)", len(got))
	}
}

func TestLightTraversedChunksClampsToWorldBounds(t *testing.T) {
	s := NewStore(testConfig())
	got := s.LightTraversedChunks([2]int32{2, 2})
	for _, c := range got {
		if c[0] > 2 || c[1] > 2 {
			t.Errorf("got chunk %v outside MaxChunk bound (2,2)", c)
		}
	}
}

func TestScheduleActiveVoxelRescheduleOverwritesPreviousTick(t *testing.T) {
	s := NewStore(testConfig())
	v := [3]int32{1, 2, 3}

	s.ScheduleActiveVoxel(v, 100)
	s.ScheduleActiveVoxel(v, 10)

	due := s.PopDueActiveVoxels(10)
	if len(due) != 1 {
		t.Fatalf("got %d due voxels at tick 10, want 1", len(due))
	}
	if due[0].Tick != 10 {
		t.Errorf("got tick %d, want the rescheduled tick 10", due[0].Tick)
	}

	// The stale tick-100 heap entry must not resurface as a second pop.
	due = s.PopDueActiveVoxels(100)
	if len(due) != 0 {
		t.Errorf("got %d due voxels after the reschedule already fired, want 0", len(due))
	}
}

func TestTakeListenersDrainsAndClears(t *testing.T) {
	s := NewStore(testConfig())
	s.AddListener([2]int32{0, 0}, [2]int32{1, 1})
	s.AddListener([2]int32{0, 0}, [2]int32{2, 2})

	got := s.TakeListeners([2]int32{0, 0})
	if len(got) != 2 {
		t.Fatalf("got %d listeners, want 2", len(got))
	}

	again := s.TakeListeners([2]int32{0, 0})
	if len(again) != 0 {
		t.Errorf("got %d listeners on a second take, want 0 (already drained)", len(again))
	}
}

func TestDrainSendQueueEmptiesAfterDraining(t *testing.T) {
	s := NewStore(testConfig())
	s.QueueSend([2]int32{0, 0}, "full")
	s.QueueSend([2]int32{1, 0}, "full")

	got := s.DrainSendQueue()
	if len(got) != 2 {
		t.Fatalf("got %d queued sends, want 2", len(got))
	}
	if len(s.DrainSendQueue()) != 0 {
		t.Errorf("expected the send queue to be empty after draining")
	}
}
