package registry

import "testing"

func TestNewPanicsOnDuplicateID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected New to panic on a duplicate block id")
		}
	}()
	air := DefaultAir()
	dup1 := NewBlock(1, "a").Build()
	dup2 := NewBlock(1, "b").Build()
	New([]Block{air, dup1, dup2}, air.ID, air.ID)
}

func TestNewPanicsWhenAirIndexMissing(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected New to panic when airIndex has no definition")
		}
	}()
	stone := NewBlock(1, "stone").Build()
	New([]Block{stone}, 0, 1)
}

func TestLookupFallsBackToDefaultForUnknownID(t *testing.T) {
	air := DefaultAir()
	stone := NewBlock(1, "stone").Build()
	reg := New([]Block{air, stone}, air.ID, air.ID)

	got := reg.Lookup(999)
	if got.ID != air.ID {
		t.Errorf("Lookup(999): got id %d, want air id %d", got.ID, air.ID)
	}
}

func TestLookupReturnsRegisteredBlock(t *testing.T) {
	air := DefaultAir()
	stone := NewBlock(1, "stone").Build()
	reg := New([]Block{air, stone}, air.ID, air.ID)

	got := reg.Lookup(1)
	if got.Name != "stone" {
		t.Errorf("Lookup(1): got name %q, want %q", got.Name, "stone")
	}
}

func TestHasTypeReportsRegisteredIDsOnly(t *testing.T) {
	air := DefaultAir()
	stone := NewBlock(1, "stone").Build()
	reg := New([]Block{air, stone}, air.ID, air.ID)

	if !reg.HasType(1) {
		t.Errorf("HasType(1): want true")
	}
	if reg.HasType(999) {
		t.Errorf("HasType(999): want false")
	}
}

func TestOpaqueFlagDerivedFromTransparency(t *testing.T) {
	opaque := NewBlock(1, "stone").Transparency([6]bool{false, false, false, false, false, false}).Build()
	if !opaque.IsOpaque {
		t.Errorf("expected an all-closed transparency block to be opaque")
	}

	glass := NewBlock(2, "glass").Transparency([6]bool{true, true, true, true, true, true}).Build()
	if glass.IsOpaque {
		t.Errorf("expected an all-open transparency block to not be opaque")
	}
}

func TestIsLightSetWhenAnyStaticTorchLevelPositive(t *testing.T) {
	plain := NewBlock(1, "stone").Build()
	if plain.IsLight {
		t.Errorf("plain block should not be a light source")
	}

	torch := NewBlock(2, "torch").RedLightLevel(10).Build()
	if !torch.IsLight {
		t.Errorf("a block with a positive static red light level should be a light source")
	}
}

func TestGreedyMeshEligibleNoRotateRequiresFullBlockAndNoRotation(t *testing.T) {
	full := NewBlock(1, "stone").Build()
	if !full.GreedyMeshEligibleNoRotate {
		t.Errorf("a default full cube block should be greedy-mesh eligible")
	}

	rotatable := NewBlock(2, "log").Rotatable(true).Build()
	if rotatable.GreedyMeshEligibleNoRotate {
		t.Errorf("a rotatable block should not be greedy-mesh eligible")
	}
}
