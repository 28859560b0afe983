package voxel

import "testing"

func TestInsertExtractIDRoundTrips(t *testing.T) {
	raw := InsertID(0, 1234)
	if got := ExtractID(raw); got != 1234 {
		t.Errorf("ExtractID: got %d, want 1234", got)
	}
}

func TestInsertIDLeavesOtherFieldsUntouched(t *testing.T) {
	raw := InsertRotation(0, 5)
	raw = InsertYRotation(raw, 7)
	raw = InsertStage(raw, 3)
	raw = InsertID(raw, 42)

	if got := ExtractID(raw); got != 42 {
		t.Errorf("ExtractID: got %d, want 42", got)
	}
	if got := ExtractRotation(raw); got != 5 {
		t.Errorf("ExtractRotation: got %d, want 5", got)
	}
	if got := ExtractYRotation(raw); got != 7 {
		t.Errorf("ExtractYRotation: got %d, want 7", got)
	}
	if got := ExtractStage(raw); got != 3 {
		t.Errorf("ExtractStage: got %d, want 3", got)
	}
}

func TestInsertRotationMasksToNibble(t *testing.T) {
	raw := InsertRotation(0, 0xFF)
	if got := ExtractRotation(raw); got != 0xF {
		t.Errorf("ExtractRotation: got %#x, want %#x", got, 0xF)
	}
}

func TestPackedLightNibblesAreIndependent(t *testing.T) {
	light := InsertSunlight(0, 15)
	light = InsertRed(light, 9)
	light = InsertGreen(light, 4)
	light = InsertBlue(light, 1)

	cases := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"sunlight", ExtractSunlight(light), 15},
		{"red", ExtractRed(light), 9},
		{"green", ExtractGreen(light), 4},
		{"blue", ExtractBlue(light), 1},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestExtractInsertByColorMatchDedicatedAccessors(t *testing.T) {
	for _, color := range []Color{Sunlight, Red, Green, Blue} {
		light := Insert(0, color, 7)
		if got := Extract(light, color); got != 7 {
			t.Errorf("color %d: Extract/Insert got %d, want 7", color, got)
		}
	}
}

func TestInsertLevelMasksToNibble(t *testing.T) {
	light := InsertRed(0, 0xFF)
	if got := ExtractRed(light); got != 0xF {
		t.Errorf("ExtractRed: got %#x, want %#x", got, 0xF)
	}
}
