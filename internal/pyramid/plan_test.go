package pyramid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlan(t *testing.T) {
	levels, err := Plan(300, 200, 256, 4)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(levels) != 10 {
		t.Fatalf("got %d levels, want 10", len(levels))
	}
	if diff := cmp.Diff(LevelPlan{Level: 9, Width: 300, Height: 200, Columns: 2, Rows: 1, Tiles: 2}, levels[0]); diff != "" {
		t.Errorf("level 9 mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(LevelPlan{Level: 0, Width: 1, Height: 1, Columns: 1, Rows: 1, Tiles: 1}, levels[9]); diff != "" {
		t.Errorf("level 0 mismatch (-want +got):\n%s", diff)
	}
	if got := TotalTiles(levels); got != 11 {
		t.Errorf("TotalTiles: got %d, want 11", got)
	}

	if _, err := Plan(10, 10, 4, 4); err == nil {
		t.Error("Plan should reject overlap equal to tile size")
	}
}

func TestPlan_MatchesIterate(t *testing.T) {
	c := newCanvas(t, createInMemoryImage(700, 333, white), DefaultOptions())
	var rec recorder
	if err := c.Iterate(&rec); err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}

	levels, err := Plan(700, 333, DefaultTileSize, DefaultOverlap)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	counts := rec.levels()
	for _, l := range levels {
		if counts[l.Level] != l.Tiles {
			t.Errorf("level %d: iterate emitted %d tiles, plan predicts %d", l.Level, counts[l.Level], l.Tiles)
		}
	}
}
