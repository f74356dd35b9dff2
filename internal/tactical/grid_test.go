package tactical

import (
	"math"
	"testing"
)

func TestPickFreeCellDistinctUntilFull(t *testing.T) {
	occupied := make(map[Cell]struct{})
	seen := make(map[Cell]struct{})

	for i := 0; i < GridSize*GridSize; i++ {
		c := pickFreeCell(occupied)
		if c.X < 0 || c.X >= GridSize || c.Y < 0 || c.Y >= GridSize {
			t.Fatalf("cell %d off-grid: %+v", i, c)
		}
		if _, dup := seen[c]; dup {
			t.Fatalf("cell %d duplicated before the grid filled: %+v", i, c)
		}
		seen[c] = struct{}{}
	}
	if len(seen) != GridSize*GridSize {
		t.Fatalf("expected all %d cells used, got %d", GridSize*GridSize, len(seen))
	}

	// Grid is full: only now may placements collapse onto the center.
	if c := pickFreeCell(occupied); c != centerCell {
		t.Errorf("full-grid fallback = %+v, want %+v", c, centerCell)
	}
}

func TestPercentRoundTrip(t *testing.T) {
	for y := int32(0); y < GridSize; y++ {
		for x := int32(0); x < GridSize; x++ {
			cell := Cell{X: x, Y: y}
			px, py := cell.Percent()
			if px < 0 || px > 100 || py < 0 || py > 100 {
				t.Fatalf("cell %+v maps outside [0,100]: (%f,%f)", cell, px, py)
			}
			if got := cellFromPercent(px, py); got != cell {
				t.Errorf("round trip %+v -> (%f,%f) -> %+v", cell, px, py, got)
			}
		}
	}
}

func TestPercentIsCellCenter(t *testing.T) {
	px, py := Cell{X: 7, Y: 7}.Percent()
	want := (7.0 + 0.5) / GridSize * 100
	if math.Abs(px-want) > 1e-9 || math.Abs(py-want) > 1e-9 {
		t.Errorf("center cell percent = (%f,%f), want %f", px, py, want)
	}
}

func TestCellFromPercentClamps(t *testing.T) {
	tests := []struct {
		x, y float64
		want Cell
	}{
		{-10, 50, Cell{X: 0, Y: 7}},
		{150, 50, Cell{X: GridSize - 1, Y: 7}},
		{100, 100, Cell{X: GridSize - 1, Y: GridSize - 1}},
	}
	for _, tt := range tests {
		if got := cellFromPercent(tt.x, tt.y); got != tt.want {
			t.Errorf("cellFromPercent(%f,%f) = %+v, want %+v", tt.x, tt.y, got, tt.want)
		}
	}
}
