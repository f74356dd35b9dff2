// Package tactical lays out loot, mob and NPC entities on a room's
// 15x15 combat grid and persists the board.
package tactical

import "math/rand/v2"

// GridSize is the per-room grid extent in cells.
const GridSize = 15

// placementAttempts bounds the random search for a free cell before the
// deterministic fallback kicks in.
const placementAttempts = 100

// Cell is a grid coordinate in [0,GridSize) on both axes.
type Cell struct {
	X int32
	Y int32
}

// centerCell is the deterministic fallback for a full grid.
var centerCell = Cell{X: GridSize / 2, Y: GridSize / 2}

// Percent converts a cell to the stored percentage coordinates at the
// cell's center.
func (c Cell) Percent() (float64, float64) {
	return (float64(c.X) + 0.5) / GridSize * 100, (float64(c.Y) + 0.5) / GridSize * 100
}

// cellFromPercent inverts Percent for rows loaded from storage.
func cellFromPercent(x, y float64) Cell {
	gx := int32(x / 100 * GridSize)
	gy := int32(y / 100 * GridSize)
	return Cell{X: clampCell(gx), Y: clampCell(gy)}
}

func clampCell(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v >= GridSize {
		return GridSize - 1
	}
	return v
}

// pickFreeCell returns a cell absent from occupied and records it there.
// It tries random cells up to placementAttempts times, then sweeps the grid
// for any free cell, and only when the grid is genuinely full falls back to
// the center cell — entities overlap there rather than silently anywhere.
func pickFreeCell(occupied map[Cell]struct{}) Cell {
	for range placementAttempts {
		c := Cell{X: int32(rand.IntN(GridSize)), Y: int32(rand.IntN(GridSize))}
		if _, taken := occupied[c]; !taken {
			occupied[c] = struct{}{}
			return c
		}
	}
	for y := int32(0); y < GridSize; y++ {
		for x := int32(0); x < GridSize; x++ {
			c := Cell{X: x, Y: y}
			if _, taken := occupied[c]; !taken {
				occupied[c] = struct{}{}
				return c
			}
		}
	}
	return centerCell
}
