package pyramid

import (
	"github.com/ironsheep/deepzoom-tiler/internal/geometry"
)

// LevelPlan describes the tile grid of one pyramid level.
type LevelPlan struct {
	Level   int `json:"level"`
	Width   int `json:"width"`
	Height  int `json:"height"`
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
	Tiles   int `json:"tiles"`
}

// Plan returns the grid of every level for an image of the given total size,
// finest level first. It predicts the tiles Iterate emits for a canvas
// without overlays; with overlays, levels finer than the canvas raster may
// emit fewer.
func Plan(width, height, tileSize, overlap int) ([]LevelPlan, error) {
	tiling := geometry.Tiling{TileSize: tileSize, Overlap: overlap}
	if err := tiling.Validate(); err != nil {
		return nil, err
	}

	maxLevel := geometry.MaxLevel(width, height)
	levels := make([]LevelPlan, 0, maxLevel+1)
	for level := maxLevel; level >= 0; level-- {
		cols := len(tiling.Spans(width))
		rows := len(tiling.Spans(height))
		levels = append(levels, LevelPlan{
			Level:   level,
			Width:   width,
			Height:  height,
			Columns: cols,
			Rows:    rows,
			Tiles:   cols * rows,
		})
		width, height = geometry.Half(width), geometry.Half(height)
	}
	return levels, nil
}

// TotalTiles sums the tiles of every level in a plan.
func TotalTiles(levels []LevelPlan) int {
	n := 0
	for _, l := range levels {
		n += l.Tiles
	}
	return n
}
