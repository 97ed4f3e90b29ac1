package sink

import (
	"image"
	"sort"

	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// LevelCount summarises the tiles one level produced.
type LevelCount struct {
	Level  int   `json:"level"`
	Tiles  int   `json:"tiles"`
	Pixels int64 `json:"pixels"`
}

// Counter tallies accepted tiles per level. The zero value is ready to use.
type Counter struct {
	levels map[int]*LevelCount
	total  int
}

// Accept counts the tile.
func (c *Counter) Accept(tile image.Image, level, row, col int) error {
	if c.levels == nil {
		c.levels = make(map[int]*LevelCount)
	}
	lc, ok := c.levels[level]
	if !ok {
		lc = &LevelCount{Level: level}
		c.levels[level] = lc
	}
	w, h := raster.Dimensions(tile)
	lc.Tiles++
	lc.Pixels += int64(w) * int64(h)
	c.total++
	return nil
}

// Tiles returns the number of tiles accepted so far.
func (c *Counter) Tiles() int {
	return c.total
}

// Levels returns the per-level counts, finest level first.
func (c *Counter) Levels() []LevelCount {
	out := make([]LevelCount, 0, len(c.levels))
	for _, lc := range c.levels {
		out = append(out, *lc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level > out[j].Level })
	return out
}
