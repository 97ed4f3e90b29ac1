package geometry

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidTiling is returned by Tiling.Validate for parameters that would
// never advance the tile walk.
var ErrInvalidTiling = errors.New("invalid tiling")

// Tiling holds the tile parameters of a pyramid.
type Tiling struct {
	// TileSize is the nominal tile side in pixels, excluding overlap.
	TileSize int

	// Overlap is the number of pixels a tile shares with each neighbour.
	Overlap int
}

// Validate checks that the tile walk advances on every step.
func (t Tiling) Validate() error {
	if t.TileSize <= 0 {
		return fmt.Errorf("%w: tile size must be positive, got %d", ErrInvalidTiling, t.TileSize)
	}
	if t.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidTiling, t.Overlap)
	}
	if t.Overlap >= t.TileSize {
		return fmt.Errorf("%w: overlap %d must be smaller than tile size %d", ErrInvalidTiling, t.Overlap, t.TileSize)
	}
	return nil
}

// BorderSize is the extent of the first tile on an axis.
func (t Tiling) BorderSize() int {
	return t.TileSize + t.Overlap
}

// OverlapSize is the extent of every tile after the first on an axis.
func (t Tiling) OverlapSize() int {
	return t.TileSize + 2*t.Overlap
}

// Span is one tile position along a single axis.
type Span struct {
	Index  int // 0-based column or row number
	Offset int // start of the tile in level coordinates
	Extent int // nominal tile length, before clipping to the level
}

// End returns Offset+Extent.
func (s Span) End() int {
	return s.Offset + s.Extent
}

// Spans walks an axis of the given length and returns every tile position.
//
// The walk starts at 0 and continues while the offset is below length, so a
// length that is not a multiple of the step yields a shorter final tile once
// clipped. A non-positive length yields no spans. Spans panics if the tiling
// is invalid, since such a walk never terminates; call Validate first.
func (t Tiling) Spans(length int) []Span {
	if err := t.Validate(); err != nil {
		panic(err)
	}
	var spans []Span
	for offset, index := 0, 0; offset < length; index++ {
		extent := t.OverlapSize()
		if offset == 0 {
			extent = t.BorderSize()
		}
		spans = append(spans, Span{Index: index, Offset: offset, Extent: extent})
		offset += extent - 2*t.Overlap
	}
	return spans
}

// Tile is one cell of a level grid.
type Tile struct {
	Row, Col int
	Rect     image.Rectangle // nominal rectangle, may extend past the level
}

// Grid returns the tiles of a level of the given size in walk order: column
// by column, and top to bottom within each column.
func (t Tiling) Grid(width, height int) []Tile {
	cols := t.Spans(width)
	rows := t.Spans(height)
	tiles := make([]Tile, 0, len(cols)*len(rows))
	for _, c := range cols {
		for _, r := range rows {
			tiles = append(tiles, Tile{
				Row:  r.Index,
				Col:  c.Index,
				Rect: image.Rect(c.Offset, r.Offset, c.End(), r.End()),
			})
		}
	}
	return tiles
}
