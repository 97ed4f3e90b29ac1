package document

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// DefaultSqueeze is the factor by which the background is smaller than the
// page grid.
const DefaultSqueeze = 4

// ErrNoPages is returned when a document has nothing to lay out.
var ErrNoPages = errors.New("document has no pages")

// Layout controls how pages are arranged.
type Layout struct {
	// Columns is the number of grid columns. Zero picks ceil(sqrt(pages)).
	Columns int

	// Gap is the spacing in pixels around every cell.
	Gap int

	// Squeeze is the overlay squeeze factor of every page.
	Squeeze float64

	// Stretch resizes each page to fill its cell. Otherwise pages keep their
	// size and are centred.
	Stretch bool

	// Background fills the space not covered by pages.
	Background color.Color
}

// DefaultLayout returns an automatic grid with no gap on a white background.
func DefaultLayout() Layout {
	return Layout{
		Squeeze:    DefaultSqueeze,
		Background: color.White,
	}
}

// Validate checks the layout parameters.
func (l Layout) Validate() error {
	if l.Columns < 0 {
		return fmt.Errorf("columns must not be negative, got %d", l.Columns)
	}
	if l.Gap < 0 {
		return fmt.Errorf("gap must not be negative, got %d", l.Gap)
	}
	if !(l.Squeeze > 0) || math.IsInf(l.Squeeze, 0) {
		return fmt.Errorf("squeeze must be positive, got %v", l.Squeeze)
	}
	return nil
}

// Grid is a computed page arrangement.
type Grid struct {
	Columns    int `json:"columns"`
	Rows       int `json:"rows"`
	CellWidth  int `json:"cell_width"`
	CellHeight int `json:"cell_height"`
	Gap        int `json:"gap"`
}

// Arrange computes the grid for pages of the given sizes.
func Arrange(sizes []image.Point, columns, gap int) (Grid, error) {
	if len(sizes) == 0 {
		return Grid{}, ErrNoPages
	}
	if columns <= 0 {
		columns = int(math.Ceil(math.Sqrt(float64(len(sizes)))))
	}
	columns = min(columns, len(sizes))

	g := Grid{
		Columns: columns,
		Rows:    (len(sizes) + columns - 1) / columns,
		Gap:     gap,
	}
	for _, s := range sizes {
		g.CellWidth = max(g.CellWidth, s.X)
		g.CellHeight = max(g.CellHeight, s.Y)
	}
	return g, nil
}

// Size returns the total width and height of the grid including gaps.
func (g Grid) Size() (int, int) {
	w := g.Columns*g.CellWidth + (g.Columns+1)*g.Gap
	h := g.Rows*g.CellHeight + (g.Rows+1)*g.Gap
	return w, h
}

// Cell returns the rectangle of the i-th cell, counting row by row.
func (g Grid) Cell(i int) image.Rectangle {
	col, row := i%g.Columns, i/g.Columns
	x := g.Gap + col*(g.CellWidth+g.Gap)
	y := g.Gap + row*(g.CellHeight+g.Gap)
	return image.Rect(x, y, x+g.CellWidth, y+g.CellHeight)
}

// Centre returns the top-left corner that centres a w x h page in cell.
func Centre(cell image.Rectangle, w, h int) image.Point {
	return image.Pt(cell.Min.X+(cell.Dx()-w)/2, cell.Min.Y+(cell.Dy()-h)/2)
}
