package document

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/deepzoom-tiler/internal/pyramid"
	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// Page is one decoded page of a document.
type Page struct {
	Path  string
	Image image.Image
}

// Load decodes every path through cache, in order.
func Load(cache *raster.Cache, paths []string) ([]Page, error) {
	pages := make([]Page, 0, len(paths))
	for _, p := range paths {
		img, err := cache.Load(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %s: %w", p, err)
		}
		pages = append(pages, Page{Path: p, Image: img})
	}
	return pages, nil
}

// Group splits pages into consecutive runs of at most perPyramid pages. Zero
// or less keeps every page in one group.
func Group[T any](pages []T, perPyramid int) [][]T {
	if len(pages) == 0 {
		return nil
	}
	if perPyramid <= 0 || perPyramid >= len(pages) {
		return [][]T{pages}
	}
	groups := make([][]T, 0, (len(pages)+perPyramid-1)/perPyramid)
	for start := 0; start < len(pages); start += perPyramid {
		end := min(start+perPyramid, len(pages))
		groups = append(groups, pages[start:end])
	}
	return groups
}

// GroupName names the output of group n (counting from 1) out of total.
func GroupName(name string, n, total int) string {
	if total <= 1 {
		return name
	}
	return fmt.Sprintf("%s-%d", name, n)
}

// Arrangement returns the grid the pages will be laid out on.
func Arrangement(pages []Page, layout Layout) (Grid, error) {
	sizes := make([]image.Point, len(pages))
	for i, p := range pages {
		w, h := raster.Dimensions(p.Image)
		sizes[i] = image.Pt(w, h)
	}
	return Arrange(sizes, layout.Columns, layout.Gap)
}

// Build lays pages out and returns the canvas to cut. The canvas raster is a
// blank background at 1/squeeze of the grid size, rounded up, and every page
// is an overlay at its cell.
func Build(engine raster.Engine, pages []Page, layout Layout, opts pyramid.Options) (*pyramid.Canvas, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pyramid.ErrInvalidGeometry, err)
	}
	grid, err := Arrangement(pages, layout)
	if err != nil {
		return nil, err
	}

	w, h := grid.Size()
	up := func(v int) int { return int(math.Ceil(float64(v) / layout.Squeeze)) }
	background := layout.Background
	if background == nil {
		background = DefaultLayout().Background
	}
	base := raster.Blank(up(w), up(h), background)

	overlays := make([]*pyramid.Overlay, 0, len(pages))
	for i, p := range pages {
		cell := grid.Cell(i)
		img := p.Image
		at := cell.Min
		if layout.Stretch {
			img = engine.Resize(img, cell.Dx(), cell.Dy())
		} else {
			pw, ph := raster.Dimensions(img)
			at = Centre(cell, pw, ph)
		}
		o, err := pyramid.NewOverlay(engine, img, at.X, at.Y, layout.Squeeze)
		if err != nil {
			return nil, err
		}
		overlays = append(overlays, o)
	}

	if opts.Logger != nil {
		opts.Logger.Debug("document layout",
			"pages", len(pages), "columns", grid.Columns, "rows", grid.Rows,
			"cell_width", grid.CellWidth, "cell_height", grid.CellHeight,
			"width", w, "height", h)
	}
	return pyramid.NewCanvas(engine, base, opts, overlays...)
}
