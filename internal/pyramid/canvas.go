package pyramid

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/ironsheep/deepzoom-tiler/internal/geometry"
	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

var (
	// ErrInvalidGeometry is returned for parameters that cannot produce a
	// tile grid.
	ErrInvalidGeometry = errors.New("invalid pyramid geometry")

	// ErrConsumed is returned by Iterate on a Canvas that was already cut.
	ErrConsumed = errors.New("canvas already consumed by Iterate")
)

// Default pyramid parameters.
const (
	DefaultTileSize = 256
	DefaultOverlap  = 4
	DefaultFormat   = raster.JPG
)

// Options holds the pyramid parameters of a Canvas.
type Options struct {
	TileSize int
	Overlap  int
	Format   raster.Format

	// Scale is the initial canvas scale. It is replaced by the largest
	// overlay squeeze factor as soon as total dimensions are computed, so
	// it only matters for a canvas without overlays. Zero means 1.
	Scale float64

	// Logger receives per-level debug records. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns 256 pixel tiles with 4 pixels of overlap, encoded as
// JPEG.
func DefaultOptions() Options {
	return Options{
		TileSize: DefaultTileSize,
		Overlap:  DefaultOverlap,
		Format:   DefaultFormat,
		Scale:    1,
	}
}

// DimensionKind selects which size Canvas.Dimensions reports.
type DimensionKind int

const (
	// Total is the logical pyramid size: the canvas raster scaled by the
	// largest overlay squeeze factor.
	Total DimensionKind = iota

	// Raw is the canvas raster's own pixel size.
	Raw
)

// Canvas is the primary raster of a pyramid plus its parameters and overlays.
type Canvas struct {
	engine   raster.Engine
	logger   *slog.Logger
	raster   image.Image
	tiling   geometry.Tiling
	format   raster.Format
	scale    float64
	overlays []*Overlay
	consumed bool
}

// NewCanvas builds a canvas over img. Overlays are drawn in the order given,
// later overlays on top.
func NewCanvas(engine raster.Engine, img image.Image, opts Options, overlays ...*Overlay) (*Canvas, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: nil raster engine", ErrInvalidGeometry)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil canvas raster", ErrInvalidGeometry)
	}
	tiling := geometry.Tiling{TileSize: opts.TileSize, Overlap: opts.Overlap}
	if err := tiling.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidGeometry, opts.Scale)
	}
	format := opts.Format
	if format == "" {
		format = DefaultFormat
	}
	for i, o := range overlays {
		if o == nil {
			return nil, fmt.Errorf("%w: overlay %d is nil", ErrInvalidGeometry, i)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Canvas{
		engine:   engine,
		logger:   logger,
		raster:   img,
		tiling:   tiling,
		format:   format,
		scale:    scale,
		overlays: overlays,
	}, nil
}

// TileSize returns the nominal tile size.
func (c *Canvas) TileSize() int { return c.tiling.TileSize }

// Overlap returns the tile overlap.
func (c *Canvas) Overlap() int { return c.tiling.Overlap }

// Format returns the tile format tag.
func (c *Canvas) Format() raster.Format { return c.format }

// Scale returns the canvas scale as last stored by Dimensions(Total).
func (c *Canvas) Scale() float64 { return c.scale }

// Overlays returns the canvas overlays in draw order.
func (c *Canvas) Overlays() []*Overlay { return c.overlays }

// Dimensions reports the canvas size.
//
// Raw returns the canvas raster's current pixel size. Total sets the canvas
// scale to the largest overlay squeeze factor (leaving it unchanged when there
// are no overlays) and returns the raster size multiplied by that scale,
// rounded down.
func (c *Canvas) Dimensions(kind DimensionKind) (int, int) {
	w, h := raster.Dimensions(c.raster)
	if kind == Raw {
		return w, h
	}
	if len(c.overlays) > 0 {
		scale := c.overlays[0].Squeeze()
		for _, o := range c.overlays[1:] {
			scale = max(scale, o.Squeeze())
		}
		c.scale = scale
	}
	return int(float64(w) * c.scale), int(float64(h) * c.scale)
}

// Crop returns the canvas content for the tile rectangle r at the given
// scale, without any overlay.
//
// At scale 1 the raster is cropped directly. Otherwise r is first mapped into
// raster coordinates by dividing every component by scale (rounding down),
// that region is cropped, and the result is resized to r's size. This is how a
// canvas raster smaller than the total space still yields full-size tiles.
func (c *Canvas) Crop(scale float64, r image.Rectangle) image.Image {
	origin := c.raster.Bounds().Min
	if scale == 1 {
		return c.engine.Crop(c.raster, r.Add(origin))
	}
	down := func(v int) int { return int(math.Floor(float64(v) / scale)) }
	x, y := down(r.Min.X), down(r.Min.Y)
	src := image.Rect(x, y, x+down(r.Dx()), y+down(r.Dy()))
	return c.engine.Resize(c.engine.Crop(c.raster, src.Add(origin)), r.Dx(), r.Dy())
}

// Descriptor renders the Deep Zoom XML manifest for the canvas, using its
// total dimensions.
func (c *Canvas) Descriptor() string {
	w, h := c.Dimensions(Total)
	return Descriptor(c.tiling.TileSize, c.tiling.Overlap, c.format.String(), w, h)
}

// Consumed reports whether Iterate has run.
func (c *Canvas) Consumed() bool {
	return c.consumed
}
