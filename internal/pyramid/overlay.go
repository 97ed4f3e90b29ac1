package pyramid

import (
	"fmt"
	"image"

	"github.com/ironsheep/deepzoom-tiler/internal/geometry"
	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// Overlay is a secondary raster placed on the canvas.
//
// Its position is in total coordinates at the level currently being cut, and
// its raster is at that level's resolution. HalfSize moves both one level
// coarser.
type Overlay struct {
	engine  raster.Engine
	raster  image.Image
	x, y    int
	squeeze float64
}

// NewOverlay places img with its top-left corner at (x, y) in full-resolution
// total coordinates. squeeze is the factor by which the canvas raster has to
// be scaled up to host img at native resolution; it must be positive.
func NewOverlay(engine raster.Engine, img image.Image, x, y int, squeeze float64) (*Overlay, error) {
	if !(squeeze > 0) {
		return nil, fmt.Errorf("%w: overlay squeeze must be positive, got %v", ErrInvalidGeometry, squeeze)
	}
	return &Overlay{
		engine:  engine,
		raster:  img,
		x:       x,
		y:       y,
		squeeze: squeeze,
	}, nil
}

// Squeeze returns the overlay's scale-up factor.
func (o *Overlay) Squeeze() float64 {
	return o.squeeze
}

// Position returns the overlay's current top-left corner.
func (o *Overlay) Position() image.Point {
	return image.Pt(o.x, o.y)
}

// Size returns the overlay raster's current dimensions.
func (o *Overlay) Size() (int, int) {
	return raster.Dimensions(o.raster)
}

// Bounds returns the rectangle the overlay covers in total coordinates.
func (o *Overlay) Bounds() image.Rectangle {
	w, h := o.Size()
	return image.Rect(o.x, o.y, o.x+w, o.y+h)
}

// Piece is the part of an overlay that falls inside one tile.
type Piece struct {
	Raster image.Image
	At     image.Point // offset relative to the tile's top-left corner
}

// Crop returns the part of the overlay inside tile, positioned relative to
// the tile origin. ok is false when the overlay contributes nothing, which
// includes an intersection of zero area.
func (o *Overlay) Crop(tile image.Rectangle) (piece Piece, ok bool) {
	r, ok := geometry.Intersection(o.Bounds(), tile)
	if !ok || r.Empty() {
		return Piece{}, false
	}
	local := r.Sub(image.Pt(o.x, o.y)).Add(o.raster.Bounds().Min)
	return Piece{
		Raster: o.engine.Crop(o.raster, local),
		At:     r.Min.Sub(tile.Min),
	}, true
}

// HalfSize moves the overlay one level coarser: the raster is resized to half
// its dimensions (rounded up) and the position is halved. Each overlay only
// touches its own state, so the order in which overlays are halved does not
// matter.
func (o *Overlay) HalfSize() {
	w, h := o.Size()
	o.raster = o.engine.Resize(o.raster, geometry.Half(w), geometry.Half(h))
	o.x = geometry.HalfOffset(o.x)
	o.y = geometry.HalfOffset(o.y)
}

// release drops the raster once the pyramid is finished.
func (o *Overlay) release() {
	o.raster = nil
}
