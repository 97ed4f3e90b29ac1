package pyramid

import (
	"fmt"
	"image"

	"github.com/ironsheep/deepzoom-tiler/internal/geometry"
)

// Sink receives finished tiles. The tile raster belongs to the sink once
// Accept is called; the canvas keeps no reference to it.
type Sink interface {
	Accept(tile image.Image, level, row, col int) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(tile image.Image, level, row, col int) error

// Accept calls f.
func (f SinkFunc) Accept(tile image.Image, level, row, col int) error {
	return f(tile, level, row, col)
}

// levelState is the working state for one level. It is rebuilt for every
// level rather than updated in place, so each level's inputs are explicit.
type levelState struct {
	level         int
	width, height int
	scale         float64
}

// Iterate cuts the whole pyramid and sends every tile to sink, finest level
// first. Within a level tiles are produced column by column, top to bottom.
// Each coarser level is half the size of the previous one, rounded up, so
// level 0 is always 1x1.
//
// Iterate consumes the canvas: afterwards the canvas raster and all overlay
// rasters are released and a second call returns ErrConsumed. Errors from the
// sink abort the walk immediately; tiles already accepted are not revisited.
func (c *Canvas) Iterate(sink Sink) error {
	if c.consumed {
		return ErrConsumed
	}
	c.consumed = true
	defer c.release()

	cw, ch := c.Dimensions(Raw)
	canvasLevel := geometry.MaxLevel(cw, ch)
	width, height := c.Dimensions(Total)
	maxLevel := geometry.MaxLevel(width, height)
	if len(c.overlays) == 0 {
		// The canvas is the only content, so no level may be skipped even
		// when an explicit scale has enlarged the total space.
		canvasLevel = maxLevel
	}

	c.logger.Debug("cutting pyramid",
		"width", width, "height", height,
		"max_level", maxLevel, "canvas_level", canvasLevel,
		"overlays", len(c.overlays), "scale", c.scale)

	state := levelState{level: maxLevel, width: width, height: height, scale: c.scale}
	for {
		n, err := c.cutLevel(sink, state, canvasLevel)
		if err != nil {
			return err
		}
		c.logger.Debug("level complete",
			"level", state.level, "width", state.width, "height", state.height, "tiles", n)

		if state.level == 0 {
			return nil
		}
		state = c.nextLevel(state)
	}
}

// cutLevel emits every tile of one level and returns how many were emitted.
func (c *Canvas) cutLevel(sink Sink, s levelState, canvasLevel int) (int, error) {
	bounds := image.Rect(0, 0, s.width, s.height)
	emitted := 0

	for _, t := range c.tiling.Grid(s.width, s.height) {
		rect := t.Rect.Intersect(bounds)

		var pieces []Piece
		for _, o := range c.overlays {
			if p, ok := o.Crop(rect); ok {
				pieces = append(pieces, p)
			}
		}

		var tile image.Image
		switch {
		case len(pieces) > 0:
			tile = c.Crop(s.scale, rect)
			for _, p := range pieces {
				tile = c.engine.Composite(tile, p.Raster, p.At)
			}
		case s.level <= canvasLevel:
			tile = c.Crop(s.scale, rect)
		default:
			continue
		}

		if err := sink.Accept(tile, s.level, t.Row, t.Col); err != nil {
			return emitted, fmt.Errorf("failed to emit tile %d/%d_%d: %w", s.level, t.Col, t.Row, err)
		}
		emitted++
	}
	return emitted, nil
}

// nextLevel halves the working state. With overlays the canvas raster is left
// alone and only the scale halves; without overlays the raster itself is
// replaced by a copy resized to the new level, which brings the scale to 1.
func (c *Canvas) nextLevel(s levelState) levelState {
	next := levelState{
		level:  s.level - 1,
		width:  geometry.Half(s.width),
		height: geometry.Half(s.height),
		scale:  s.scale,
	}
	if len(c.overlays) > 0 {
		next.scale = s.scale / 2
		for _, o := range c.overlays {
			o.HalfSize()
		}
	} else {
		c.raster = c.engine.Resize(c.raster, next.width, next.height)
		next.scale = 1
	}
	return next
}

func (c *Canvas) release() {
	c.raster = nil
	for _, o := range c.overlays {
		o.release()
	}
}
