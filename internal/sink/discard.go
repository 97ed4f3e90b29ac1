package sink

import (
	"image"
	"log/slog"

	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// Discard accepts tiles and keeps nothing. With a Logger set, each tile is
// reported at debug level.
type Discard struct {
	Logger *slog.Logger
}

// Accept drops the tile.
func (d Discard) Accept(tile image.Image, level, row, col int) error {
	if d.Logger != nil {
		w, h := raster.Dimensions(tile)
		d.Logger.Debug("tile", "level", level, "row", row, "col", col, "width", w, "height", h)
	}
	return nil
}
