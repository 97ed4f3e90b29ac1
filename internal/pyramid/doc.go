// Package pyramid cuts a raster, optionally composited with overlays, into a
// Deep Zoom image pyramid.
//
// A Canvas holds the primary raster together with the pyramid parameters and
// zero or more Overlays. Descriptor renders the XML manifest for the canvas;
// Iterate walks every level from full resolution down to level 0 and hands
// each finished tile to a Sink.
//
// # Total and Canvas Dimensions
//
// Each Overlay carries a squeeze factor: how much the canvas must be scaled up
// for the overlay to be shown at its native resolution. The pyramid is built
// over the "total" space, the canvas raster scaled by the largest squeeze
// factor. The canvas raster itself is never upscaled as a whole; each tile is
// cropped from it at reduced size and resized on demand.
//
// # Level Walk
//
// At every level the tile grid is laid out by geometry.Tiling. A tile that
// intersects any overlay is the canvas crop with the overlay pieces drawn on
// top in overlay order. A tile with no overlay is emitted only while the canvas
// raster still has real resolution at that level. Between levels the working
// size halves, overlays halve their own rasters and positions, and a canvas
// without overlays is resized in place.
//
// # Consumption
//
// The per-level halving is destructive: Iterate consumes the Canvas and its
// Overlays, and a second call returns ErrConsumed. Call Descriptor before
// Iterate. A Canvas must not be used from more than one goroutine.
package pyramid
