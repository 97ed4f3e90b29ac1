// Package geometry provides the integer arithmetic behind Deep Zoom pyramids.
//
// It covers three things and holds no state:
//   - rectangle intersection in canvas coordinates
//   - pyramid level math (maximum level, per-level halving)
//   - the overlapping tile walk along one axis of a level
//
// # Coordinate System
//
// Rectangles are image.Rectangle values: Min is the top-left corner and Max the
// bottom-right corner, with X increasing rightward and Y increasing downward.
// All rectangles handed to this package live in the same space, the "total"
// coordinate space of the canvas at the level being processed.
//
// # Tile Walk
//
// Along each axis the first tile is TileSize+Overlap wide (it has no
// neighbour on its leading edge) and every later tile is TileSize+2*Overlap
// wide. Consecutive tiles start TileSize apart once the shared overlap band is
// discounted, so adjacent tiles overlap by exactly Overlap pixels on each
// shared edge. The last tile on an axis may extend past the level edge; callers
// clip it to the level bounds.
package geometry
