// Package raster provides the pixel operations the pyramid builder delegates to.
//
// The pyramid code never touches pixels itself. It asks an Engine to decode,
// crop, resize, composite and encode rasters, and it reads sizes through
// Dimensions. Two engines are provided:
//   - Imaging, built on github.com/disintegration/imaging (the default)
//   - Bild, built on github.com/anthonynsimon/bild
//
// Both engines return fresh rasters from every operation and never modify
// their inputs, so a decoded source image can be shared (for example through
// Cache) while a pyramid is being cut from it.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner. Crop
// rectangles follow image.Rectangle conventions: Min is inclusive, Max is
// exclusive. Every raster an Engine returns has its origin at (0,0).
//
// # Formats
//
// A Format is the tag written into Deep Zoom descriptors and used as the tile
// file extension ("jpg", "png", ...). Decoding accepts PNG, JPEG, GIF, BMP,
// TIFF and WebP; encoding support depends on the engine.
//
// # Thread Safety
//
// Engines are stateless once constructed and safe for concurrent use. Cache is
// safe for concurrent use.
package raster
