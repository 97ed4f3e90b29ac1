package geometry

import "math/bits"

// MaxLevel returns the finest pyramid level for an image of the given size.
//
// The result is ceil(log2(max(width, height))): the smallest level whose
// nominal side 2^level covers the larger image dimension. Images whose larger
// side is 1 pixel or less have a single level, 0.
//
// Examples:
//
//	MaxLevel(512, 512) == 9
//	MaxLevel(300, 200) == 9
//	MaxLevel(257, 1)   == 9
//	MaxLevel(1, 1)     == 0
func MaxLevel(width, height int) int {
	n := max(width, height)
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Half returns n halved and rounded up, the size of an axis one level coarser.
//
// Rounding up keeps every level at least one pixel wide until level 0, which
// matches how Deep Zoom viewers derive level sizes from the full resolution.
// Non-positive sizes stay degenerate and collapse to 0.
func Half(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + 1) / 2
}

// HalfOffset halves a position, truncating toward zero.
func HalfOffset(n int) int {
	return n / 2
}

// LevelSize returns the dimensions of level for an image whose finest level
// has the given size, by repeatedly applying Half.
func LevelSize(width, height, level int) (int, int) {
	for l := MaxLevel(width, height); l > level; l-- {
		width, height = Half(width), Half(height)
	}
	return width, height
}
