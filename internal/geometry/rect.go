package geometry

import "image"

// Intersects reports whether a and b touch or overlap.
//
// The test only fails when one rectangle lies strictly to one side of the
// other, so rectangles that merely share an edge count as intersecting.
// Both rectangles are canonicalised first, which makes the result independent
// of which corner was given as Min.
func Intersects(a, b image.Rectangle) bool {
	a, b = a.Canon(), b.Canon()
	return !(a.Max.X < b.Min.X ||
		b.Max.X < a.Min.X ||
		a.Max.Y < b.Min.Y ||
		b.Max.Y < a.Min.Y)
}

// Intersection returns the rectangle shared by a and b.
//
// The boolean is false exactly when Intersects(a, b) is false. When it is true
// the result may still be empty (zero width or height) for rectangles that
// only share an edge. The result is expressed in the same coordinate space as
// the inputs, and Intersection(a, b) == Intersection(b, a).
func Intersection(a, b image.Rectangle) (image.Rectangle, bool) {
	if !Intersects(a, b) {
		return image.Rectangle{}, false
	}
	a, b = a.Canon(), b.Canon()
	return image.Rect(
		max(a.Min.X, b.Min.X),
		max(a.Min.Y, b.Min.Y),
		min(a.Max.X, b.Max.X),
		min(a.Max.Y, b.Max.Y),
	), true
}
