package raster

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a "#RRGGBB" colour, with or without the leading '#', or
// the word "transparent".
func ParseColor(s string) (color.Color, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "transparent") {
		return color.Transparent, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Blank returns a width x height raster filled with fill.
func Blank(width, height int, fill color.Color) image.Image {
	if width <= 0 || height <= 0 {
		return empty(width, height)
	}
	return imaging.New(width, height, fill)
}
