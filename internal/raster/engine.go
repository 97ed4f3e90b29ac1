package raster

import (
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
)

// ErrUnsupportedFormat is returned for format tags an engine cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Engine is the raster capability used to cut pyramids.
//
// Implementations must not modify the images they are given.
type Engine interface {
	// Read decodes the image file at path.
	Read(path string) (image.Image, error)

	// Clone returns an independent copy of img.
	Clone(img image.Image) image.Image

	// Crop returns the part of img inside r. The rectangle is clipped to
	// the image bounds; a rectangle outside the image yields an empty
	// raster.
	Crop(img image.Image, r image.Rectangle) image.Image

	// Resize scales img to exactly width x height. A non-positive target
	// dimension yields an empty raster.
	Resize(img image.Image, width, height int) image.Image

	// Composite draws overlay onto a copy of base with its top-left corner
	// at the given point, using Porter-Duff "over".
	Composite(base, overlay image.Image, at image.Point) image.Image

	// Encode writes img to w in the given format.
	Encode(w io.Writer, img image.Image, format Format) error

	// Write encodes img into a new file at path.
	Write(img image.Image, path string, format Format) error
}

// Dimensions returns the pixel width and height of img. A nil image has no
// pixels.
func Dimensions(img image.Image) (int, int) {
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// Format is an output encoding tag such as "jpg" or "png".
type Format string

// Supported format tags. Aliases keep the tag the caller chose, because the
// tag is also the tile file extension.
const (
	JPG  Format = "jpg"
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIF  Format = "tif"
	TIFF Format = "tiff"
)

// ParseFormat validates a format tag. Matching is case-insensitive and a
// leading dot is ignored, so ".PNG" parses as PNG.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	switch f {
	case JPG, JPEG, PNG, GIF, BMP, TIF, TIFF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// IsJPEG reports whether f is one of the JPEG tags.
func (f Format) IsJPEG() bool {
	return f == JPG || f == JPEG
}

// String returns the tag.
func (f Format) String() string {
	return string(f)
}

// Filter names a resampling kernel.
type Filter string

// Resampling kernels understood by both engines.
const (
	Lanczos    Filter = "lanczos"
	CatmullRom Filter = "catmullrom"
	Linear     Filter = "linear"
	Box        Filter = "box"
	Nearest    Filter = "nearest"
)

// ParseFilter validates a filter name.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(s))
	switch f {
	case Lanczos, CatmullRom, Linear, Box, Nearest:
		return f, nil
	}
	return "", fmt.Errorf("unknown resampling filter %q", s)
}

// Kind selects an Engine implementation.
type Kind string

// Engine implementations.
const (
	KindImaging Kind = "imaging"
	KindBild    Kind = "bild"
)

// Settings configures New.
type Settings struct {
	Kind    Kind
	Filter  Filter
	Quality int // JPEG quality 1-100; 0 selects the engine default
}

// New constructs the engine named by s.Kind.
func New(s Settings) (Engine, error) {
	filter := s.Filter
	if filter == "" {
		filter = Lanczos
	}
	if _, err := ParseFilter(string(filter)); err != nil {
		return nil, err
	}
	if s.Quality < 0 || s.Quality > 100 {
		return nil, fmt.Errorf("JPEG quality must be between 1 and 100, got %d", s.Quality)
	}

	switch s.Kind {
	case KindImaging, "":
		return NewImaging(filter, s.Quality), nil
	case KindBild:
		return NewBild(filter, s.Quality), nil
	default:
		return nil, fmt.Errorf("unknown raster engine %q", s.Kind)
	}
}

// empty returns a raster with no pixels but the requested nominal size
// clamped at zero, which keeps Dimensions meaningful for degenerate levels.
func empty(width, height int) *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
}
