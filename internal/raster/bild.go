package raster

import (
	"fmt"
	"image"
	"image/draw"
	"io"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// defaultBildQuality matches the JPEG quality imaging uses when none is set.
const defaultBildQuality = 95

// Bild is an Engine backed by github.com/anthonynsimon/bild.
//
// It encodes PNG and JPEG only; other tags return ErrUnsupportedFormat.
type Bild struct {
	filter  transform.ResampleFilter
	quality int
}

// NewBild returns a Bild engine resampling with filter.
func NewBild(filter Filter, quality int) *Bild {
	if quality == 0 {
		quality = defaultBildQuality
	}
	return &Bild{
		filter:  bildFilter(filter),
		quality: quality,
	}
}

func bildFilter(f Filter) transform.ResampleFilter {
	switch f {
	case CatmullRom:
		return transform.CatmullRom
	case Linear:
		return transform.Linear
	case Box:
		return transform.Box
	case Nearest:
		return transform.NearestNeighbor
	default:
		return transform.Lanczos
	}
}

// Read decodes the file at path.
func (e *Bild) Read(path string) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Clone returns an RGBA copy of img.
func (e *Bild) Clone(img image.Image) image.Image {
	return rebase(clone.AsRGBA(img))
}

// Crop cuts r out of img.
func (e *Bild) Crop(img image.Image, r image.Rectangle) image.Image {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return empty(0, 0)
	}
	return rebase(transform.Crop(img, r))
}

// Resize scales img to width x height.
func (e *Bild) Resize(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return empty(width, height)
	}
	w, h := Dimensions(img)
	if w == 0 || h == 0 {
		return empty(width, height)
	}
	return transform.Resize(img, width, height, e.filter)
}

// Composite blends overlay onto a copy of base at the given point.
func (e *Bild) Composite(base, overlay image.Image, at image.Point) image.Image {
	dst := rebase(clone.AsRGBA(base))
	ob := overlay.Bounds()
	draw.Draw(dst, ob.Sub(ob.Min).Add(at), overlay, ob.Min, draw.Over)
	return dst
}

// Encode writes img to w as PNG or JPEG.
func (e *Bild) Encode(w io.Writer, img image.Image, format Format) error {
	var enc imgio.Encoder
	switch {
	case format == PNG:
		enc = imgio.PNGEncoder()
	case format.IsJPEG():
		enc = imgio.JPEGEncoder(e.quality)
	default:
		return fmt.Errorf("%w: bild engine cannot encode %q", ErrUnsupportedFormat, format)
	}
	if err := enc(w, img); err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}

// Write encodes img into a new file at path.
func (e *Bild) Write(img image.Image, path string, format Format) error {
	return writeFile(e, img, path, format)
}

// rebase moves the origin of img to (0,0) without copying pixels. bild keeps
// the source bounds when it clones a sub-image.
func rebase(img *image.RGBA) *image.RGBA {
	if img.Rect.Min == (image.Point{}) {
		return img
	}
	out := *img
	out.Rect = img.Rect.Sub(img.Rect.Min)
	return &out
}
