package raster

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Imaging is an Engine backed by github.com/disintegration/imaging.
//
// It encodes every Format tag. JPEG output uses the configured quality.
type Imaging struct {
	filter  imaging.ResampleFilter
	quality int
}

// NewImaging returns an Imaging engine resampling with filter. A quality of 0
// keeps the library default for JPEG output.
func NewImaging(filter Filter, quality int) *Imaging {
	return &Imaging{
		filter:  imagingFilter(filter),
		quality: quality,
	}
}

func imagingFilter(f Filter) imaging.ResampleFilter {
	switch f {
	case CatmullRom:
		return imaging.CatmullRom
	case Linear:
		return imaging.Linear
	case Box:
		return imaging.Box
	case Nearest:
		return imaging.NearestNeighbor
	default:
		return imaging.Lanczos
	}
}

// Read decodes the file at path, applying any EXIF orientation so that tiles
// come out the way viewers display the source.
func (e *Imaging) Read(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Clone returns an NRGBA copy of img.
func (e *Imaging) Clone(img image.Image) image.Image {
	return imaging.Clone(img)
}

// Crop cuts r out of img.
func (e *Imaging) Crop(img image.Image, r image.Rectangle) image.Image {
	return imaging.Crop(img, r)
}

// Resize scales img to width x height. Unlike imaging.Resize, a zero target
// dimension does not preserve the aspect ratio; it produces an empty raster.
func (e *Imaging) Resize(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return empty(width, height)
	}
	w, h := Dimensions(img)
	if w == 0 || h == 0 {
		return empty(width, height)
	}
	return imaging.Resize(img, width, height, e.filter)
}

// Composite blends overlay onto base at the given point.
func (e *Imaging) Composite(base, overlay image.Image, at image.Point) image.Image {
	return imaging.Overlay(base, overlay, at, 1.0)
}

// Encode writes img to w.
func (e *Imaging) Encode(w io.Writer, img image.Image, format Format) error {
	f, err := imagingFormat(format)
	if err != nil {
		return err
	}

	var opts []imaging.EncodeOption
	if f == imaging.JPEG && e.quality > 0 {
		opts = append(opts, imaging.JPEGQuality(e.quality))
	}
	if err := imaging.Encode(w, img, f, opts...); err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}

// Write encodes img into a new file at path, replacing any existing file.
func (e *Imaging) Write(img image.Image, path string, format Format) error {
	return writeFile(e, img, path, format)
}

func imagingFormat(format Format) (imaging.Format, error) {
	switch format {
	case JPG, JPEG:
		return imaging.JPEG, nil
	case PNG:
		return imaging.PNG, nil
	case GIF:
		return imaging.GIF, nil
	case BMP:
		return imaging.BMP, nil
	case TIF, TIFF:
		return imaging.TIFF, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// writeFile creates path and streams the encoding of img into it. The file is
// closed before returning so that close errors (a full disk, say) surface.
func writeFile(e Engine, img image.Image, path string, format Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := e.Encode(f, img, format); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
