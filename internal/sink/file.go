package sink

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// TileName returns the path of a tile relative to its pyramid's tile
// directory: <level>/<col>_<row>.<format>.
func TileName(level, row, col int, format raster.Format) string {
	return path.Join(strconv.Itoa(level), fmt.Sprintf("%d_%d.%s", col, row, format))
}

// File writes every tile to <base>/<level>/<col>_<row>.<format>.
//
// Each level directory is created before the first tile of that level is
// written. Directory and write failures are returned to the caller;
// tiles already written are left in place.
type File struct {
	engine   raster.Engine
	base     string
	format   raster.Format
	manifest *Manifest
	prefix   string
	made     map[int]bool
}

// NewFile returns a sink writing under base. When manifest is not nil every
// tile is also recorded in it as <base name>/<level>/<col>_<row>.<format>, so
// a manifest stored next to base verifies the tree.
func NewFile(engine raster.Engine, base string, format raster.Format, manifest *Manifest) *File {
	return &File{
		engine:   engine,
		base:     base,
		format:   format,
		manifest: manifest,
		prefix:   filepath.Base(base),
		made:     make(map[int]bool),
	}
}

// Base returns the tile directory.
func (f *File) Base() string {
	return f.base
}

// Accept writes the tile.
func (f *File) Accept(tile image.Image, level, row, col int) error {
	if !f.made[level] {
		dir := filepath.Join(f.base, strconv.Itoa(level))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create level directory: %w", err)
		}
		f.made[level] = true
	}

	name := TileName(level, row, col, f.format)
	dst := filepath.Join(f.base, filepath.FromSlash(name))
	if f.manifest == nil {
		return f.engine.Write(tile, dst, f.format)
	}

	var buf bytes.Buffer
	if err := f.engine.Encode(&buf, tile, f.format); err != nil {
		return err
	}
	if err := os.WriteFile(dst, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	f.manifest.Add(path.Join(f.prefix, name), buf.Bytes())
	return nil
}
