package sink

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"path"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// ErrArchiveClosed is returned when writing to a closed Archive.
var ErrArchiveClosed = errors.New("archive already closed")

// Archive streams a pyramid into a tar file compressed with zstd.
//
// Tiles are stored as <name>_files/<level>/<col>_<row>.<format>, the same
// layout File produces next to a <name>.dzi descriptor, so extracting the
// archive yields a servable tree. Close must be called to flush the stream;
// it does not close the underlying writer.
type Archive struct {
	engine   raster.Engine
	format   raster.Format
	prefix   string
	manifest *Manifest
	modTime  time.Time

	zw     *zstd.Encoder
	tw     *tar.Writer
	closed bool
}

// NewArchive starts an archive for the pyramid called name on w. A non-nil
// manifest records every entry written.
func NewArchive(w io.Writer, engine raster.Engine, name string, format raster.Format, manifest *Manifest) (*Archive, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return &Archive{
		engine:   engine,
		format:   format,
		prefix:   name + "_files",
		manifest: manifest,
		modTime:  time.Now().Truncate(time.Second),
		zw:       zw,
		tw:       tar.NewWriter(zw),
	}, nil
}

// Accept encodes the tile and appends it to the archive.
func (a *Archive) Accept(tile image.Image, level, row, col int) error {
	var buf bytes.Buffer
	if err := a.engine.Encode(&buf, tile, a.format); err != nil {
		return err
	}
	return a.AddFile(path.Join(a.prefix, TileName(level, row, col, a.format)), buf.Bytes())
}

// AddFile appends a regular file entry, such as the descriptor.
func (a *Archive) AddFile(name string, data []byte) error {
	if a.closed {
		return ErrArchiveClosed
	}
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(data)),
		ModTime:  a.modTime,
	}
	if err := a.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write archive header for %s: %w", name, err)
	}
	if _, err := a.tw.Write(data); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", name, err)
	}
	if a.manifest != nil {
		a.manifest.Add(name, data)
	}
	return nil
}

// Close finishes the tar stream and flushes the compressor.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if err := a.tw.Close(); err != nil {
		a.zw.Close()
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := a.zw.Close(); err != nil {
		return fmt.Errorf("failed to flush archive: %w", err)
	}
	return nil
}

// ReadArchive lists the entries of an archive written by Archive and returns
// their contents keyed by name.
func ReadArchive(r io.Reader) (map[string][]byte, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open zstd stream: %w", err)
	}
	defer zr.Close()

	entries := make(map[string][]byte)
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read archive: %w", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %s: %w", hdr.Name, err)
		}
		entries[hdr.Name] = data
	}
}
