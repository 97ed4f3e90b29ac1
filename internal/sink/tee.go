package sink

import (
	"image"

	"github.com/ironsheep/deepzoom-tiler/internal/pyramid"
)

type tee []pyramid.Sink

// Tee returns a sink that hands every tile to each of sinks in order,
// stopping at the first error.
func Tee(sinks ...pyramid.Sink) pyramid.Sink {
	return tee(sinks)
}

func (t tee) Accept(tile image.Image, level, row, col int) error {
	for _, s := range t {
		if err := s.Accept(tile, level, row, col); err != nil {
			return err
		}
	}
	return nil
}
