package raster

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Cache keeps decoded source images so repeated conversions of the same file
// skip the decode.
//
// Images are keyed by the exact path string given to Load. Cutting a pyramid
// never modifies its source raster, so a cached image stays valid after any
// number of conversions. Cached images stay in memory until Evict or Clear.
//
// Cache is safe for concurrent use by multiple goroutines.
type Cache struct {
	engine Engine

	mu     sync.RWMutex
	images map[string]image.Image
}

// NewCache returns an empty cache that decodes through engine.
func NewCache(engine Engine) *Cache {
	return &Cache{
		engine: engine,
		images: make(map[string]image.Image),
	}
}

// Engine returns the engine the cache decodes with.
func (c *Cache) Engine() Engine {
	return c.engine
}

// Load returns the decoded image at path, reading it on first use.
func (c *Cache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := c.engine.Read(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Evict drops the image cached for path, if any.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Clear drops every cached image.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Info describes a source image file.
type Info struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the format tag derived from the file extension, or
	// "unknown" when the extension is not a supported tag.
	Format string `json:"format"`

	// HasAlpha reports whether the decoded image type carries alpha.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Stat loads path through the cache and describes it.
func (c *Cache) Stat(path string) (*Info, error) {
	img, err := c.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := ParseFormat(strings.ToLower(filepath.Ext(path))); err == nil {
		format = f.String()
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Alpha, *image.Alpha16:
		hasAlpha = true
	}

	w, h := Dimensions(img)
	return &Info{
		Width:         w,
		Height:        h,
		Format:        format,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}
