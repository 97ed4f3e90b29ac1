package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/deepzoom-tiler/internal/config"
	"github.com/ironsheep/deepzoom-tiler/internal/document"
	"github.com/ironsheep/deepzoom-tiler/internal/pyramid"
	"github.com/ironsheep/deepzoom-tiler/internal/raster"
	"github.com/ironsheep/deepzoom-tiler/internal/sink"
)

// Result describes a finished pyramid.
type Result struct {
	Name       string            `json:"name"`
	Descriptor string            `json:"descriptor,omitempty"`
	Archive    string            `json:"archive,omitempty"`
	Checksums  string            `json:"checksums,omitempty"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Tiles      int               `json:"tiles"`
	Levels     []sink.LevelCount `json:"levels"`
	Elapsed    time.Duration     `json:"elapsed_ns"`
}

// Runner converts targets.
type Runner struct {
	logger      *slog.Logger
	concurrency int

	mu     sync.Mutex
	caches map[raster.Settings]*raster.Cache
}

// NewRunner returns a runner converting up to concurrency targets at once.
// A nil logger discards output.
func NewRunner(logger *slog.Logger, concurrency int) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		logger:      logger,
		concurrency: max(concurrency, 1),
		caches:      make(map[raster.Settings]*raster.Cache),
	}
}

// Run converts every target of every job. Results are in target order; on
// error the results of targets that did not finish are nil.
func (r *Runner) Run(ctx context.Context, jobs []config.Job) ([]*Result, error) {
	var targets []Target
	for _, job := range jobs {
		targets = append(targets, Targets(job)...)
	}
	r.logger.Info("starting batch", "jobs", len(jobs), "targets", len(targets), "concurrency", r.concurrency)

	results := make([]*Result, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Convert(t)
			if err != nil {
				return fmt.Errorf("failed to convert %s: %w", t.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	return results, g.Wait()
}

// Convert cuts one target and writes its output. Cutting is not interruptible.
func (r *Runner) Convert(t Target) (*Result, error) {
	start := time.Now()
	params := t.Job.Params
	format, err := raster.ParseFormat(params.Format)
	if err != nil {
		return nil, err
	}
	cache, err := r.cache(params.EngineSettings())
	if err != nil {
		return nil, err
	}

	defer func() {
		for _, in := range t.Inputs {
			cache.Evict(in)
		}
	}()

	canvas, err := r.canvas(cache, t, format)
	if err != nil {
		return nil, err
	}
	width, height := canvas.Dimensions(pyramid.Total)
	descriptor := canvas.Descriptor()

	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var manifest *sink.Manifest
	if params.Checksums {
		manifest = sink.NewManifest()
	}

	res := &Result{Name: t.Name, Width: width, Height: height}
	var counter sink.Counter
	trace := sink.Discard{Logger: r.logger.With("target", t.Name)}

	if params.Archive {
		res.Archive = t.ArchivePath()
		if err := r.writeArchive(cache.Engine(), canvas, t, format, descriptor, manifest, sink.Tee(&counter, trace)); err != nil {
			return nil, err
		}
	} else {
		res.Descriptor = t.DescriptorPath()
		if err := os.WriteFile(res.Descriptor, []byte(descriptor), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write descriptor: %w", err)
		}
		if manifest != nil {
			manifest.Add(t.Name+".dzi", []byte(descriptor))
		}
		files := sink.NewFile(cache.Engine(), t.TilesDir(), format, manifest)
		if err := canvas.Iterate(sink.Tee(files, &counter, trace)); err != nil {
			return nil, err
		}
	}

	if manifest != nil {
		res.Checksums = t.ChecksumPath()
		if err := writeManifest(res.Checksums, manifest); err != nil {
			return nil, err
		}
	}

	res.Tiles = counter.Tiles()
	res.Levels = counter.Levels()
	res.Elapsed = time.Since(start)
	r.logger.Info("pyramid written",
		"name", t.Name, "width", width, "height", height,
		"tiles", res.Tiles, "elapsed", res.Elapsed)
	return res, nil
}

func (r *Runner) writeArchive(engine raster.Engine, canvas *pyramid.Canvas, t Target, format raster.Format,
	descriptor string, manifest *sink.Manifest, extra pyramid.Sink) (err error) {
	f, err := os.Create(t.ArchivePath())
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close archive: %w", cerr)
		}
	}()

	a, err := sink.NewArchive(f, engine, t.Name, format, manifest)
	if err != nil {
		return err
	}
	if err := a.AddFile(t.Name+".dzi", []byte(descriptor)); err != nil {
		return errors.Join(err, a.Close())
	}
	if err := canvas.Iterate(sink.Tee(a, extra)); err != nil {
		return errors.Join(err, a.Close())
	}
	return a.Close()
}

func writeManifest(path string, m *sink.Manifest) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checksum file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close checksum file: %w", cerr)
		}
	}()
	_, err = m.WriteTo(f)
	return err
}

// canvas decodes the target's inputs and lays them out.
func (r *Runner) canvas(cache *raster.Cache, t Target, format raster.Format) (*pyramid.Canvas, error) {
	params := t.Job.Params
	opts := pyramid.Options{
		TileSize: params.TileSize,
		Overlap:  params.Overlap,
		Format:   format,
		Logger:   r.logger.With("target", t.Name),
	}
	engine := cache.Engine()

	if params.Document.Enabled {
		pages, err := document.Load(cache, t.Inputs)
		if err != nil {
			return nil, err
		}
		layout, err := Layout(params.Document)
		if err != nil {
			return nil, err
		}
		return document.Build(engine, pages, layout, opts)
	}

	if len(t.Inputs) != 1 {
		return nil, fmt.Errorf("target %s has %d inputs, want 1", t.Name, len(t.Inputs))
	}
	img, err := cache.Load(t.Inputs[0])
	if err != nil {
		return nil, err
	}
	overlays := make([]*pyramid.Overlay, 0, len(t.Job.Overlays))
	for _, ov := range t.Job.Overlays {
		oimg, err := cache.Load(ov.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load overlay: %w", err)
		}
		o, err := pyramid.NewOverlay(engine, oimg, ov.X, ov.Y, ov.Squeeze)
		if err != nil {
			return nil, err
		}
		overlays = append(overlays, o)
	}
	return pyramid.NewCanvas(engine, img, opts, overlays...)
}

// Layout converts document settings to a page layout.
func Layout(d config.Document) (document.Layout, error) {
	layout := document.DefaultLayout()
	layout.Columns = d.Columns
	layout.Gap = d.Gap
	layout.Stretch = d.Stretch
	if d.Squeeze != 0 {
		layout.Squeeze = d.Squeeze
	}
	if d.Background != "" {
		c, err := raster.ParseColor(d.Background)
		if err != nil {
			return document.Layout{}, err
		}
		layout.Background = c
	}
	return layout, nil
}

// cache returns the decode cache shared by every target using the same
// engine settings.
func (r *Runner) cache(s raster.Settings) (*raster.Cache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.caches[s]; ok {
		return c, nil
	}
	engine, err := raster.New(s)
	if err != nil {
		return nil, err
	}
	c := raster.NewCache(engine)
	r.caches[s] = c
	return c, nil
}
