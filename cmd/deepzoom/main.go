// deepzoom cuts images into Deep Zoom pyramids: a .dzi descriptor plus a
// directory of tiles per image, or one pyramid per page group in document
// mode. Jobs come from the command line or from a YAML job file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/ironsheep/deepzoom-tiler/internal/batch"
	"github.com/ironsheep/deepzoom-tiler/internal/config"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// EnvLogLevel overrides the default log level.
const EnvLogLevel = "DEEPZOOM_LOG_LEVEL"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	path            string
	prefix          string
	format          string
	overlap         int
	tilesize        int
	quality         int
	engine          string
	filter          string
	archive         bool
	checksums       bool
	document        bool
	stretch         bool
	columns         int
	gap             int
	squeeze         float64
	background      string
	pagesPerPyramid int
	overlays        []string
	configPath      string
	jobs            int
	dryRun          bool
	version         bool
	logLevel        string
}

func newFlagSet(o *options) *pflag.FlagSet {
	d := config.DefaultParams()
	logLevel := os.Getenv(EnvLogLevel)
	if logLevel == "" {
		logLevel = "info"
	}

	fs := pflag.NewFlagSet("deepzoom", pflag.ContinueOnError)
	fs.StringVarP(&o.path, "path", "p", ".", "output directory for descriptors and tiles")
	fs.StringVar(&o.prefix, "prefix", "", "pyramid name (default: input file name)")
	fs.StringVarP(&o.format, "format", "f", d.Format, "tile format: jpg, png, gif, bmp or tif")
	fs.IntVar(&o.overlap, "overlap", d.Overlap, "pixels shared between adjacent tiles")
	fs.IntVar(&o.tilesize, "tilesize", d.TileSize, "tile side in pixels")
	fs.IntVar(&o.quality, "quality", d.Quality, "JPEG quality, 1-100")
	fs.StringVar(&o.engine, "engine", d.Engine, "raster engine: imaging or bild")
	fs.StringVar(&o.filter, "filter", d.Filter, "resampling filter: lanczos, catmullrom, linear, box or nearest")
	fs.BoolVar(&o.archive, "archive", false, "write <name>.tar.zst instead of a tile tree")
	fs.BoolVar(&o.checksums, "checksums", false, "write a BLAKE3 <name>.b3sum manifest")
	fs.BoolVarP(&o.document, "document", "d", false, "lay all inputs out as pages of one pyramid")
	fs.BoolVar(&o.stretch, "stretch", false, "stretch document pages to fill their cell")
	fs.IntVar(&o.columns, "columns", 0, "document page columns (default: square grid)")
	fs.IntVar(&o.gap, "gap", d.Document.Gap, "pixels around each document page")
	fs.Float64Var(&o.squeeze, "squeeze", d.Document.Squeeze, "how much smaller the document background is than the pages")
	fs.StringVar(&o.background, "background", d.Document.Background, "document background colour (#RRGGBB or transparent)")
	fs.IntVar(&o.pagesPerPyramid, "pages-per-pyramid", 0, "split documents into pyramids of this many pages")
	fs.StringArrayVar(&o.overlays, "overlay", nil, "path:x:y[:squeeze] drawn over each input (repeatable)")
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML job file (default: $"+config.EnvConfig+" when no inputs are given)")
	fs.IntVarP(&o.jobs, "jobs", "j", 1, "pyramids converted at once")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print the tile grid of each pyramid and write nothing")
	fs.BoolVar(&o.version, "version", false, "print version information")
	fs.StringVar(&o.logLevel, "log-level", logLevel, "debug, info, warn or error")
	fs.BoolP("help", "h", false, "show help")
	return fs
}

func run(args []string, stdout io.Writer) error {
	var o options
	fs := newFlagSet(&o)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(fs)
			return nil
		}
		return err
	}
	if help, _ := fs.GetBool("help"); help {
		printHelp(fs)
		return nil
	}
	if o.version {
		fmt.Fprintf(stdout, "deepzoom %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return nil
	}

	logger, err := newLogger(os.Stderr, o.logLevel)
	if err != nil {
		return err
	}
	cfg, err := buildConfig(fs, &o, fs.Args())
	if err != nil {
		return err
	}

	runner := batch.NewRunner(logger, cfg.Concurrency)
	if o.dryRun {
		plans, err := runner.Plan(cfg.Jobs)
		if err != nil {
			return err
		}
		return printPlans(stdout, plans)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := runner.Run(ctx, cfg.Jobs)
	if err != nil {
		return err
	}
	return printResults(stdout, results)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// buildConfig assembles the jobs to run. Inputs on the command line form a
// single job; otherwise jobs come from the job file and explicitly set flags
// override its parameters.
func buildConfig(fs *pflag.FlagSet, o *options, inputs []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case o.configPath != "" && len(inputs) > 0:
		return nil, fmt.Errorf("unexpected argument %s: inputs come from %s", inputs[0], o.configPath)
	case o.configPath != "":
		loaded, err := config.LoadFile(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case len(inputs) == 0:
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("no input images given: %w", err)
		}
		cfg = loaded
	default:
		cfg = config.Default()
		cfg.Jobs = []config.Job{{
			Inputs: inputs,
			Output: o.path,
			Name:   o.prefix,
			Params: cfg.Defaults,
		}}
	}

	if fs.Changed("jobs") || len(inputs) > 0 {
		cfg.Concurrency = o.jobs
	}
	for i := range cfg.Jobs {
		if err := applyFlags(&cfg.Jobs[i], fs, o); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(job *config.Job, fs *pflag.FlagSet, o *options) error {
	p := &job.Params
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("tilesize", func() { p.TileSize = o.tilesize })
	set("overlap", func() { p.Overlap = o.overlap })
	set("format", func() { p.Format = o.format })
	set("quality", func() { p.Quality = o.quality })
	set("engine", func() { p.Engine = o.engine })
	set("filter", func() { p.Filter = o.filter })
	set("archive", func() { p.Archive = o.archive })
	set("checksums", func() { p.Checksums = o.checksums })
	set("document", func() { p.Document.Enabled = o.document })
	set("stretch", func() { p.Document.Stretch = o.stretch })
	set("columns", func() { p.Document.Columns = o.columns })
	set("gap", func() { p.Document.Gap = o.gap })
	set("squeeze", func() { p.Document.Squeeze = o.squeeze })
	set("background", func() { p.Document.Background = o.background })
	set("pages-per-pyramid", func() { p.Document.PagesPerPyramid = o.pagesPerPyramid })

	for _, s := range o.overlays {
		overlay, err := config.ParseOverlay(s)
		if err != nil {
			return err
		}
		job.Overlays = append(job.Overlays, overlay)
	}
	return nil
}

func printPlans(w io.Writer, plans []batch.TargetPlan) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PYRAMID\tSIZE\tLEVEL\tGRID\tTILES")
	for _, p := range plans {
		fmt.Fprintf(tw, "%s\t%dx%d\t\t\t%d\n", p.Target.Name, p.Width, p.Height, p.Tiles)
		for _, l := range p.Levels {
			fmt.Fprintf(tw, "\t%dx%d\t%d\t%dx%d\t%d\n", l.Width, l.Height, l.Level, l.Columns, l.Rows, l.Tiles)
		}
	}
	return tw.Flush()
}

func printResults(w io.Writer, results []*batch.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PYRAMID\tSIZE\tTILES\tOUTPUT\tELAPSED")
	for _, r := range results {
		output := r.Descriptor
		if r.Archive != "" {
			output = r.Archive
		}
		fmt.Fprintf(tw, "%s\t%dx%d\t%d\t%s\t%s\n", r.Name, r.Width, r.Height, r.Tiles, output, r.Elapsed.Round(time.Millisecond))
	}
	return tw.Flush()
}

func printHelp(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `deepzoom - cut images into Deep Zoom pyramids

Usage:
  deepzoom [flags] IMAGE...
  deepzoom --config jobs.yaml [flags]

Each image becomes <path>/<name>.dzi plus <path>/<name>_files/. With
--document all images are laid out as pages of one pyramid.

Flags:
%s
Environment variables:
  %s    job file used when no images are given
  %s  default for --log-level
`, fs.FlagUsages(), config.EnvConfig, EnvLogLevel)
}
