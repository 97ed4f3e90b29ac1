package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// EnvConfig names the environment variable holding the job file path.
const EnvConfig = "DEEPZOOM_CONFIG"

// ErrNoJobs is returned by Validate for a configuration without jobs.
var ErrNoJobs = errors.New("no jobs configured")

// Params are the pyramid and output settings shared by defaults and jobs.
type Params struct {
	// TileSize is the nominal tile side in pixels.
	TileSize int `yaml:"tilesize"`

	// Overlap is the number of pixels shared between adjacent tiles.
	Overlap int `yaml:"overlap"`

	// Format is the tile encoding and file extension.
	Format string `yaml:"format"`

	// Quality is the JPEG quality, 1-100.
	Quality int `yaml:"quality"`

	// Engine selects the raster engine: imaging or bild.
	Engine string `yaml:"engine"`

	// Filter is the resampling kernel used between levels.
	Filter string `yaml:"filter"`

	// Archive bundles each pyramid into <name>.tar.zst instead of a tree.
	Archive bool `yaml:"archive"`

	// Checksums writes <name>.b3sum next to the descriptor.
	Checksums bool `yaml:"checksums"`

	// Document lays all inputs of a job out as pages of one pyramid.
	Document Document `yaml:"document"`
}

// Document holds document-mode settings.
type Document struct {
	Enabled bool `yaml:"enabled"`

	// Columns of the page grid; 0 picks ceil(sqrt(pages)).
	Columns int `yaml:"columns"`

	// Gap in pixels around every page cell.
	Gap int `yaml:"gap"`

	// Squeeze is how much smaller the background is than the page grid.
	Squeeze float64 `yaml:"squeeze"`

	// Stretch resizes pages to fill their cell.
	Stretch bool `yaml:"stretch"`

	// Background colour as #RRGGBB or "transparent".
	Background string `yaml:"background"`

	// PagesPerPyramid splits long documents; 0 keeps every page together.
	PagesPerPyramid int `yaml:"pages_per_pyramid"`
}

// Overlay places an extra image on top of every input of a job.
type Overlay struct {
	Path    string  `yaml:"path"`
	X       int     `yaml:"x"`
	Y       int     `yaml:"y"`
	Squeeze float64 `yaml:"squeeze"`
}

// Job pairs a set of inputs with where their pyramids go.
type Job struct {
	// Inputs are the source images. Outside document mode each input
	// becomes its own pyramid.
	Inputs []string `yaml:"inputs"`

	// Output is the directory descriptors and tiles are written to.
	Output string `yaml:"output"`

	// Name is the pyramid name. Empty derives it from the input file name.
	Name string `yaml:"name"`

	// Overlays are drawn over each input, in order.
	Overlays []Overlay `yaml:"overlays"`

	Params `yaml:",inline"`
}

// Config is a parsed job file.
type Config struct {
	// Concurrency is how many jobs run at once.
	Concurrency int `yaml:"concurrency"`

	// Defaults seed every job.
	Defaults Params `yaml:"defaults"`

	Jobs []Job `yaml:"jobs"`
}

// DefaultParams returns 256 pixel JPEG tiles with 4 pixels of overlap, cut
// with the imaging engine and a Lanczos filter.
func DefaultParams() Params {
	return Params{
		TileSize: 256,
		Overlap:  4,
		Format:   string(raster.JPG),
		Quality:  90,
		Engine:   string(raster.KindImaging),
		Filter:   string(raster.Lanczos),
		Document: Document{
			Squeeze:    4,
			Background: "#ffffff",
		},
	}
}

// Default returns a configuration with default parameters and no jobs.
func Default() *Config {
	return &Config{
		Concurrency: 1,
		Defaults:    DefaultParams(),
	}
}

// Load reads the job file named by DEEPZOOM_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfig)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of a job file, or use --config", EnvConfig)
	}
	return LoadFile(path)
}

// LoadFile reads and parses the job file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a job file. Every job inherits the keys it leaves unset from
// defaults, which in turn inherit from DefaultParams.
func Parse(data []byte) (*Config, error) {
	// A strict pass rejects unknown keys anywhere in the document.
	var strict Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&strict); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	// The merging pass decodes each job over a copy of the defaults.
	var raw struct {
		Concurrency *int        `yaml:"concurrency"`
		Defaults    yaml.Node   `yaml:"defaults"`
		Jobs        []yaml.Node `yaml:"jobs"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg := Default()
	if raw.Concurrency != nil {
		cfg.Concurrency = *raw.Concurrency
	}
	if !raw.Defaults.IsZero() {
		if err := raw.Defaults.Decode(&cfg.Defaults); err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
	}
	for i := range raw.Jobs {
		job := Job{Params: cfg.Defaults}
		if err := raw.Jobs[i].Decode(&job); err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		job.expand()
		cfg.Jobs = append(cfg.Jobs, job)
	}
	return cfg, nil
}

func (j *Job) expand() {
	for i, in := range j.Inputs {
		j.Inputs[i] = os.ExpandEnv(in)
	}
	j.Output = os.ExpandEnv(j.Output)
	for i := range j.Overlays {
		j.Overlays[i].Path = os.ExpandEnv(j.Overlays[i].Path)
	}
}

// Validate checks every job and reports all problems at once.
func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return ErrNoJobs
	}
	var errs []error
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	for i := range c.Jobs {
		if err := c.Jobs[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("job %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks a single job.
func (j *Job) Validate() error {
	var errs []error
	if len(j.Inputs) == 0 {
		errs = append(errs, errors.New("inputs are required"))
	}
	for _, in := range j.Inputs {
		if strings.TrimSpace(in) == "" {
			errs = append(errs, errors.New("input path must not be empty"))
			break
		}
	}
	if j.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if strings.ContainsAny(j.Name, `/\`) {
		errs = append(errs, fmt.Errorf("name %q must not contain a path separator", j.Name))
	}
	if j.Document.Enabled && len(j.Overlays) > 0 {
		errs = append(errs, errors.New("overlays cannot be combined with document mode"))
	}
	for i, o := range j.Overlays {
		if o.Path == "" {
			errs = append(errs, fmt.Errorf("overlay %d: path is required", i+1))
		}
		if !(o.Squeeze > 0) {
			errs = append(errs, fmt.Errorf("overlay %d: squeeze must be positive, got %v", i+1, o.Squeeze))
		}
	}
	if err := j.Params.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate checks pyramid and output settings.
func (p *Params) Validate() error {
	var errs []error
	if p.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("tilesize must be positive, got %d", p.TileSize))
	}
	if p.Overlap < 0 {
		errs = append(errs, fmt.Errorf("overlap must not be negative, got %d", p.Overlap))
	}
	if p.TileSize > 0 && p.Overlap >= p.TileSize {
		errs = append(errs, fmt.Errorf("overlap %d must be smaller than tilesize %d", p.Overlap, p.TileSize))
	}
	if _, err := raster.ParseFormat(p.Format); err != nil {
		errs = append(errs, err)
	}
	if p.Quality < 1 || p.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality must be between 1 and 100, got %d", p.Quality))
	}
	if _, err := raster.New(p.EngineSettings()); err != nil {
		errs = append(errs, err)
	}
	if p.Document.Enabled && !(p.Document.Squeeze > 0) {
		errs = append(errs, fmt.Errorf("document squeeze must be positive, got %v", p.Document.Squeeze))
	}
	if p.Document.Columns < 0 {
		errs = append(errs, fmt.Errorf("document columns must not be negative, got %d", p.Document.Columns))
	}
	if p.Document.Gap < 0 {
		errs = append(errs, fmt.Errorf("document gap must not be negative, got %d", p.Document.Gap))
	}
	if p.Document.PagesPerPyramid < 0 {
		errs = append(errs, fmt.Errorf("pages_per_pyramid must not be negative, got %d", p.Document.PagesPerPyramid))
	}
	if p.Document.Background != "" {
		if _, err := raster.ParseColor(p.Document.Background); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EngineSettings returns the raster engine settings of p.
func (p *Params) EngineSettings() raster.Settings {
	return raster.Settings{
		Kind:    raster.Kind(strings.ToLower(p.Engine)),
		Filter:  raster.Filter(strings.ToLower(p.Filter)),
		Quality: p.Quality,
	}
}

// ParseOverlay parses a "path:x:y:squeeze" overlay argument. The squeeze
// part may be omitted and defaults to 1. The path is split from the right,
// so it may itself contain colons.
func ParseOverlay(s string) (Overlay, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return Overlay{}, fmt.Errorf("invalid overlay %q: want path:x:y[:squeeze]", s)
	}

	squeeze := 1.0
	nums := parts[len(parts)-2:]
	path := strings.Join(parts[:len(parts)-2], ":")
	if n := len(parts); n >= 4 && isInt(parts[n-3]) && isInt(parts[n-2]) {
		v, err := strconv.ParseFloat(parts[n-1], 64)
		if err != nil {
			return Overlay{}, fmt.Errorf("invalid overlay %q: bad squeeze: %w", s, err)
		}
		squeeze = v
		nums = parts[n-3 : n-1]
		path = strings.Join(parts[:n-3], ":")
	}

	x, err := strconv.Atoi(nums[0])
	if err != nil {
		return Overlay{}, fmt.Errorf("invalid overlay %q: bad x: %w", s, err)
	}
	y, err := strconv.Atoi(nums[1])
	if err != nil {
		return Overlay{}, fmt.Errorf("invalid overlay %q: bad y: %w", s, err)
	}
	if path == "" {
		return Overlay{}, fmt.Errorf("invalid overlay %q: empty path", s)
	}
	return Overlay{Path: path, X: x, Y: y, Squeeze: squeeze}, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
