package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Concurrency != 1 {
		t.Errorf("expected concurrency=1, got %d", cfg.Concurrency)
	}
	p := cfg.Defaults
	if p.TileSize != 256 || p.Overlap != 4 || p.Format != "jpg" || p.Quality != 90 {
		t.Errorf("unexpected pyramid defaults: %+v", p)
	}
	if p.Engine != "imaging" || p.Filter != "lanczos" {
		t.Errorf("unexpected engine defaults: %s/%s", p.Engine, p.Filter)
	}
	if p.Document.Squeeze != 4 || p.Document.Background != "#ffffff" {
		t.Errorf("unexpected document defaults: %+v", p.Document)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default params should be valid: %v", err)
	}
}

func TestLoad_RequiresEnv(t *testing.T) {
	t.Setenv(EnvConfig, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DEEPZOOM_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "DEEPZOOM_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.yaml")
	content := `
jobs:
  - inputs: [a.png]
    output: out
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Jobs) != 1 || cfg.Jobs[0].Output != "out" {
		t.Errorf("unexpected jobs: %+v", cfg.Jobs)
	}
}

func TestParse_Inheritance(t *testing.T) {
	t.Setenv("SCANS", "/data/scans")
	data := []byte(`
concurrency: 3
defaults:
  format: png
  overlap: 2
  document:
    gap: 8
jobs:
  - inputs:
      - "${SCANS}/map.tif"
    output: out
    name: map
    overlays:
      - path: stamp.png
        x: 10
        y: 20
        squeeze: 1.5
  - inputs: [p1.png, p2.png]
    output: out/book
    overlap: 0
    tilesize: 510
    checksums: true
    document:
      enabled: true
      columns: 2
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("concurrency: got %d, want 3", cfg.Concurrency)
	}

	first := cfg.Jobs[0]
	if diff := cmp.Diff([]string{"/data/scans/map.tif"}, first.Inputs); diff != "" {
		t.Errorf("inputs mismatch (-want +got):\n%s", diff)
	}
	wantFirst := DefaultParams()
	wantFirst.Format = "png"
	wantFirst.Overlap = 2
	wantFirst.Document.Gap = 8
	if diff := cmp.Diff(wantFirst, first.Params); diff != "" {
		t.Errorf("first job params mismatch (-want +got):\n%s", diff)
	}

	second := cfg.Jobs[1]
	wantSecond := wantFirst
	wantSecond.Overlap = 0
	wantSecond.TileSize = 510
	wantSecond.Checksums = true
	wantSecond.Document.Enabled = true
	wantSecond.Document.Columns = 2
	if diff := cmp.Diff(wantSecond, second.Params); diff != "" {
		t.Errorf("second job params mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Overlay{{Path: "stamp.png", X: 10, Y: 20, Squeeze: 1.5}}, first.Overlays); diff != "" {
		t.Errorf("overlays mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_UnknownField(t *testing.T) {
	data := []byte(`
jobs:
  - inputs: [a.png]
    output: out
    tile_size: 128
`)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrNoJobs) {
		t.Errorf("Validate: got %v, want ErrNoJobs", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Job {
		return Job{Inputs: []string{"a.png"}, Output: "out", Params: DefaultParams()}
	}
	tests := []struct {
		name   string
		mutate func(j *Job)
		want   string
	}{
		{"no inputs", func(j *Job) { j.Inputs = nil }, "inputs are required"},
		{"blank input", func(j *Job) { j.Inputs = []string{" "} }, "input path must not be empty"},
		{"no output", func(j *Job) { j.Output = "" }, "output is required"},
		{"name with separator", func(j *Job) { j.Name = "a/b" }, "path separator"},
		{"zero tilesize", func(j *Job) { j.TileSize = 0 }, "tilesize must be positive"},
		{"negative overlap", func(j *Job) { j.Overlap = -1 }, "overlap must not be negative"},
		{"overlap too big", func(j *Job) { j.TileSize = 4; j.Overlap = 4 }, "must be smaller than tilesize"},
		{"unknown format", func(j *Job) { j.Format = "xcf" }, "unsupported image format"},
		{"bad quality", func(j *Job) { j.Quality = 0 }, "quality must be between"},
		{"unknown engine", func(j *Job) { j.Engine = "magick" }, "unknown raster engine"},
		{"unknown filter", func(j *Job) { j.Filter = "sinc" }, "unknown resampling filter"},
		{"bad document squeeze", func(j *Job) { j.Document.Enabled = true; j.Document.Squeeze = 0 }, "document squeeze"},
		{"bad background", func(j *Job) { j.Document.Background = "#zzzzzz" }, "invalid colour"},
		{"bad overlay", func(j *Job) { j.Overlays = []Overlay{{Path: "o.png"}} }, "overlay 1: squeeze"},
		{"overlay in document", func(j *Job) {
			j.Document.Enabled = true
			j.Overlays = []Overlay{{Path: "o.png", Squeeze: 1}}
		}, "cannot be combined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := valid()
			tt.mutate(&job)
			cfg := &Config{Concurrency: 1, Jobs: []Job{job}}
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}

	cfg := &Config{Concurrency: 0, Jobs: []Job{valid()}}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "concurrency") {
		t.Errorf("expected concurrency error, got %v", err)
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	job := Job{Params: DefaultParams()}
	cfg := &Config{Concurrency: 1, Jobs: []Job{job}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"inputs are required", "output is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestParseOverlay(t *testing.T) {
	tests := []struct {
		input   string
		want    Overlay
		wantErr bool
	}{
		{"logo.png:10:20", Overlay{Path: "logo.png", X: 10, Y: 20, Squeeze: 1}, false},
		{"logo.png:10:20:2.5", Overlay{Path: "logo.png", X: 10, Y: 20, Squeeze: 2.5}, false},
		{`C:\img\logo.png:0:5:4`, Overlay{Path: `C:\img\logo.png`, X: 0, Y: 5, Squeeze: 4}, false},
		{"logo.png:10", Overlay{}, true},
		{"logo.png:a:20", Overlay{}, true},
		{"logo.png:10:20:big", Overlay{}, true},
		{":10:20", Overlay{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOverlay(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOverlay() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("overlay mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
