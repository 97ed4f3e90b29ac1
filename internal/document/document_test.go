package document

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/deepzoom-tiler/internal/pyramid"
	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// createInMemoryImage creates an in-memory test image
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func testEngine() raster.Engine {
	return raster.NewImaging(raster.Lanczos, 0)
}

func TestArrange(t *testing.T) {
	tests := []struct {
		name    string
		sizes   []image.Point
		columns int
		gap     int
		want    Grid
		width   int
		height  int
	}{
		{
			name:   "single page",
			sizes:  []image.Point{{100, 50}},
			want:   Grid{Columns: 1, Rows: 1, CellWidth: 100, CellHeight: 50},
			width:  100,
			height: 50,
		},
		{
			name:   "five pages auto columns",
			sizes:  []image.Point{{10, 20}, {30, 10}, {10, 10}, {10, 10}, {10, 10}},
			want:   Grid{Columns: 3, Rows: 2, CellWidth: 30, CellHeight: 20},
			width:  90,
			height: 40,
		},
		{
			name:    "explicit columns with gap",
			sizes:   []image.Point{{10, 10}, {10, 10}, {10, 10}},
			columns: 1,
			gap:     2,
			want:    Grid{Columns: 1, Rows: 3, CellWidth: 10, CellHeight: 10, Gap: 2},
			width:   14,
			height:  38,
		},
		{
			name:    "more columns than pages",
			sizes:   []image.Point{{10, 10}, {10, 10}},
			columns: 8,
			want:    Grid{Columns: 2, Rows: 1, CellWidth: 10, CellHeight: 10},
			width:   20,
			height:  10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Arrange(tt.sizes, tt.columns, tt.gap)
			if err != nil {
				t.Fatalf("Arrange failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("grid mismatch (-want +got):\n%s", diff)
			}
			if w, h := got.Size(); w != tt.width || h != tt.height {
				t.Errorf("size: got %dx%d, want %dx%d", w, h, tt.width, tt.height)
			}
		})
	}

	if _, err := Arrange(nil, 0, 0); !errors.Is(err, ErrNoPages) {
		t.Errorf("Arrange with no pages: got %v, want ErrNoPages", err)
	}
}

func TestGrid_Cell(t *testing.T) {
	g := Grid{Columns: 2, Rows: 2, CellWidth: 10, CellHeight: 20, Gap: 3}
	tests := []struct {
		index int
		want  image.Rectangle
	}{
		{0, image.Rect(3, 3, 13, 23)},
		{1, image.Rect(16, 3, 26, 23)},
		{2, image.Rect(3, 26, 13, 46)},
		{3, image.Rect(16, 26, 26, 46)},
	}
	for _, tt := range tests {
		if got := g.Cell(tt.index); got != tt.want {
			t.Errorf("Cell(%d): got %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestCentre(t *testing.T) {
	got := Centre(image.Rect(10, 10, 110, 60), 50, 20)
	if want := image.Pt(35, 25); got != want {
		t.Errorf("Centre: got %v, want %v", got, want)
	}
}

func TestGroup(t *testing.T) {
	pages := []int{1, 2, 3, 4, 5}
	tests := []struct {
		per  int
		want [][]int
	}{
		{0, [][]int{{1, 2, 3, 4, 5}}},
		{2, [][]int{{1, 2}, {3, 4}, {5}}},
		{5, [][]int{{1, 2, 3, 4, 5}}},
		{9, [][]int{{1, 2, 3, 4, 5}}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Group(pages, tt.per)); diff != "" {
			t.Errorf("Group(%d) mismatch (-want +got):\n%s", tt.per, diff)
		}
	}
	if Group([]int(nil), 3) != nil {
		t.Error("Group of nothing should be nil")
	}
}

func TestGroupName(t *testing.T) {
	if got := GroupName("book", 1, 1); got != "book" {
		t.Errorf("single group: got %q", got)
	}
	if got := GroupName("book", 2, 3); got != "book-2" {
		t.Errorf("second of three: got %q", got)
	}
}

func TestLayout_Validate(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
	}{
		{"negative columns", Layout{Columns: -1, Squeeze: 1}},
		{"negative gap", Layout{Gap: -1, Squeeze: 1}},
		{"zero squeeze", Layout{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.layout.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
	if err := DefaultLayout().Validate(); err != nil {
		t.Errorf("default layout should be valid: %v", err)
	}
}

type capture struct {
	tiles map[int][]image.Image
}

func (c *capture) Accept(tile image.Image, level, row, col int) error {
	if c.tiles == nil {
		c.tiles = make(map[int][]image.Image)
	}
	c.tiles[level] = append(c.tiles[level], tile)
	return nil
}

func TestBuild(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	pages := []Page{
		{Path: "a", Image: createInMemoryImage(64, 64, red)},
		{Path: "b", Image: createInMemoryImage(32, 32, blue)},
	}
	layout := DefaultLayout()
	opts := pyramid.DefaultOptions()
	opts.Overlap = 0

	c, err := Build(testEngine(), pages, layout, opts)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Two 64x64 cells side by side on a 32x16 background.
	if w, h := c.Dimensions(pyramid.Raw); w != 32 || h != 16 {
		t.Errorf("background: got %dx%d, want 32x16", w, h)
	}
	if w, h := c.Dimensions(pyramid.Total); w != 128 || h != 64 {
		t.Errorf("total: got %dx%d, want 128x64", w, h)
	}
	overlays := c.Overlays()
	if len(overlays) != 2 {
		t.Fatalf("got %d overlays, want 2", len(overlays))
	}
	if got := overlays[1].Position(); got != image.Pt(80, 16) {
		t.Errorf("second page should be centred in its cell, got %v", got)
	}

	var out capture
	if err := c.Iterate(&out); err != nil {
		t.Fatalf("Iterate failed: %v", err)
	}
	top := out.tiles[7]
	if len(top) != 1 {
		t.Fatalf("level 7: got %d tiles, want 1", len(top))
	}
	tile := top[0]
	checks := []struct {
		x, y int
		want color.RGBA
	}{
		{32, 32, red},
		{96, 32, blue},
		{70, 4, color.RGBA{255, 255, 255, 255}},
	}
	for _, ck := range checks {
		r, g, b, _ := tile.At(ck.x, ck.y).RGBA()
		if uint8(r>>8) != ck.want.R || uint8(g>>8) != ck.want.G || uint8(b>>8) != ck.want.B {
			t.Errorf("pixel (%d,%d): got %d,%d,%d, want %v", ck.x, ck.y, r>>8, g>>8, b>>8, ck.want)
		}
	}
}

func TestBuild_Stretch(t *testing.T) {
	pages := []Page{
		{Image: createInMemoryImage(40, 20, color.White)},
		{Image: createInMemoryImage(10, 10, color.Black)},
	}
	layout := DefaultLayout()
	layout.Stretch = true
	layout.Columns = 1

	c, err := Build(testEngine(), pages, layout, pyramid.DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	o := c.Overlays()[1]
	if w, h := o.Size(); w != 40 || h != 20 {
		t.Errorf("stretched page: got %dx%d, want 40x20", w, h)
	}
	if got := o.Position(); got != image.Pt(0, 20) {
		t.Errorf("stretched page position: got %v, want (0,20)", got)
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := Build(testEngine(), nil, DefaultLayout(), pyramid.DefaultOptions()); !errors.Is(err, ErrNoPages) {
		t.Errorf("no pages: got %v, want ErrNoPages", err)
	}
	bad := DefaultLayout()
	bad.Squeeze = 0
	pages := []Page{{Image: createInMemoryImage(4, 4, color.White)}}
	if _, err := Build(testEngine(), pages, bad, pyramid.DefaultOptions()); !errors.Is(err, pyramid.ErrInvalidGeometry) {
		t.Errorf("bad layout: got %v, want ErrInvalidGeometry", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	engine := testEngine()
	var paths []string
	for _, name := range []string{"p1.png", "p2.png"} {
		p := filepath.Join(dir, name)
		if err := engine.Write(createInMemoryImage(8, 6, color.White), p, raster.PNG); err != nil {
			t.Fatalf("failed to write page: %v", err)
		}
		paths = append(paths, p)
	}

	cache := raster.NewCache(engine)
	pages, err := Load(cache, paths)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(pages) != 2 || pages[1].Path != paths[1] {
		t.Fatalf("unexpected pages: %+v", pages)
	}
	if w, h := raster.Dimensions(pages[0].Image); w != 8 || h != 6 {
		t.Errorf("page size: got %dx%d, want 8x6", w, h)
	}
	if cache.Len() != 2 {
		t.Errorf("cache holds %d images, want 2", cache.Len())
	}

	if _, err := Load(cache, []string{filepath.Join(dir, "missing.png")}); err == nil {
		t.Error("expected error for a missing page")
	}
}
