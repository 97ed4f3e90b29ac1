package pyramid

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDescriptor(t *testing.T) {
	want := `<?xml version='1.0' encoding='UTF-8'?>
<Image TileSize='256'
       Overlap='4'
       Format='jpg'
       xmlns='http://schemas.microsoft.com/deepzoom/2008'>
    <Size Width='300' Height='200'/>
</Image>
`
	got := Descriptor(256, 4, "jpg", 300, 200)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestDescriptor_Verbatim(t *testing.T) {
	// Values are not validated.
	got := Descriptor(-1, 0, "", 0, 0)
	if !strings.Contains(got, "TileSize='-1'") || !strings.Contains(got, "Format=''") {
		t.Errorf("Descriptor should write values verbatim, got:\n%s", got)
	}
}

func TestParseDescriptor(t *testing.T) {
	m, err := ParseDescriptor(Descriptor(510, 1, "png", 1024, 768))
	if err != nil {
		t.Fatalf("ParseDescriptor failed: %v", err)
	}
	want := &Manifest{TileSize: 510, Overlap: 1, Format: "png", Width: 1024, Height: 768}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
	if m.String() != Descriptor(510, 1, "png", 1024, 768) {
		t.Error("Manifest.String should render the same descriptor")
	}
}

func TestParseDescriptor_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not xml", "tiles"},
		{"wrong namespace", `<Image TileSize='256' Overlap='0' Format='jpg' xmlns='urn:other'><Size Width='1' Height='1'/></Image>`},
		{"no namespace", `<Image TileSize='256' Overlap='0' Format='jpg'><Size Width='1' Height='1'/></Image>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDescriptor(tt.input); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCanvas_Descriptor(t *testing.T) {
	overlay := newOverlay(t, createInMemoryImage(10, 10, red), 0, 0, 2)
	opts := DefaultOptions()
	opts.Format = "png"
	c := newCanvas(t, createInMemoryImage(64, 32, white), opts, overlay)

	m, err := ParseDescriptor(c.Descriptor())
	if err != nil {
		t.Fatalf("ParseDescriptor failed: %v", err)
	}
	want := &Manifest{TileSize: 256, Overlap: 4, Format: "png", Width: 128, Height: 64}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("canvas manifest mismatch (-want +got):\n%s", diff)
	}
}
