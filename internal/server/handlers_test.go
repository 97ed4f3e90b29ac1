package server

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/deepzoom-tiler/internal/pyramid"
	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "source.png")
	if err := raster.NewImaging(raster.Lanczos, 0).Write(img, path, raster.PNG); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()

	params, _ := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
	return resp
}

func TestHandleToolsCall_Dimensions(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 300, 200, color.RGBA{0, 255, 0, 255})

	var got struct {
		Width    int    `json:"width"`
		Height   int    `json:"height"`
		Format   string `json:"format"`
		MaxLevel int    `json:"max_level"`
	}
	resp := callTool(t, s, "dzi_dimensions", map[string]interface{}{"path": path}, &got)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Width != 300 || got.Height != 200 || got.Format != "png" || got.MaxLevel != 9 {
		t.Errorf("unexpected dimensions: %+v", got)
	}
}

func TestHandleToolsCall_DimensionsErrors(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing path", map[string]interface{}{}},
		{"nonexistent file", map[string]interface{}{"path": "/nonexistent/image.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "dzi_dimensions", tt.args, nil)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error.Code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_Plan(t *testing.T) {
	s := newTestServer()

	var bySize planResult
	resp := callTool(t, s, "dzi_plan", map[string]interface{}{"width": 512, "height": 512, "overlap": 0}, &bySize)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if len(bySize.Levels) != 10 {
		t.Fatalf("got %d levels, want 10", len(bySize.Levels))
	}
	if l := bySize.Levels[0]; l.Level != 9 || l.Columns != 2 || l.Rows != 2 {
		t.Errorf("finest level: %+v, want level 9 with a 2x2 grid", l)
	}
	if bySize.Tiles != 13 {
		t.Errorf("Tiles: got %d, want 13", bySize.Tiles)
	}

	var byPath planResult
	path := createTestImageFile(t, 300, 200, color.White)
	resp = callTool(t, s, "dzi_plan", map[string]interface{}{"path": path}, &byPath)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if byPath.Width != 300 || byPath.Tiles != 11 {
		t.Errorf("unexpected plan for file: width %d tiles %d", byPath.Width, byPath.Tiles)
	}
}

func TestHandleToolsCall_PlanErrors(t *testing.T) {
	s := newTestServer()
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"nothing to plan", map[string]interface{}{}},
		{"overlap too big", map[string]interface{}{"width": 10, "height": 10, "tilesize": 4, "overlap": 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := callTool(t, s, "dzi_plan", tt.args, nil); resp.Error == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHandleToolsCall_Descriptor(t *testing.T) {
	s := newTestServer()
	var got struct {
		Descriptor string `json:"descriptor"`
	}
	resp := callTool(t, s, "dzi_descriptor", map[string]interface{}{"width": 300, "height": 200, "format": "PNG"}, &got)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if got.Descriptor != pyramid.Descriptor(256, 4, "png", 300, 200) {
		t.Errorf("unexpected descriptor:\n%s", got.Descriptor)
	}

	if resp := callTool(t, s, "dzi_descriptor", map[string]interface{}{"width": 1, "height": 1, "format": "xcf"}, nil); resp.Error == nil {
		t.Error("expected error for unknown format")
	}
}

func TestHandleToolsCall_Convert(t *testing.T) {
	s := newTestServer()
	path := createTestImageFile(t, 20, 10, color.RGBA{0, 0, 255, 255})
	out := t.TempDir()

	var got struct {
		Pyramids []struct {
			Name       string `json:"name"`
			Descriptor string `json:"descriptor"`
			Tiles      int    `json:"tiles"`
		} `json:"pyramids"`
	}
	args := map[string]interface{}{
		"inputs": []string{path},
		"output": out,
		"name":   "blue",
		"format": "png",
	}
	resp := callTool(t, s, "dzi_convert", args, &got)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if len(got.Pyramids) != 1 || got.Pyramids[0].Name != "blue" || got.Pyramids[0].Tiles != 6 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if _, err := os.Stat(filepath.Join(out, "blue_files", "5", "0_0.png")); err != nil {
		t.Errorf("full resolution tile missing: %v", err)
	}
}

func TestHandleToolsCall_ConvertInvalid(t *testing.T) {
	s := newTestServer()
	resp := callTool(t, s, "dzi_convert", map[string]interface{}{"inputs": []string{}}, nil)
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	data, _ := resp.Error.Data.(string)
	if !strings.Contains(data, "inputs are required") || !strings.Contains(data, "output is required") {
		t.Errorf("error should list every problem, got %q", data)
	}
}

func TestHandleToolsCall_UnknownTool(t *testing.T) {
	s := newTestServer()
	resp := callTool(t, s, "image_ocr_full", map[string]interface{}{}, nil)
	if resp.Error == nil || resp.Error.Code != -32000 {
		t.Fatalf("expected tool error, got %+v", resp)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer()
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`"nope"`)})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Fatalf("expected invalid params error, got %+v", resp)
	}
}

func TestMustMarshalJSON(t *testing.T) {
	if got := mustMarshalJSON(map[string]int{"tiles": 6}); got != "{\n  \"tiles\": 6\n}" {
		t.Errorf("unexpected JSON: %q", got)
	}
	if got := mustMarshalJSON(make(chan int)); got != "" {
		t.Errorf("unmarshalable value: got %q, want empty string", got)
	}
}
