package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/deepzoom-tiler/internal/config"
	"github.com/ironsheep/deepzoom-tiler/internal/geometry"
	"github.com/ironsheep/deepzoom-tiler/internal/pyramid"
	"github.com/ironsheep/deepzoom-tiler/internal/raster"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "dzi_plan").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "dzi_dimensions":
		return s.handleDimensions(args)
	case "dzi_plan":
		return s.handlePlan(args)
	case "dzi_descriptor":
		return s.handleDescriptor(args)
	case "dzi_convert":
		return s.handleConvert(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string. It returns
// an empty string on marshal failure.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// pyramidArgs are the tiling parameters shared by several tools. Pointers
// tell an explicit zero overlap apart from an omitted one.
type pyramidArgs struct {
	TileSize *int `json:"tilesize"`
	Overlap  *int `json:"overlap"`
}

func (a pyramidArgs) tiling() geometry.Tiling {
	t := geometry.Tiling{TileSize: pyramid.DefaultTileSize, Overlap: pyramid.DefaultOverlap}
	if a.TileSize != nil {
		t.TileSize = *a.TileSize
	}
	if a.Overlap != nil {
		t.Overlap = *a.Overlap
	}
	return t
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Image Information ===

type dimensionsArgs struct {
	Path string `json:"path"`
}

type dimensionsResult struct {
	*raster.Info
	MaxLevel int `json:"max_level"`
}

func (s *Server) handleDimensions(args json.RawMessage) (interface{}, error) {
	var a dimensionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	info, err := s.cache.Stat(a.Path)
	if err != nil {
		return nil, err
	}
	return dimensionsResult{Info: info, MaxLevel: geometry.MaxLevel(info.Width, info.Height)}, nil
}

// === Planning ===

type planArgs struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	pyramidArgs
}

type planResult struct {
	Width  int                 `json:"width"`
	Height int                 `json:"height"`
	Tiles  int                 `json:"tiles"`
	Levels []pyramid.LevelPlan `json:"levels"`
}

func (s *Server) handlePlan(args json.RawMessage) (interface{}, error) {
	var a planArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path != "" {
		img, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		a.Width, a.Height = raster.Dimensions(img)
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, errors.New("a path or a positive width and height is required")
	}

	t := a.tiling()
	levels, err := pyramid.Plan(a.Width, a.Height, t.TileSize, t.Overlap)
	if err != nil {
		return nil, err
	}
	return planResult{
		Width:  a.Width,
		Height: a.Height,
		Tiles:  pyramid.TotalTiles(levels),
		Levels: levels,
	}, nil
}

type descriptorArgs struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	pyramidArgs
}

func (s *Server) handleDescriptor(args json.RawMessage) (interface{}, error) {
	var a descriptorArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	format := pyramid.DefaultFormat
	if a.Format != "" {
		f, err := raster.ParseFormat(a.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}
	t := a.tiling()
	return map[string]interface{}{
		"descriptor": pyramid.Descriptor(t.TileSize, t.Overlap, format.String(), a.Width, a.Height),
	}, nil
}

// === Conversion ===

type convertArgs struct {
	Inputs    []string `json:"inputs"`
	Output    string   `json:"output"`
	Name      string   `json:"name"`
	Format    string   `json:"format"`
	Quality   int      `json:"quality"`
	Archive   bool     `json:"archive"`
	Checksums bool     `json:"checksums"`
	Document  bool     `json:"document"`
	Columns   int      `json:"columns"`
	Stretch   bool     `json:"stretch"`
	pyramidArgs
}

func (a convertArgs) job() config.Job {
	job := config.Job{
		Inputs: a.Inputs,
		Output: a.Output,
		Name:   a.Name,
		Params: config.DefaultParams(),
	}
	t := a.tiling()
	job.TileSize, job.Overlap = t.TileSize, t.Overlap
	if a.Format != "" {
		job.Format = a.Format
	}
	if a.Quality != 0 {
		job.Quality = a.Quality
	}
	job.Archive = a.Archive
	job.Checksums = a.Checksums
	job.Document.Enabled = a.Document
	job.Document.Columns = a.Columns
	job.Document.Stretch = a.Stretch
	return job
}

func (s *Server) handleConvert(args json.RawMessage) (interface{}, error) {
	var a convertArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	job := a.job()
	if err := job.Validate(); err != nil {
		return nil, err
	}
	results, err := s.runner.Run(context.Background(), []config.Job{job})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"pyramids": results}, nil
}
