package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pyramidProperties() map[string]interface{} {
	return map[string]interface{}{
		"tilesize": map[string]interface{}{
			"type":        "integer",
			"description": "Tile size in pixels, excluding overlap. Default 256",
			"default":     256,
		},
		"overlap": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels shared between adjacent tiles. Default 4",
			"default":     4,
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "dzi_dimensions",
			Description: "Get the width, height, format and maximum Deep Zoom level of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "dzi_plan",
			Description: "List the tile grid of every pyramid level, finest first. Give either an image path or a width and height.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(pyramidProperties(), map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Image width in pixels, used when no path is given",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Image height in pixels, used when no path is given",
					},
				}),
			},
		},
		{
			Name:        "dzi_descriptor",
			Description: "Render the Deep Zoom XML descriptor for an image of the given size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(pyramidProperties(), map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Total image width in pixels",
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Total image height in pixels",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Tile format tag. Default jpg",
						"default":     "jpg",
					},
				}),
				"required": []string{"width", "height"},
			},
		},
		{
			Name:        "dzi_convert",
			Description: "Cut images into Deep Zoom pyramids. Each input becomes <output>/<name>.dzi plus <name>_files/, or with document=true all inputs are laid out as pages of one pyramid.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(pyramidProperties(), map[string]interface{}{
					"inputs": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths of the source images",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Output directory",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Pyramid name. Default: the input file name",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff"},
						"description": "Tile format. Default jpg",
					},
					"quality": map[string]interface{}{
						"type":        "integer",
						"description": "JPEG quality 1-100. Default 90",
					},
					"archive": map[string]interface{}{
						"type":        "boolean",
						"description": "Write <name>.tar.zst instead of a tile tree",
					},
					"checksums": map[string]interface{}{
						"type":        "boolean",
						"description": "Write <name>.b3sum with BLAKE3 digests",
					},
					"document": map[string]interface{}{
						"type":        "boolean",
						"description": "Lay all inputs out as pages of one pyramid",
					},
					"columns": map[string]interface{}{
						"type":        "integer",
						"description": "Document grid columns. Default ceil(sqrt(pages))",
					},
					"stretch": map[string]interface{}{
						"type":        "boolean",
						"description": "Resize document pages to fill their cell",
					},
				}),
				"required": []string{"inputs", "output"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
