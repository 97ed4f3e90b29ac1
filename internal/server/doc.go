// Package server implements the MCP (Model Context Protocol) server for Deep
// Zoom tiling.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line, and
// supports the initialize, tools/list, tools/call and ping methods.
//
// # Available Tools
//
//   - dzi_dimensions: size, format and maximum pyramid level of an image
//   - dzi_plan: per-level tile grid for an image or a width and height
//   - dzi_descriptor: Deep Zoom XML descriptor for given parameters
//   - dzi_convert: cut images or a page document into pyramids on disk
//
// Tool results are returned as MCP text content holding indented JSON. Tool
// failures are JSON-RPC errors with code -32000 and the Go error string as
// data.
//
// Stdout is the protocol channel, so the server logs only through the
// slog.Logger it is given.
package server
