// Package server implements the MCP (Model Context Protocol) server for the
// contiguous line filter.
//
// This package provides a JSON-RPC 2.0 server that exposes binarization and
// line filtering through the MCP protocol, so an MCP client can clean edge
// maps and scanned line art and inspect what the filter removed.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata, including whether it is binary
//   - image_dimensions: Get width and height
//
// Binarization:
//   - image_edge_detect: Canny edge map
//   - image_threshold: Global luminance threshold
//
// Line Filter:
//   - image_line_filter: Binarize and filter, returning the cleaned image and pass counts
//   - image_line_filter_overlay: Kept/removed pixels painted in two colours
//   - line_filter_kernel: Kernel, checksum, perimeter weights and product table
//
// # Caching
//
// Decoded images are cached by path for the lifetime of the server process.
// Filters are built once per distinct (kernel_size, kernel_runs, kernel_span)
// configuration and shared by all later calls.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal().Err(err).Msg("server error")
//	}
package server
