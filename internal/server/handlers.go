package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/line-filter-mcp/internal/imaging"
	"github.com/ironsheep/line-filter-mcp/internal/linefilter"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_line_filter").
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
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Err(err).Str("component", "server").Str("tool", params.Name).Msg("tool execution failed")
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/linefilter function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Binarization
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)
	case "image_threshold":
		return s.handleImageThreshold(args)

	// Line Filter
	case "image_line_filter":
		return s.handleImageLineFilter(ctx, args)
	case "image_line_filter_overlay":
		return s.handleImageLineFilterOverlay(ctx, args)
	case "line_filter_kernel":
		return s.handleLineFilterKernel(args)

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

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Binarization Handlers ===

// binaryImageResult is an encoded binary plane with its foreground count.
type binaryImageResult struct {
	*imaging.EncodedImage
	Foreground int `json:"foreground"`
}

func newBinaryImageResult(img *image.Gray) (*binaryImageResult, error) {
	enc, err := imaging.Encode(img)
	if err != nil {
		return nil, err
	}
	return &binaryImageResult{
		EncodedImage: enc,
		Foreground:   imaging.ToGrid(img).Count(),
	}, nil
}

type imageEdgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ThresholdLow == 0 {
		a.ThresholdLow = 50
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = 150
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return newBinaryImageResult(imaging.EdgeDetect(img, a.ThresholdLow, a.ThresholdHigh))
}

type imageThresholdArgs struct {
	Path   string `json:"path"`
	Level  int    `json:"level"`
	Invert bool   `json:"invert"`
}

func (s *Server) handleImageThreshold(args json.RawMessage) (interface{}, error) {
	var a imageThresholdArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Level == 0 {
		a.Level = 128
	}
	if a.Level < 1 || a.Level > 255 {
		return nil, fmt.Errorf("level must be between 1 and 255, got %d", a.Level)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return newBinaryImageResult(imaging.Threshold(img, uint8(a.Level), a.Invert))
}

// === Line Filter Handlers ===

type lineFilterArgs struct {
	Path          string `json:"path"`
	KernelSize    int    `json:"kernel_size"`
	KernelRuns    int    `json:"kernel_runs"`
	KernelSpan    int    `json:"kernel_span"`
	Binarize      string `json:"binarize"`
	Level         int    `json:"level"`
	Invert        bool   `json:"invert"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
	Region        string `json:"region"`
	OutputPath    string `json:"output_path"`
	KeptColor     string `json:"kept_color"`
	RemovedColor  string `json:"removed_color"`
}

// config returns the filter configuration with defaults for unset fields.
func (a *lineFilterArgs) config() linefilter.Config {
	cfg := linefilter.DefaultConfig()
	if a.KernelSize != 0 {
		cfg.KernelSize = a.KernelSize
	}
	if a.KernelRuns != 0 {
		cfg.KernelRuns = a.KernelRuns
	}
	if a.KernelSpan != 0 {
		cfg.KernelSpan = a.KernelSpan
	}
	return cfg
}

// binarizeOptions returns the binarization options with defaults for unset fields.
func (a *lineFilterArgs) binarizeOptions() (imaging.BinarizeOptions, error) {
	opts := imaging.DefaultBinarizeOptions()
	method, err := imaging.ParseBinarizeMethod(a.Binarize)
	if err != nil {
		return opts, err
	}
	opts.Method = method
	opts.Invert = a.Invert
	if a.Level != 0 {
		if a.Level < 1 || a.Level > 255 {
			return opts, fmt.Errorf("level must be between 1 and 255, got %d", a.Level)
		}
		opts.Level = uint8(a.Level)
	}
	if a.ThresholdLow != 0 {
		opts.Low = a.ThresholdLow
	}
	if a.ThresholdHigh != 0 {
		opts.High = a.ThresholdHigh
	}
	return opts, nil
}

// lineFilterResult is the output of image_line_filter.
type lineFilterResult struct {
	*imaging.EncodedImage
	Config     linefilter.Config `json:"config"`
	Region     string            `json:"region"`
	Stats      *linefilter.Stats `json:"stats"`
	OutputPath string            `json:"output_path,omitempty"`
}

// lineFilterOverlayResult is the output of image_line_filter_overlay.
type lineFilterOverlayResult struct {
	lineFilterResult
	Kept    int `json:"kept"`
	Removed int `json:"removed"`
}

// runLineFilter loads, crops, binarizes and filters the image named in a.
func (s *Server) runLineFilter(ctx context.Context, a *lineFilterArgs) (*imaging.FilterResult, linefilter.Config, error) {
	cfg := a.config()
	opts, err := a.binarizeOptions()
	if err != nil {
		return nil, cfg, err
	}
	f, err := s.filterFor(cfg)
	if err != nil {
		return nil, cfg, err
	}

	var img image.Image
	img, err = s.cache.Load(a.Path)
	if err != nil {
		return nil, cfg, err
	}
	if a.Region != "" && a.Region != "full" {
		if img, err = imaging.CropRegion(img, a.Region); err != nil {
			return nil, cfg, err
		}
	}

	res, err := imaging.FilterImage(ctx, f, img, opts)
	if err != nil {
		return nil, cfg, err
	}
	return res, cfg, nil
}

func (s *Server) handleImageLineFilter(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a lineFilterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, cfg, err := s.runLineFilter(ctx, &a)
	if err != nil {
		return nil, err
	}
	return s.finishResult(res.Output, cfg, &a, res.Stats)
}

func (s *Server) handleImageLineFilterOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a lineFilterArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, cfg, err := s.runLineFilter(ctx, &a)
	if err != nil {
		return nil, err
	}
	overlay, err := imaging.DiffOverlay(res.Input, res.Output, a.KeptColor, a.RemovedColor)
	if err != nil {
		return nil, err
	}
	out, err := s.finishResult(overlay.Image, cfg, &a, res.Stats)
	if err != nil {
		return nil, err
	}
	return &lineFilterOverlayResult{
		lineFilterResult: *out,
		Kept:             overlay.Kept,
		Removed:          overlay.Removed,
	}, nil
}

// finishResult encodes img and optionally writes it to a.OutputPath.
func (s *Server) finishResult(img image.Image, cfg linefilter.Config, a *lineFilterArgs, stats *linefilter.Stats) (*lineFilterResult, error) {
	enc, err := imaging.Encode(img)
	if err != nil {
		return nil, err
	}
	if a.OutputPath != "" {
		if err := imaging.SavePNG(a.OutputPath, img); err != nil {
			return nil, err
		}
	}
	region := a.Region
	if region == "" {
		region = "full"
	}
	return &lineFilterResult{
		EncodedImage: enc,
		Config:       cfg,
		Region:       region,
		Stats:        stats,
		OutputPath:   a.OutputPath,
	}, nil
}

type lineFilterKernelArgs struct {
	KernelSize int `json:"kernel_size"`
	KernelSpan int `json:"kernel_span"`
}

// kernelResult describes the structures a filter is built from.
type kernelResult struct {
	KernelSize int      `json:"kernel_size"`
	KernelSpan int      `json:"kernel_span"`
	Checksum   int      `json:"checksum"`
	Kernel     [][]int  `json:"kernel"`
	Perimeter  []int    `json:"perimeter"`
	Products   []uint16 `json:"products"`
}

func (s *Server) handleLineFilterKernel(args json.RawMessage) (interface{}, error) {
	var a lineFilterKernelArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	cfg := linefilter.DefaultConfig()
	if a.KernelSize != 0 {
		cfg.KernelSize = a.KernelSize
	}
	if a.KernelSpan != 0 {
		cfg.KernelSpan = a.KernelSpan
	}

	f, err := s.filterFor(cfg)
	if err != nil {
		return nil, err
	}

	rows := f.Kernel().Rows()
	kernel := make([][]int, len(rows))
	for i, row := range rows {
		kernel[i] = toInts(row)
	}

	return &kernelResult{
		KernelSize: cfg.KernelSize,
		KernelSpan: cfg.KernelSpan,
		Checksum:   f.Kernel().Checksum(),
		Kernel:     kernel,
		Perimeter:  toInts(f.Perimeter().Weights()),
		Products:   f.Table().Products(),
	}, nil
}

// toInts widens bytes so they marshal as a JSON array instead of base64.
func toInts(b []uint8) []int {
	out := make([]int, len(b))
	for i, v := range b {
		out[i] = int(v)
	}
	return out
}
