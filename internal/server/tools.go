package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and whether it is already a binary (two-level) image that can be line-filtered without binarization.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Binarization
		{
			Name:        "image_edge_detect",
			Description: "Return a binary Canny edge map of the image (edges white, background black). This is the usual input for image_line_filter.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProperty(),
					"threshold_low":  thresholdLowProperty(),
					"threshold_high": thresholdHighProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_threshold",
			Description: "Return a binary image where pixels at or above a luminance level are white. Set invert for dark ink on light paper.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"level":  levelProperty(),
					"invert": invertProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Line Filter
		{
			Name:        "image_line_filter",
			Description: "Remove foreground pixels that are not part of a locally straight, contiguous line. The image is binarized first (method none, edge or threshold), then filtered. Returns the filtered binary image and per-pass pixel counts.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": filterProperties(false),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_line_filter_overlay",
			Description: "Run the line filter and return a colour overlay: pixels kept by the filter in one colour, pixels it removed in another, background black.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": filterProperties(true),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "line_filter_kernel",
			Description: "Describe the filter structures for a kernel size: the concentric weight kernel, its checksum, the perimeter weights and the table of accepted perimeter weight products.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"kernel_size": kernelSizeProperty(),
					"kernel_span": kernelSpanProperty(),
				},
			},
		},
	}
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func thresholdLowProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Low threshold for Canny edge detection (default 50)",
		"default":     50,
	}
}

func thresholdHighProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "High threshold for Canny edge detection (default 150)",
		"default":     150,
	}
}

func levelProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Luminance threshold 1-255 (default 128)",
		"default":     128,
	}
}

func invertProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Invert before thresholding so dark pixels become foreground (default false)",
		"default":     false,
	}
}

func kernelSizeProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Odd kernel side length 3-13 (default 11). Longer kernels demand longer straight runs.",
		"default":     11,
		"enum":        []int{3, 5, 7, 9, 11, 13},
	}
}

func kernelSpanProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Odd angular tolerance in perimeter positions (default 5)",
		"default":     5,
	}
}

// filterProperties returns the parameters shared by the line filter tools.
func filterProperties(overlay bool) map[string]interface{} {
	props := map[string]interface{}{
		"path":        pathProperty(),
		"kernel_size": kernelSizeProperty(),
		"kernel_runs": map[string]interface{}{
			"type":        "integer",
			"description": "Number of contiguous-line passes (default 1)",
			"default":     1,
		},
		"kernel_span": kernelSpanProperty(),
		"binarize": map[string]interface{}{
			"type":        "string",
			"description": "Binarization before filtering: none (non-black is foreground), edge (Canny) or threshold (default none)",
			"enum":        []string{"none", "edge", "threshold"},
			"default":     "none",
		},
		"level":          levelProperty(),
		"invert":         invertProperty(),
		"threshold_low":  thresholdLowProperty(),
		"threshold_high": thresholdHighProperty(),
		"region": map[string]interface{}{
			"type":        "string",
			"description": "Restrict filtering to a named region of the image (default full)",
			"enum": []string{
				"full", "top-left", "top-right", "bottom-left", "bottom-right",
				"top-half", "bottom-half", "left-half", "right-half", "center",
			},
			"default": "full",
		},
		"output_path": map[string]interface{}{
			"type":        "string",
			"description": "Optional path to also write the result as PNG",
		},
	}
	if overlay {
		props["kept_color"] = map[string]interface{}{
			"type":        "string",
			"description": "Hex colour for kept pixels (default #ffffff)",
			"default":     "#ffffff",
		}
		props["removed_color"] = map[string]interface{}{
			"type":        "string",
			"description": "Hex colour for removed pixels (default #ff3b30)",
			"default":     "#ff3b30",
		}
	}
	return props
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
