package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the screenshot file (PNG, JPEG or GIF)",
	}
}

// overridesProperty mirrors preprocess.Overrides. Omitted fields keep the
// server's configured value.
func overridesProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional preprocessing overrides",
		"properties": map[string]interface{}{
			"scale_factor": map[string]interface{}{
				"type":        "number",
				"description": "Bicubic upscale factor (default: 2.5)",
			},
			"contrast_clip_percent": map[string]interface{}{
				"type":        "number",
				"description": "Percent of pixels clipped at each end before stretching (default: 5)",
			},
			"auto_invert": map[string]interface{}{
				"type":        "boolean",
				"description": "Invert dark-mode screenshots (default: true)",
			},
			"force_invert": map[string]interface{}{
				"type":        "boolean",
				"description": "Always invert (default: false)",
			},
			"dark_cutoff": map[string]interface{}{
				"type":        "integer",
				"description": "Median luminance below which a screenshot is dark (default: 128)",
			},
			"binarize_mode": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"adaptive", "global", "none"},
				"description": "Thresholding strategy (default: adaptive)",
			},
			"binary_threshold": map[string]interface{}{
				"type":        "integer",
				"description": "Global threshold 0-255 (default: 128)",
			},
			"adaptive_radius": map[string]interface{}{
				"type":        "integer",
				"description": "Adaptive window radius in pixels (default: 15)",
			},
			"adaptive_bias": map[string]interface{}{
				"type":        "number",
				"description": "Added to the local mean before comparing (default: -10)",
			},
			"denoise_radius": map[string]interface{}{
				"type":        "integer",
				"description": "Box blur radius, 0 disables (default: 1)",
			},
			"sharpen": map[string]interface{}{
				"type":        "boolean",
				"description": "Apply the sharpening kernel (default: true)",
			},
			"sharpen_strength": map[string]interface{}{
				"type":        "number",
				"description": "Sharpening strength (default: 1.5)",
			},
			"padding_px": map[string]interface{}{
				"type":        "integer",
				"description": "White border added on every side (default: 20)",
			},
		},
	}
}

func textProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Raw OCR text of a delivery earnings screenshot",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Screenshots
		{
			Name:        "screenshot_info",
			Description: "Load a screenshot and return its dimensions, format, file size and whether it uses a dark or light theme.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "screenshot_preprocess",
			Description: "Clean a screenshot for OCR: upscale, grayscale, denoise, contrast stretch, dark-mode inversion, binarization, sharpening and padding. Returns the stage report and the PNG as base64, or writes it to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Write the PNG here instead of returning it inline",
					},
					"overrides": overridesProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "screenshot_extract",
			Description: "Preprocess a screenshot, run OCR on it and parse the text into an earnings record (day, week or unknown) with offers.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      pathProperty(),
					"overrides": overridesProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "screenshot_batch",
			Description: "Extract earnings records from several screenshots. Failed items carry an error and do not stop the batch.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Absolute paths to the screenshot files",
					},
				},
				"required": []string{"paths"},
			},
		},

		// Text
		{
			Name:        "earnings_parse_text",
			Description: "Parse OCR text from an earnings screenshot into a structured record. Never fails; unparsed fields are null.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": textProperty(),
					"session_schema": map[string]interface{}{
						"type":        "boolean",
						"description": "Report day and unknown entries as the simplified session type (default: false)",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "earnings_classify",
			Description: "Classify OCR text as a day, week or unknown entry and name the rule that decided it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": textProperty(),
				},
				"required": []string{"text"},
			},
		},

		// Engine
		{
			Name:        "ocr_info",
			Description: "Report whether the Tesseract OCR engine is available, its version and language.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
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
