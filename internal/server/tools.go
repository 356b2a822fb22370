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
		"description": "Absolute path to the image file",
	}
}

func blurProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional box-blur radius applied before binarization. Default from config",
	}
}

func modelProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"bayes", "logistic"},
		"description": "Pixel classifier: Naive-Bayes neighborhood model or fitted logistic model. Default bayes",
		"default":     "bayes",
	}
}

func pixelProperties() (row, col map[string]interface{}) {
	row = map[string]interface{}{
		"type":        "integer",
		"description": "Pixel row (0-based, from top)",
	}
	col = map[string]interface{}{
		"type":        "integer",
		"description": "Pixel column (0-based, from left)",
	}
	return row, col
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	row, col := pixelProperties()
	return []Tool{
		{
			Name:        "denoise_binarize",
			Description: "Binarize an image (ink below mid-gray) and report its size and ink coverage. Optionally return the binarized image as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"blur": blurProperty(),
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the binarized image as base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "denoise_features",
			Description: "Compute the geometric feature vector (ray lengths, stroke thickness, ball radius, border distances, window statistics) of one ink pixel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"row":  row,
					"col":  col,
					"layout": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"strokes", "rays"},
						"description": "Feature layout. Default from config",
					},
				},
				"required": []string{"path", "row", "col"},
			},
		},
		{
			Name:        "denoise_posterior",
			Description: "Return the probability that one ink pixel belongs to a letter, and the resulting decision at the configured threshold.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"row":   row,
					"col":   col,
					"model": modelProperty(),
				},
				"required": []string{"path", "row", "col"},
			},
		},
		{
			Name:        "denoise_clean",
			Description: "Erase ink pixels classified as noise. Writes the cleaned image to output if given, otherwise returns it as base64-encoded PNG, together with sweep statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"model": modelProperty(),
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path for the cleaned image; the extension selects the format",
					},
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Optional P(letter) at or below which ink is erased. Default from config",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Optional number of concurrent row bands. Default from config",
					},
					"blur": blurProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "denoise_ocr",
			Description: "Read the letters in an image with Tesseract, optionally cleaning it first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"clean": map[string]interface{}{
						"type":        "boolean",
						"description": "Clean the image before OCR. Default true",
						"default":     true,
					},
					"model": modelProperty(),
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default 'eng'",
						"default":     "eng",
					},
					"whitelist": map[string]interface{}{
						"type":        "string",
						"description": "Optional set of characters to recognize",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return reply(req.ID, map[string]interface{}{"tools": GetToolDefinitions()})
}
