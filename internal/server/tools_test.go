package server

import (
	"testing"
)

var expectedTools = []string{
	"denoise_binarize",
	"denoise_features",
	"denoise_posterior",
	"denoise_clean",
	"denoise_ocr",
}

func toolsByName() map[string]Tool {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}
	return toolMap
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()
	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := toolsByName()
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema properties missing")
			}

			// Every required field must be a declared property.
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("InputSchema missing 'required'")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required field %s is not a property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredFields(t *testing.T) {
	tests := map[string][]string{
		"denoise_binarize":  {"path"},
		"denoise_features":  {"path", "row", "col"},
		"denoise_posterior": {"path", "row", "col"},
		"denoise_clean":     {"path"},
		"denoise_ocr":       {"path"},
	}

	toolMap := toolsByName()
	for name, want := range tests {
		tool, ok := toolMap[name]
		if !ok {
			t.Errorf("Tool %s not found", name)
			continue
		}
		got, _ := tool.InputSchema["required"].([]string)
		if len(got) != len(want) {
			t.Errorf("%s required: got %v, want %v", name, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s required: got %v, want %v", name, got, want)
			}
		}
	}
}

func TestToolDefinitions_ModelEnum(t *testing.T) {
	toolMap := toolsByName()
	for _, name := range []string{"denoise_posterior", "denoise_clean", "denoise_ocr"} {
		props := toolMap[name].InputSchema["properties"].(map[string]interface{})
		model, ok := props["model"].(map[string]interface{})
		if !ok {
			t.Errorf("%s: missing model property", name)
			continue
		}
		enum, _ := model["enum"].([]string)
		if len(enum) != 2 || enum[0] != "bayes" || enum[1] != "logistic" {
			t.Errorf("%s: model enum %v", name, enum)
		}
	}
}
