package promptsort

import (
	"encoding/json"
	"strings"
)

// Dialect identifies which kind of generation tool wrote a metadata
// candidate.
type Dialect int

const (
	// DialectOpaque is unrecognized free text.
	DialectOpaque Dialect = iota
	// DialectNovelAI is a JSON object with a nested Comment record.
	DialectNovelAI
	// DialectParameters is a "key: value" parameter block, raw or behind
	// a JSON parameters key.
	DialectParameters
	// DialectWorkflow is node-graph JSON with text-encoder nodes.
	DialectWorkflow
	// DialectJSONMap is a generic JSON mapping, passed through as extras.
	DialectJSONMap
)

// parameterMarkers identify a raw parameter block in non-JSON text.
var parameterMarkers = []string{
	"Prompt:",
	"Negative prompt:",
	"Steps:",
}

// DetectDialect classifies candidate text by the tool that produced it.
// JSON shapes win: a Comment key holding nested JSON is NovelAI, a
// parameters key holds a parameter block, node objects form a workflow
// graph, and any other mapping passes through as extras. Non-JSON text
// containing a parameter marker is a parameter block; the rest is opaque.
func DetectDialect(text string) Dialect {
	obj := decodeJSONObject(text)
	if obj == nil {
		if hasParameterMarker(text) {
			return DialectParameters
		}
		return DialectOpaque
	}
	if inner, ok := obj["Comment"].(string); ok && decodeJSONObject(inner) != nil {
		return DialectNovelAI
	}
	if _, ok := obj["parameters"].(string); ok {
		return DialectParameters
	}
	if isWorkflowGraph(obj) {
		return DialectWorkflow
	}
	return DialectJSONMap
}

// decodeJSONObject parses text as a JSON object. Returns nil for anything
// that is not a JSON mapping.
func decodeJSONObject(text string) map[string]any {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "{") {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(t), &obj); err != nil {
		return nil
	}
	return obj
}

// isWorkflowGraph reports whether obj looks like a node graph: at least
// one value is an object carrying a class_type field.
func isWorkflowGraph(obj map[string]any) bool {
	for _, v := range obj {
		if node, ok := v.(map[string]any); ok {
			if _, ok := node["class_type"]; ok {
				return true
			}
		}
	}
	return false
}

func hasParameterMarker(text string) bool {
	for _, m := range parameterMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
