package promptsort

import (
	"sort"
	"strconv"
	"strings"
)

// textEncoderClass is the node type whose text inputs form the prompt in
// workflow graphs.
const textEncoderClass = "CLIPTextEncode"

// ParseWorkflowGraph extracts prompt text from a node-graph JSON mapping
// of node id → {class_type, inputs}. The inputs.text strings of every
// text-encoder node are joined with newlines in node-id order. Returns nil
// when text is not a graph or no text-encoder node carries text.
func ParseWorkflowGraph(text string) *PromptRecord {
	obj := decodeJSONObject(text)
	if obj == nil {
		return nil
	}
	texts := workflowTexts(obj)
	if len(texts) == 0 {
		return nil
	}
	return &PromptRecord{Prompt: strings.Join(texts, "\n")}
}

// workflowTexts collects inputs.text from text-encoder nodes. Graph JSON
// decodes into an unordered map, so nodes are visited in id order, numeric
// when both ids parse as integers.
func workflowTexts(obj map[string]any) []string {
	ids := make([]string, 0, len(obj))
	for id := range obj {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return lessNodeID(ids[i], ids[j]) })

	var texts []string
	for _, id := range ids {
		node, ok := obj[id].(map[string]any)
		if !ok {
			continue
		}
		if class, _ := node["class_type"].(string); class != textEncoderClass {
			continue
		}
		inputs, ok := node["inputs"].(map[string]any)
		if !ok {
			continue
		}
		if t, ok := inputs["text"].(string); ok && t != "" {
			texts = append(texts, t)
		}
	}
	return texts
}

func lessNodeID(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
