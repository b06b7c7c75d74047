package promptsort

import (
	"testing"
)

func TestDetectDialect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Dialect
	}{
		{
			name: "novelai wrapper",
			text: `{"Comment": "{\"prompt\": \"1girl\", \"steps\": 28}", "Software": "NovelAI"}`,
			want: DialectNovelAI,
		},
		{
			name: "comment key without nested json is not novelai",
			text: `{"Comment": "just a note"}`,
			want: DialectJSONMap,
		},
		{
			name: "json parameters wrapper",
			text: `{"parameters": "a dog\nSteps: 20"}`,
			want: DialectParameters,
		},
		{
			name: "raw parameter block via negative prompt marker",
			text: "a dog\nNegative prompt: blurry\nSteps: 20",
			want: DialectParameters,
		},
		{
			name: "raw parameter block via steps marker",
			text: "a cat, highres\nSteps: 30, Sampler: Euler a",
			want: DialectParameters,
		},
		{
			name: "raw parameter block via prompt marker",
			text: "Prompt: sunset over mountains",
			want: DialectParameters,
		},
		{
			name: "workflow graph",
			text: `{"3": {"class_type": "KSampler", "inputs": {}}, "4": {"class_type": "CLIPTextEncode", "inputs": {"text": "hi"}}}`,
			want: DialectWorkflow,
		},
		{
			name: "generic json mapping",
			text: `{"seed": 42, "uploader": "anon"}`,
			want: DialectJSONMap,
		},
		{
			name: "free text",
			text: "a lovely painting of a fox",
			want: DialectOpaque,
		},
		{
			name: "json array is opaque",
			text: `[1, 2, 3]`,
			want: DialectOpaque,
		},
		{
			name: "malformed json with marker",
			text: `{"parameters": "Steps: 20`,
			want: DialectParameters,
		},
		{
			name: "empty string",
			text: "",
			want: DialectOpaque,
		},
		{
			name: "novelai wins over parameters key",
			text: `{"Comment": "{\"prompt\": \"x\"}", "parameters": "a dog\nSteps: 20"}`,
			want: DialectNovelAI,
		},
		{
			name: "parameters key wins over workflow nodes",
			text: `{"parameters": "a dog", "9": {"class_type": "SaveImage"}}`,
			want: DialectParameters,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := DetectDialect(tc.text); got != tc.want {
				t.Errorf("DetectDialect(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestDecodeJSONObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		wantNil bool
	}{
		{name: "object", text: `{"a": 1}`, wantNil: false},
		{name: "object with leading space", text: `   {"a": 1}`, wantNil: false},
		{name: "array", text: `[1]`, wantNil: true},
		{name: "scalar", text: `42`, wantNil: true},
		{name: "truncated object", text: `{"a":`, wantNil: true},
		{name: "empty", text: "", wantNil: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := decodeJSONObject(tc.text)
			if (got == nil) != tc.wantNil {
				t.Errorf("decodeJSONObject(%q) = %v, wantNil=%v", tc.text, got, tc.wantNil)
			}
		})
	}
}

func TestIsWorkflowGraph(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		obj  map[string]any
		want bool
	}{
		{
			name: "node with class_type",
			obj:  map[string]any{"1": map[string]any{"class_type": "KSampler"}},
			want: true,
		},
		{
			name: "values without class_type",
			obj:  map[string]any{"1": map[string]any{"inputs": "x"}},
			want: false,
		},
		{
			name: "scalar values",
			obj:  map[string]any{"seed": float64(1)},
			want: false,
		},
		{
			name: "empty",
			obj:  map[string]any{},
			want: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isWorkflowGraph(tc.obj); got != tc.want {
				t.Errorf("isWorkflowGraph() = %v, want %v", got, tc.want)
			}
		})
	}
}
