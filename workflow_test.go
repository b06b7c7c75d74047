package promptsort

import (
	"testing"
)

func TestParseWorkflowGraph(t *testing.T) {
	t.Parallel()

	text := `{
		"10": {"class_type": "CLIPTextEncode", "inputs": {"text": "ocean"}},
		"3": {"class_type": "KSampler", "inputs": {"seed": 42}},
		"2": {"class_type": "CLIPTextEncode", "inputs": {"text": "sunset"}},
		"9": {"class_type": "SaveImage", "inputs": {}}
	}`

	rec := ParseWorkflowGraph(text)
	if rec == nil {
		t.Fatal("ParseWorkflowGraph() = nil, want record")
	}
	if rec.Prompt != "sunset\nocean" {
		t.Errorf("Prompt = %q, want encoder texts joined in numeric id order", rec.Prompt)
	}
}

func TestParseWorkflowGraphNumericOrder(t *testing.T) {
	t.Parallel()

	// Lexicographic order would put "10" before "2".
	text := `{
		"10": {"class_type": "CLIPTextEncode", "inputs": {"text": "second"}},
		"2": {"class_type": "CLIPTextEncode", "inputs": {"text": "first"}}
	}`

	rec := ParseWorkflowGraph(text)
	if rec == nil {
		t.Fatal("ParseWorkflowGraph() = nil, want record")
	}
	if rec.Prompt != "first\nsecond" {
		t.Errorf("Prompt = %q, want %q", rec.Prompt, "first\nsecond")
	}
}

func TestParseWorkflowGraphSkipsBadNodes(t *testing.T) {
	t.Parallel()

	text := `{
		"1": {"class_type": "CLIPTextEncode", "inputs": {"text": 42}},
		"2": {"class_type": "CLIPTextEncode", "inputs": {"text": ""}},
		"3": {"class_type": "CLIPTextEncode"},
		"4": "not a node",
		"5": {"class_type": "CLIPTextEncode", "inputs": {"text": "kept"}}
	}`

	rec := ParseWorkflowGraph(text)
	if rec == nil {
		t.Fatal("ParseWorkflowGraph() = nil, want record")
	}
	if rec.Prompt != "kept" {
		t.Errorf("Prompt = %q, want %q", rec.Prompt, "kept")
	}
}

func TestParseWorkflowGraphNoEncoderText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
	}{
		{
			name: "no text encoder nodes",
			text: `{"3": {"class_type": "KSampler", "inputs": {}}}`,
		},
		{
			name: "encoder without text",
			text: `{"3": {"class_type": "CLIPTextEncode", "inputs": {"clip": ["4", 0]}}}`,
		},
		{
			name: "not json",
			text: "plain text",
		},
		{
			name: "json array",
			text: "[1, 2]",
		},
		{
			name: "empty object",
			text: "{}",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if rec := ParseWorkflowGraph(tc.text); rec != nil {
				t.Errorf("ParseWorkflowGraph(%q) = %+v, want nil", tc.text, rec)
			}
		})
	}
}

func TestLessNodeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "numeric compare", a: "2", b: "10", want: true},
		{name: "numeric compare reversed", a: "10", b: "2", want: false},
		{name: "mixed falls back to lexicographic", a: "10", b: "node", want: true},
		{name: "both non-numeric", a: "alpha", b: "beta", want: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := lessNodeID(tc.a, tc.b); got != tc.want {
				t.Errorf("lessNodeID(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
