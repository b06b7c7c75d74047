package promptsort

import "strings"

// NovelAI stores its generation record as JSON in a PNG Comment chunk.
// When the same record travels through EXIF or stealth channels the whole
// info map is serialized, wrapping the record one level deeper:
// {"Comment": "<record JSON>"}.

// ParseNovelAIWrapper parses wrapper text and returns the nested record,
// or nil when text is not such a wrapper.
func ParseNovelAIWrapper(text string) *PromptRecord {
	obj := decodeJSONObject(text)
	if obj == nil {
		return nil
	}
	inner, ok := obj["Comment"].(string)
	if !ok {
		return nil
	}
	return ParseNovelAIComment(inner)
}

// ParseNovelAIComment parses the record JSON itself: prompt from "prompt"
// (trimmed), negative prompt from "uc" falling back to "negative_prompt",
// whitelisted generation settings into Options, every remaining key into
// Extra. Returns nil when text is not a JSON mapping.
func ParseNovelAIComment(text string) *PromptRecord {
	obj := decodeJSONObject(text)
	if obj == nil {
		return nil
	}

	rec := &PromptRecord{}
	if p, ok := obj["prompt"].(string); ok {
		rec.Prompt = strings.TrimSpace(p)
	}
	for _, key := range []string{"uc", "negative_prompt"} {
		if n, ok := obj[key].(string); ok {
			rec.NegativePrompt = n
			break
		}
	}
	for key, val := range obj {
		switch key {
		case "prompt", "uc", "negative_prompt":
			continue
		}
		rec.addOption(key, jsonScalar(val))
	}
	return rec
}
