package promptsort

// ExtractPrompt returns the generation prompt embedded in f, or "" when
// none is found. Sources are tried in a fixed order: NovelAI records in
// the container Comment chunk or EXIF, the container parameters chunk
// verbatim, workflow graphs in the container prompt chunk, EXIF comment
// fields, and finally stealth LSB payloads. Exactly one source produces
// the returned text. Never errors; absence is the empty string.
func ExtractPrompt(f *ImageFile) string {
	if f == nil {
		return ""
	}

	exifText := f.exifComment()

	if rec := novelAIRecord(f, exifText); rec != nil {
		return rec.Prompt
	}
	if p := f.Info["parameters"]; p != "" {
		return p
	}
	if text, ok := workflowPromptText(f.Info["prompt"]); ok {
		return text
	}
	if exifText != "" {
		return unwrapComment(exifText)
	}
	if text, ok := ReadStealth(f); ok {
		return text
	}
	return ""
}

// ExtractRecord returns the normalized record for f, or nil when no source
// yields anything. The source priority matches ExtractPrompt; the winning
// candidate is parsed by its dialect into structured fields.
func ExtractRecord(f *ImageFile) *PromptRecord {
	if f == nil {
		return nil
	}

	exifText := f.exifComment()

	if rec := novelAIRecord(f, exifText); rec != nil {
		return rec
	}
	if p := f.Info["parameters"]; p != "" {
		return ParseParameterBlock(p)
	}
	if raw := f.Info["prompt"]; raw != "" {
		if rec := ParseWorkflowGraph(raw); rec != nil {
			return rec
		}
		if decodeJSONObject(raw) == nil {
			return &PromptRecord{Prompt: raw}
		}
	}
	if exifText != "" {
		return candidateRecord(unwrapComment(exifText))
	}
	if text, ok := ReadStealth(f); ok {
		return candidateRecord(text)
	}
	return nil
}

// exifComment returns the image's EXIF comment text, or "" when the format
// cannot carry EXIF or none of the comment tags are present.
func (f *ImageFile) exifComment() string {
	switch f.Format {
	case "png", "jpeg", "webp", "tiff":
		return ExtractExifComment(f.Data)
	}
	return ""
}

// novelAIRecord tries the NovelAI dialect on the two channels that carry
// it: the container Comment chunk holds the record JSON directly, EXIF
// comments hold it wrapped one level deeper.
func novelAIRecord(f *ImageFile, exifText string) *PromptRecord {
	if c := f.Info["Comment"]; c != "" {
		if rec := ParseNovelAIComment(c); rec != nil {
			return rec
		}
	}
	if exifText != "" {
		if rec := ParseNovelAIWrapper(exifText); rec != nil {
			return rec
		}
	}
	return nil
}

// workflowPromptText renders the container "prompt" chunk: node graphs
// yield their joined text-encoder inputs, non-JSON values pass through
// verbatim, and other JSON shapes yield nothing.
func workflowPromptText(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if rec := ParseWorkflowGraph(raw); rec != nil {
		return rec.Prompt, true
	}
	if decodeJSONObject(raw) == nil {
		return raw, true
	}
	return "", false
}

// unwrapComment unwraps a {"comment": "..."} / {"Comment": "..."} JSON
// wrapper around plain comment text; anything else passes through.
func unwrapComment(text string) string {
	obj := decodeJSONObject(text)
	if obj == nil {
		return text
	}
	for _, key := range []string{"comment", "Comment"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return text
}

// candidateRecord parses free-standing candidate text through dialect
// detection. Opaque text becomes a record with the text as prompt.
func candidateRecord(text string) *PromptRecord {
	switch DetectDialect(text) {
	case DialectNovelAI:
		return ParseNovelAIWrapper(text)
	case DialectParameters:
		return parseParametersCandidate(text)
	case DialectWorkflow:
		if rec := ParseWorkflowGraph(text); rec != nil {
			return rec
		}
		return jsonMapRecord(text)
	case DialectJSONMap:
		return jsonMapRecord(text)
	default:
		return &PromptRecord{Prompt: text}
	}
}

// parseParametersCandidate handles both carrier shapes of the parameter
// dialect: a JSON {"parameters": "<block>"} wrapper or the raw block.
func parseParametersCandidate(text string) *PromptRecord {
	if obj := decodeJSONObject(text); obj != nil {
		if block, ok := obj["parameters"].(string); ok {
			return ParseParameterBlock(block)
		}
	}
	return ParseParameterBlock(text)
}

// jsonMapRecord passes a generic JSON mapping through as opaque extras,
// keys kept as written.
func jsonMapRecord(text string) *PromptRecord {
	obj := decodeJSONObject(text)
	if obj == nil {
		return &PromptRecord{Prompt: text}
	}
	rec := &PromptRecord{Extra: make(map[string]Scalar, len(obj))}
	for key, val := range obj {
		rec.Extra[key] = jsonScalar(val)
	}
	return rec
}
