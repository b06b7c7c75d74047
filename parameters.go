package promptsort

import "strings"

const negativePromptPrefix = "Negative prompt:"

// ParseParameterBlock parses the multi-line "key: value" block webui-style
// tools embed. Lines above the "Negative prompt:" line form the prompt,
// the rest of that line is the negative prompt, and every following line
// carries comma-separated options. Without a negative-prompt line the
// whole text is the prompt. Any input yields a record.
func ParseParameterBlock(text string) *PromptRecord {
	lines := strings.Split(text, "\n")

	negIdx := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), negativePromptPrefix) {
			negIdx = i
			break
		}
	}
	if negIdx < 0 {
		return &PromptRecord{Prompt: strings.TrimSpace(text)}
	}

	rec := &PromptRecord{
		Prompt: strings.TrimSpace(strings.Join(lines[:negIdx], "\n")),
	}
	negLine := strings.TrimSpace(lines[negIdx])
	rec.NegativePrompt = strings.TrimSpace(strings.TrimPrefix(negLine, negativePromptPrefix))

	for _, line := range lines[negIdx+1:] {
		parseOptionLine(rec, line)
	}
	return rec
}

// parseOptionLine splits a "Steps: 20, Sampler: Euler a" line into options.
// Each comma segment splits on its first colon; segments without a colon
// are presence-only flags kept in Extra with an empty value.
func parseOptionLine(rec *PromptRecord, line string) {
	for _, seg := range strings.Split(line, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key, val, ok := strings.Cut(seg, ":")
		if !ok {
			rec.addExtra(seg, StringScalar(""))
			continue
		}
		rec.addOption(key, CoerceScalar(strings.TrimSpace(val)))
	}
}
