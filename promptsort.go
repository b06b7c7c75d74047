// Package promptsort extracts AI generation prompts embedded in image
// files and sorts image collections by prompt keywords.
//
// Extraction tries, in priority order: tool-specific JSON records, webui
// parameter blocks, workflow node graphs, EXIF comment fields and stealth
// LSB payloads hidden in pixel data. Absence is never an error: extraction
// returns the empty string when an image carries no prompt.
package promptsort

// DefaultMaxWorkers bounds concurrent per-image extraction in Classify.
const DefaultMaxWorkers = 3

// Extractor returns the prompt text for the image at path, "" when the
// image carries none.
type Extractor func(path string) string

// Config holds the dependencies and callbacks for the classify engine.
type Config struct {
	Extract    Extractor // default: OpenImage + ExtractPrompt
	MaxWorkers int       // default: DefaultMaxWorkers

	// SkipDuplicates drops images perceptually identical to one already
	// processed in the same run instead of moving them.
	SkipDuplicates bool

	// Optional callbacks for progress/metrics.
	OnProgress func(done, total int)
	OnMove     func(MoveEvent)
	OnPanic    func(tag string, r any)
}

// MoveEvent reports one classified image move.
type MoveEvent struct {
	Source  string // original path
	Dest    string // path after move (and rename, when enabled)
	Keyword string // matched keyword
	Level   int    // 1-based cascade level, 0 in full-tracking mode
}

// defaults fills zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = DefaultMaxWorkers
	}
	if c.Extract == nil {
		c.Extract = defaultExtract
	}
}

// defaultExtract opens path and runs prompt extraction, absorbing open
// failures into "no prompt".
func defaultExtract(path string) string {
	f, err := OpenImage(path)
	if err != nil {
		return ""
	}
	return ExtractPrompt(f)
}
