package promptsort

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Move records one file relocation so it can be reversed later.
type Move struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Keyword string `json:"keyword,omitempty"`
}

// Journal is the undo log of a classification run: every move made and
// every directory created, in order.
type Journal struct {
	Moves       []Move   `json:"moves"`
	CreatedDirs []string `json:"created_dirs,omitempty"`
}

// Empty reports whether the run moved nothing.
func (j *Journal) Empty() bool {
	return j == nil || len(j.Moves) == 0
}

// Undo reverses the journal: files move back in reverse order, then
// directories the run created are removed if empty. Files that no longer
// exist at their destination are skipped with a warning. Returns the
// number of files restored.
func (j *Journal) Undo() int {
	if j.Empty() {
		return 0
	}

	restored := 0
	for i := len(j.Moves) - 1; i >= 0; i-- {
		mv := j.Moves[i]
		if _, err := os.Stat(mv.To); err != nil {
			slog.Warn("promptsort: undo skipped, file missing", "path", mv.To)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(mv.From), 0o755); err != nil {
			slog.Warn("promptsort: undo mkdir failed", "dir", filepath.Dir(mv.From), "error", err.Error())
			continue
		}
		if err := moveFile(mv.To, mv.From); err != nil {
			slog.Warn("promptsort: undo move failed", "path", mv.To, "error", err.Error())
			continue
		}
		restored++
	}

	// Deepest directories first so nested empties collapse bottom-up.
	dirs := append([]string(nil), j.CreatedDirs...)
	sort.Slice(dirs, func(a, b int) bool { return len(dirs[a]) > len(dirs[b]) })
	for _, dir := range dirs {
		if err := os.Remove(dir); err != nil {
			slog.Debug("promptsort: undo kept non-empty dir", "dir", dir)
		}
	}

	return restored
}

// Save writes the journal as JSON to path.
func (j *Journal) Save(path string) error {
	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadJournal reads a journal previously written by Save.
func LoadJournal(path string) (*Journal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}
