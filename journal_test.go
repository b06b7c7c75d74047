package promptsort

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJournalEmpty(t *testing.T) {
	t.Parallel()

	var nilJournal *Journal
	if !nilJournal.Empty() {
		t.Error("nil journal Empty() = false, want true")
	}
	if !(&Journal{}).Empty() {
		t.Error("fresh journal Empty() = false, want true")
	}
	j := &Journal{Moves: []Move{{From: "a", To: "b"}}}
	if j.Empty() {
		t.Error("journal with moves Empty() = true, want false")
	}
}

func TestJournalSaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "journal.json")

	j := &Journal{
		Moves: []Move{
			{From: "/src/a.png", To: "/dst/cat/a.png", Keyword: "cat"},
			{From: "/src/b.png", To: "/dst/dog/b.png", Keyword: "dog"},
		},
		CreatedDirs: []string{"/dst/cat", "/dst/dog"},
	}
	if err := j.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadJournal(path)
	if err != nil {
		t.Fatalf("LoadJournal() error = %v", err)
	}
	if len(loaded.Moves) != 2 {
		t.Fatalf("loaded %d moves, want 2", len(loaded.Moves))
	}
	if loaded.Moves[0] != j.Moves[0] || loaded.Moves[1] != j.Moves[1] {
		t.Errorf("moves = %+v, want %+v", loaded.Moves, j.Moves)
	}
	if len(loaded.CreatedDirs) != 2 {
		t.Errorf("loaded %d created dirs, want 2", len(loaded.CreatedDirs))
	}
}

func TestLoadJournalMissing(t *testing.T) {
	t.Parallel()

	if _, err := LoadJournal(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadJournal() on a missing file succeeded, want error")
	}
}

func TestLoadJournalMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadJournal(path); err == nil {
		t.Error("LoadJournal() on malformed JSON succeeded, want error")
	}
}

func TestJournalUndoReversesOrder(t *testing.T) {
	t.Parallel()

	// A file moved twice in one run must be walked back through its
	// intermediate location, which only works in reverse order.
	dir := t.TempDir()
	first := filepath.Join(dir, "img.png")
	second := filepath.Join(dir, "lv1", "img.png")
	third := filepath.Join(dir, "lv1", "lv2", "img.png")

	if err := os.MkdirAll(filepath.Dir(third), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeTestPNG(t, third)

	j := &Journal{
		Moves: []Move{
			{From: first, To: second},
			{From: second, To: third},
		},
		CreatedDirs: []string{filepath.Join(dir, "lv1"), filepath.Join(dir, "lv1", "lv2")},
	}

	if restored := j.Undo(); restored != 2 {
		t.Errorf("Undo() = %d, want 2", restored)
	}
	if _, err := os.Stat(first); err != nil {
		t.Errorf("file not back at origin: %v", err)
	}
	for _, d := range j.CreatedDirs {
		if _, err := os.Stat(d); !os.IsNotExist(err) {
			t.Errorf("created dir %s still present", d)
		}
	}
}

func TestJournalUndoSkipsMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "kept", "a.png")
	if err := os.MkdirAll(filepath.Dir(present), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeTestPNG(t, present)

	j := &Journal{
		Moves: []Move{
			{From: filepath.Join(dir, "a.png"), To: present},
			{From: filepath.Join(dir, "b.png"), To: filepath.Join(dir, "kept", "gone.png")},
		},
	}

	if restored := j.Undo(); restored != 1 {
		t.Errorf("Undo() = %d, want 1 (missing file skipped)", restored)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.png")); err != nil {
		t.Errorf("present file not restored: %v", err)
	}
}

func TestJournalUndoKeepsNonEmptyDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	created := filepath.Join(dir, "cat")
	if err := os.MkdirAll(created, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	moved := filepath.Join(created, "a.png")
	writeTestPNG(t, moved)
	// A stranger file the run did not move.
	writeTestPNG(t, filepath.Join(created, "unrelated.png"))

	j := &Journal{
		Moves:       []Move{{From: filepath.Join(dir, "a.png"), To: moved}},
		CreatedDirs: []string{created},
	}

	if restored := j.Undo(); restored != 1 {
		t.Errorf("Undo() = %d, want 1", restored)
	}
	if _, err := os.Stat(created); err != nil {
		t.Errorf("non-empty created dir was removed: %v", err)
	}
}

func TestJournalUndoRecreatesSourceDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	moved := filepath.Join(dir, "cat", "a.png")
	if err := os.MkdirAll(filepath.Dir(moved), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeTestPNG(t, moved)

	// Source directory vanished after the run.
	origin := filepath.Join(dir, "was-removed", "a.png")
	j := &Journal{Moves: []Move{{From: origin, To: moved}}}

	if restored := j.Undo(); restored != 1 {
		t.Errorf("Undo() = %d, want 1", restored)
	}
	if _, err := os.Stat(origin); err != nil {
		t.Errorf("file not restored into recreated dir: %v", err)
	}
}
