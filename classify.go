package promptsort

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Level is one step of the classification cascade: images whose prompt
// contains one of Keywords move into that keyword's folder.
type Level struct {
	Enabled  bool
	Keywords []string
}

// Plan describes one classification run over a source directory.
type Plan struct {
	SourceDir    string
	Levels       []Level // cascade: level N scans the folders level N-1 created
	RenameImages bool    // rename moved files to <keyword>_NNNNNN<ext>

	// FullTracking walks the whole tree once with TrackingKeywords instead
	// of running the level cascade.
	FullTracking     bool
	TrackingKeywords []string

	// CustomDest moves every match here instead of per-keyword subfolders.
	CustomDest string
}

// ParseKeywords splits a "cat|dog|tree" keyword field into clean keywords.
func ParseKeywords(raw string) []string {
	var kws []string
	for _, k := range strings.Split(raw, "|") {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	return kws
}

// Validate reports the first problem that would make the plan a no-op.
func (p *Plan) Validate() error {
	if p.SourceDir == "" {
		return errors.New("source directory is empty")
	}
	st, err := os.Stat(p.SourceDir)
	if err != nil || !st.IsDir() {
		return fmt.Errorf("source directory %q is not a directory", p.SourceDir)
	}
	if p.FullTracking {
		if len(p.TrackingKeywords) == 0 {
			return errors.New("full tracking needs at least one keyword")
		}
		return nil
	}
	for _, lv := range p.Levels {
		if lv.Enabled && len(lv.Keywords) > 0 {
			return nil
		}
	}
	return errors.New("no enabled level has keywords")
}

// Classify runs plan and returns the journal of everything it moved, for
// undo. Individual image failures are logged and skipped. Cancel via ctx:
// the run stops between images and the journal still covers the moves
// already done; the context error is returned alongside it.
func (cfg *Config) Classify(ctx context.Context, plan Plan) (*Journal, error) {
	cfg.defaults()
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	run := &classifyRun{
		cfg:     cfg,
		plan:    plan,
		journal: &Journal{},
	}
	if cfg.SkipDuplicates {
		run.dedup = &dedupFilter{}
	}

	if plan.FullTracking {
		files := ScanImagesRecursive(plan.SourceDir)
		slog.Debug("promptsort: full tracking scan", "dir", plan.SourceDir, "images", len(files))
		run.processBatch(ctx, files, plan.TrackingKeywords, 0)
		return run.journal, ctx.Err()
	}

	dirs := []string{plan.SourceDir}
	for i, lv := range plan.Levels {
		if ctx.Err() != nil {
			break
		}
		if !lv.Enabled || len(lv.Keywords) == 0 {
			continue
		}
		var files []string
		for _, dir := range dirs {
			files = append(files, ScanImages(dir)...)
		}
		slog.Debug("promptsort: level scan", "level", i+1, "dirs", len(dirs), "images", len(files))
		next := run.processBatch(ctx, files, lv.Keywords, i+1)
		if len(next) == 0 {
			break
		}
		dirs = sortedKeys(next)
	}
	return run.journal, ctx.Err()
}

// classifyRun carries the shared state of one Classify call.
type classifyRun struct {
	cfg     *Config
	plan    Plan
	journal *Journal
	dedup   *dedupFilter // nil unless SkipDuplicates

	mu       sync.Mutex // guards journal, counters, destDirs, done/total
	counters map[string]int
	destDirs map[string]bool
	done     int
	total    int
}

// processBatch extracts prompts and moves matches for one batch of files.
// Extraction runs under a worker semaphore; all shared state is
// mutex-guarded. Returns the destination directories used, which seed the
// next cascade level. Rename counters restart per batch.
func (run *classifyRun) processBatch(ctx context.Context, files []string, keywords []string, level int) map[string]bool {
	run.mu.Lock()
	run.counters = make(map[string]int)
	run.destDirs = make(map[string]bool)
	run.done = 0
	run.total = len(files)
	run.mu.Unlock()

	sem := make(chan struct{}, run.cfg.MaxWorkers)
	var wg sync.WaitGroup

	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			run.processOne(ctx, path, keywords, level)
		}(path)
	}
	wg.Wait()

	return run.destDirs
}

// processOne classifies a single image and moves it on a keyword match.
// Recovers from panics to protect the worker pool.
func (run *classifyRun) processOne(ctx context.Context, path string, keywords []string, level int) {
	defer func() {
		if r := recover(); r != nil {
			if run.cfg.OnPanic != nil {
				run.cfg.OnPanic("classify", r)
			}
		}
	}()
	defer run.progress()

	if ctx.Err() != nil {
		return
	}

	prompt := run.cfg.Extract(path)
	if prompt == "" {
		slog.Debug("promptsort: no prompt data", "path", path)
		return
	}

	keyword, ok := matchKeyword(prompt, keywords)
	if !ok {
		slog.Debug("promptsort: no keyword match", "path", path)
		return
	}

	if run.dedup != nil && run.dedup.isDuplicatePath(path) {
		slog.Debug("promptsort: duplicate skipped", "path", path)
		return
	}

	event, err := run.move(path, keyword, level)
	if err != nil {
		slog.Warn("promptsort: move failed", "path", path, "error", err.Error())
		return
	}
	if run.cfg.OnMove != nil {
		run.cfg.OnMove(event)
	}
}

// matchKeyword returns the first keyword contained in prompt,
// case-insensitive, in declaration order.
func matchKeyword(prompt string, keywords []string) (string, bool) {
	lower := strings.ToLower(prompt)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}

// move relocates one matched image and journals everything it changed.
func (run *classifyRun) move(path, keyword string, level int) (MoveEvent, error) {
	destDir := run.plan.CustomDest
	if destDir == "" {
		destDir = filepath.Join(filepath.Dir(path), keyword)
	}

	run.mu.Lock()
	defer run.mu.Unlock()

	if _, err := os.Stat(destDir); os.IsNotExist(err) {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return MoveEvent{}, err
		}
		run.journal.CreatedDirs = append(run.journal.CreatedDirs, destDir)
	}

	name := filepath.Base(path)
	if run.plan.RenameImages {
		run.counters[keyword]++
		name = fmt.Sprintf("%s_%06d%s", keyword, run.counters[keyword], filepath.Ext(path))
	}
	dest := uniquePath(filepath.Join(destDir, name))

	if err := moveFile(path, dest); err != nil {
		return MoveEvent{}, err
	}

	run.journal.Moves = append(run.journal.Moves, Move{From: path, To: dest, Keyword: keyword})
	run.destDirs[destDir] = true

	return MoveEvent{Source: path, Dest: dest, Keyword: keyword, Level: level}, nil
}

// uniquePath appends a numeric suffix until path no longer collides with
// an existing file.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		p := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return p
		}
	}
}

// moveFile renames src to dest, falling back to copy+remove when rename
// fails (cross-device moves). A failed copy removes the partial
// destination and leaves src in place.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return err
	}
	return os.Remove(src)
}

func (run *classifyRun) progress() {
	run.mu.Lock()
	run.done++
	done, total := run.done, run.total
	run.mu.Unlock()
	if run.cfg.OnProgress != nil {
		run.cfg.OnProgress(done, total)
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
