package promptsort

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// IsImagePath reports whether path has a supported image extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ScanImages lists the image files directly inside dir, not descending
// into subdirectories. Unreadable directories yield an empty list.
func ScanImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("promptsort: scan failed", "dir", dir, "error", err.Error())
		return nil
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsImagePath(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files
}

// ScanImagesRecursive walks the whole tree under dir and lists every image
// file. Entries that cannot be read are skipped.
func ScanImagesRecursive(dir string) []string {
	var files []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("promptsort: walk skipped entry", "path", path, "error", err.Error())
			return nil
		}
		if !d.IsDir() && IsImagePath(path) {
			files = append(files, path)
		}
		return nil
	})
	return files
}
