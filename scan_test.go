package promptsort

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestIsImagePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{path: "a.png", want: true},
		{path: "b.jpg", want: true},
		{path: "c.jpeg", want: true},
		{path: "d.webp", want: true},
		{path: "UPPER.PNG", want: true},
		{path: "mixed.JpEg", want: true},
		{path: "e.gif", want: false},
		{path: "f.txt", want: false},
		{path: "noext", want: false},
		{path: "dir/archive.png.zip", want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			if got := IsImagePath(tc.path); got != tc.want {
				t.Errorf("IsImagePath(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestScanImages(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"))
	writeTestPNG(t, filepath.Join(dir, "b.jpg"))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeTestPNG(t, filepath.Join(dir, "sub", "nested.png"))

	got := ScanImages(dir)
	sort.Strings(got)

	want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.jpg")}
	if len(got) != len(want) {
		t.Fatalf("ScanImages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScanImages()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanImagesMissingDir(t *testing.T) {
	t.Parallel()

	if got := ScanImages(filepath.Join(t.TempDir(), "absent")); got != nil {
		t.Errorf("ScanImages() on a missing dir = %v, want nil", got)
	}
}

func TestScanImagesRecursive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	deep := filepath.Join(dir, "one", "two")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeTestPNG(t, filepath.Join(dir, "top.png"))
	writeTestPNG(t, filepath.Join(deep, "bottom.webp"))
	if err := os.WriteFile(filepath.Join(deep, "skip.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got := ScanImagesRecursive(dir)
	sort.Strings(got)

	want := []string{filepath.Join(dir, "one", "two", "bottom.webp"), filepath.Join(dir, "top.png")}
	if len(got) != len(want) {
		t.Fatalf("ScanImagesRecursive() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScanImagesRecursive()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
