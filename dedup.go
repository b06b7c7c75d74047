package promptsort

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"
)

// dedupThreshold is the maximum Hamming distance between two dHash values
// below which images are considered perceptually identical.
const dedupThreshold = 10

// dedupFilter is a per-run deduplication filter based on perceptual hashing.
// It is safe for concurrent use.
type dedupFilter struct {
	mu     sync.Mutex
	hashes []*goimagehash.ImageHash
}

// isDuplicate returns true if img is perceptually identical to a previously seen
// image. If hashing fails for any reason, the image is accepted (graceful degradation).
// When the image is accepted as unique, its hash is stored for future comparisons.
func (d *dedupFilter) isDuplicate(img image.Image) bool {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		// Graceful degradation: unable to hash, accept the image.
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, h := range d.hashes {
		dist, err := hash.Distance(h)
		if err == nil && dist < dedupThreshold {
			return true
		}
	}

	d.hashes = append(d.hashes, hash)
	return false
}

// isDuplicatePath decodes the image at path and checks it against the
// filter. Unreadable or undecodable files are accepted as unique.
func (d *dedupFilter) isDuplicatePath(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return false
	}
	return d.isDuplicate(img)
}
