package promptsort

import (
	"bytes"
	"strings"

	"github.com/bep/imagemeta"
)

// exifCommentTags are the EXIF slots generation tools write prompts into,
// in preference order.
var exifCommentTags = []string{
	"UserComment",
	"ImageDescription",
	"XPComment",
}

// wantedExifTags maps (source, tag-name) → true for every tag the
// extractor reads.
var wantedExifTags = map[imagemeta.Source]map[string]bool{
	imagemeta.EXIF: {
		"UserComment":      true,
		"ImageDescription": true,
		"XPComment":        true,
	},
}

// exifImageFormats maps sniffed container names to the decoder's format
// tags. imagemeta.Decode has no format auto-detection and errors on its
// zero ImageFormat, so the container must be named explicitly.
var exifImageFormats = map[string]imagemeta.ImageFormat{
	"png":  imagemeta.PNG,
	"jpeg": imagemeta.JPEG,
	"webp": imagemeta.WebP,
	"tiff": imagemeta.TIFF,
}

// ExtractExifComment parses EXIF metadata from raw image bytes and returns
// the first non-empty comment field, preferring UserComment over
// ImageDescription over XPComment. Returns "" when the data is empty, is
// not an EXIF-capable container, carries no EXIF, or cannot be parsed.
// Graceful degradation: never returns an error.
func ExtractExifComment(data []byte) string {
	format, ok := exifImageFormats[sniffFormat(data)]
	if !ok {
		return ""
	}

	found := make(map[string]string)

	err := imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: format,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if tags, ok := wantedExifTags[ti.Source]; ok {
				return tags[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			if s := tagText(ti.Value); s != "" {
				found[ti.Tag] = s
			}
			return nil
		},
	})
	if err != nil || len(found) == 0 {
		return ""
	}

	for _, tag := range exifCommentTags {
		if s := found[tag]; s != "" {
			return s
		}
	}
	return ""
}

// tagText extracts usable text from a decoded tag value. EXIF comments
// arrive as string, byte slice, or list values depending on the writer.
func tagText(v any) string {
	switch val := v.(type) {
	case string:
		return cleanTagText(val)
	case []byte:
		return cleanTagText(chunkString(val))
	case []string:
		if len(val) > 0 {
			return cleanTagText(val[0])
		}
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return cleanTagText(s)
			}
		}
	}
	return ""
}

// cleanTagText strips the NUL padding UTF-16 XP tags leave behind plus
// surrounding whitespace.
func cleanTagText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}
