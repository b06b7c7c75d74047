package promptsort

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxFileBytes caps how much of an image file OpenImage reads.
const DefaultMaxFileBytes = 64 << 20 // 64MB

// ImageFile is a single opened image: raw bytes, decoded pixels and the
// container-level metadata the extractors work from.
type ImageFile struct {
	Path     string
	Format   string            // "png", "jpeg", "webp", "tiff", "gif", or "" when unknown
	Data     []byte            // raw file bytes
	Pixels   image.Image       // nil when pixel decode fails
	HasAlpha bool              // pixel grid carries a usable alpha channel
	Info     map[string]string // PNG textual chunks (tEXt/zTXt/iTXt)
}

// OpenImage reads and decodes the image at path. The read is capped at
// DefaultMaxFileBytes. Only I/O failures return an error; undecodable
// content still yields an ImageFile so metadata extraction can proceed.
func OpenImage(path string) (*ImageFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, DefaultMaxFileBytes))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	img := DecodeImage(data)
	img.Path = path
	return img, nil
}

// DecodeImage assembles an ImageFile from raw bytes. It never fails: an
// unrecognized or corrupt payload produces an ImageFile with empty Format,
// nil Pixels and no Info.
func DecodeImage(data []byte) *ImageFile {
	f := &ImageFile{
		Data:   data,
		Format: sniffFormat(data),
	}

	if f.Format == "png" {
		f.Info = pngTextChunks(data)
	}

	m, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Debug("promptsort: pixel decode failed", "format", f.Format, "error", err.Error())
		return f
	}
	f.Pixels = m
	f.HasAlpha = hasAlphaChannel(m)
	if f.Format == "" {
		f.Format = format
	}
	return f
}

// sniffFormat identifies the container by magic bytes.
func sniffFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return "png"
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpeg"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "tiff"
	case bytes.HasPrefix(data, []byte("GIF8")):
		return "gif"
	default:
		return ""
	}
}

// hasAlphaChannel reports whether m carries usable alpha. The color model
// alone over-reports: truecolor PNGs decode to *image.RGBA with every
// pixel opaque, and lossless webp always decodes to *image.NRGBA, so
// fully opaque images count as RGB.
func hasAlphaChannel(m image.Image) bool {
	switch m.ColorModel() {
	case color.NRGBAModel, color.NRGBA64Model, color.RGBAModel, color.RGBA64Model, color.NYCbCrAModel:
	default:
		return false
	}
	if o, ok := m.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}
