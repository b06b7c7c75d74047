package promptsort

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"strings"
	"unicode/utf8"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// pngTextChunks walks the chunk list of a PNG stream and returns its
// textual metadata (tEXt, zTXt and iTXt chunks) as a key/value map.
// A malformed or truncated chunk ends the walk; whatever was collected
// up to that point is returned. Never errors.
func pngTextChunks(data []byte) map[string]string {
	if !bytes.HasPrefix(data, pngMagic) {
		return nil
	}

	info := make(map[string]string)
	rest := data[len(pngMagic):]
	for len(rest) >= 8 {
		n := int64(binary.BigEndian.Uint32(rest[:4]))
		typ := string(rest[4:8])
		if int64(len(rest))-12 < n {
			break
		}
		body := rest[8 : 8+n]

		var key, val string
		var ok bool
		switch typ {
		case "tEXt":
			key, val, ok = parseTextChunk(body)
		case "zTXt":
			key, val, ok = parseCompressedTextChunk(body)
		case "iTXt":
			key, val, ok = parseInternationalTextChunk(body)
		case "IEND":
			if len(info) == 0 {
				return nil
			}
			return info
		}
		if ok && key != "" {
			info[key] = val
		}

		rest = rest[12+n:] // length + type + data + CRC
	}

	if len(info) == 0 {
		return nil
	}
	return info
}

// parseTextChunk splits a tEXt body: keyword, NUL, text.
func parseTextChunk(body []byte) (string, string, bool) {
	i := bytes.IndexByte(body, 0)
	if i <= 0 {
		return "", "", false
	}
	return chunkString(body[:i]), chunkString(body[i+1:]), true
}

// parseCompressedTextChunk splits a zTXt body: keyword, NUL, compression
// method (only 0 = zlib is defined), compressed text.
func parseCompressedTextChunk(body []byte) (string, string, bool) {
	i := bytes.IndexByte(body, 0)
	if i <= 0 || len(body) < i+2 || body[i+1] != 0 {
		return "", "", false
	}
	text, ok := inflateChunk(body[i+2:])
	if !ok {
		return "", "", false
	}
	return chunkString(body[:i]), text, true
}

// parseInternationalTextChunk splits an iTXt body: keyword, NUL,
// compression flag, compression method, language tag, NUL, translated
// keyword, NUL, text (zlib-compressed when the flag is set).
func parseInternationalTextChunk(body []byte) (string, string, bool) {
	i := bytes.IndexByte(body, 0)
	if i <= 0 || len(body) < i+3 {
		return "", "", false
	}
	compressed := body[i+1] != 0

	rest := body[i+3:]
	j := bytes.IndexByte(rest, 0)
	if j < 0 {
		return "", "", false
	}
	rest = rest[j+1:]
	k := bytes.IndexByte(rest, 0)
	if k < 0 {
		return "", "", false
	}
	text := rest[k+1:]

	if compressed {
		s, ok := inflateChunk(text)
		if !ok {
			return "", "", false
		}
		return chunkString(body[:i]), s, true
	}
	return chunkString(body[:i]), chunkString(text), true
}

func inflateChunk(data []byte) (string, bool) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return "", false
	}
	return chunkString(out), true
}

// chunkString decodes chunk bytes as UTF-8 when valid. The PNG spec says
// tEXt/zTXt carry Latin-1, but generation tools write UTF-8 into them
// anyway; invalid UTF-8 falls back to Latin-1 byte promotion.
func chunkString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
