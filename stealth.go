package promptsort

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/icza/bitio"
)

// Signatures written by stealth-pnginfo embedders. Alpha-channel payloads
// announce themselves with the png* pair, RGB payloads with the rgb* pair;
// the *comp variants carry gzip-compressed text.
const (
	sigAlphaPlain = "stealth_pnginfo"
	sigAlphaComp  = "stealth_pngcomp"
	sigRGBPlain   = "stealth_rgbinfo"
	sigRGBComp    = "stealth_rgbcomp"
)

const signatureBits = 120 // 15 signature bytes

// stealthState tracks which section of the embedded stream the scan is in.
type stealthState int

const (
	stateSignature stealthState = iota
	stateLength
	statePayload
)

// ReadStealth scans the pixel LSBs of f for a stealth-pnginfo payload and
// returns the embedded text. Returns ("", false) when no payload is
// present or it is unreadable. Graceful degradation: never returns an error.
func ReadStealth(f *ImageFile) (string, bool) {
	if f == nil || f.Pixels == nil {
		return "", false
	}
	return readStealthPixels(f.Pixels, f.HasAlpha)
}

// readStealthPixels walks the image column by column (x outer, y inner),
// the order embedders write in. Images with alpha carry one bit per pixel
// in the alpha LSB; opaque images carry three, one per RGB channel.
func readStealthPixels(m image.Image, hasAlpha bool) (string, bool) {
	var (
		state      = stateSignature
		compressed bool
		payloadLen int
		complete   bool
		buf        []uint8
	)

	bounds := m.Bounds()
scan:
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			px := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			if hasAlpha {
				buf = append(buf, px.A&1)
			} else {
				buf = append(buf, px.R&1, px.G&1, px.B&1)
			}

			switch state {
			case stateSignature:
				if len(buf) < signatureBits {
					continue
				}
				sig := string(packBits(buf))
				switch {
				case hasAlpha && sig == sigAlphaPlain, !hasAlpha && sig == sigRGBPlain:
					compressed = false
				case hasAlpha && sig == sigAlphaComp, !hasAlpha && sig == sigRGBComp:
					compressed = true
				default:
					break scan
				}
				buf = buf[:0]
				state = stateLength

			case stateLength:
				if hasAlpha {
					if len(buf) < 32 {
						continue
					}
					payloadLen = bitsToInt(buf)
					buf = buf[:0]
				} else {
					if len(buf) < 33 {
						continue
					}
					// The embedder writes length and payload as one unbroken
					// bit stream, so the 33rd bit collected here is already
					// the first payload bit. Carry it over.
					carry := buf[32]
					payloadLen = bitsToInt(buf[:32])
					buf = append(buf[:0], carry)
				}
				if payloadLen <= 0 {
					break scan
				}
				state = statePayload

			case statePayload:
				if len(buf) < payloadLen {
					continue
				}
				// RGB mode overshoots by up to two bits per pixel; trim to
				// the declared length. Alpha mode lands exactly.
				buf = buf[:payloadLen]
				complete = true
				break scan
			}
		}
	}

	if !complete {
		return "", false
	}
	return decodePayload(packBits(buf), compressed)
}

// decodePayload turns assembled payload bytes into text. Compressed
// payloads must gunzip and decode as strict UTF-8; plain payloads drop
// invalid byte runs.
func decodePayload(data []byte, compressed bool) (string, bool) {
	if !compressed {
		return strings.ToValidUTF8(string(data), ""), true
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", false
	}
	out, err := io.ReadAll(zr)
	if err != nil || !utf8.Valid(out) {
		return "", false
	}
	return string(out), true
}

// packBits assembles bits MSB-first into bytes. A trailing group shorter
// than eight bits stays right-aligned in its byte.
func packBits(bits []uint8) []byte {
	out := make([]byte, 0, (len(bits)+7)/8)
	for i := 0; i < len(bits); i += 8 {
		end := i + 8
		if end > len(bits) {
			end = len(bits)
		}
		var b byte
		for _, bit := range bits[i:end] {
			b = b<<1 | bit
		}
		out = append(out, b)
	}
	return out
}

// bitsToInt reads bits as one big-endian unsigned number.
func bitsToInt(bits []uint8) int {
	n := 0
	for _, b := range bits {
		n = n<<1 | int(b)
	}
	return n
}

// EncodeStealth embeds text into a copy of src and returns the new image.
// Sources with a usable alpha channel take the payload in alpha LSBs and
// come back as *image.NRGBA; opaque sources spread it across the RGB LSBs
// of an *image.RGBA. Set compress to gzip the payload. Errors when the
// pixel grid cannot hold the full stream.
func EncodeStealth(src image.Image, text string, compress bool) (image.Image, error) {
	if src == nil {
		return nil, errors.New("nil source image")
	}

	hasAlpha := hasAlphaChannel(src)
	stream, err := stealthStream(text, compress, hasAlpha)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	capacity := bounds.Dx() * bounds.Dy()
	if !hasAlpha {
		capacity *= 3
	}
	total := len(stream) * 8
	if total > capacity {
		return nil, fmt.Errorf("image holds %d LSB bits, stream needs %d", capacity, total)
	}

	bits := bitio.NewReader(bytes.NewReader(stream))
	if hasAlpha {
		return encodeAlpha(src, bits, total), nil
	}
	return encodeRGB(src, bits, total), nil
}

// stealthStream builds signature + 32-bit big-endian bit length + payload.
func stealthStream(text string, compress, hasAlpha bool) ([]byte, error) {
	payload := []byte(text)
	sig := sigAlphaPlain
	if !hasAlpha {
		sig = sigRGBPlain
	}
	if compress {
		var zbuf bytes.Buffer
		zw := gzip.NewWriter(&zbuf)
		if _, err := zw.Write(payload); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		payload = zbuf.Bytes()
		if hasAlpha {
			sig = sigAlphaComp
		} else {
			sig = sigRGBComp
		}
	}

	var stream bytes.Buffer
	stream.WriteString(sig)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)*8))
	stream.Write(lenBuf[:])
	stream.Write(payload)
	return stream.Bytes(), nil
}

func encodeAlpha(src image.Image, bits *bitio.Reader, total int) image.Image {
	bounds := src.Bounds()
	out := image.NewNRGBA(bounds)
	written := 0
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			px := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			if written < total {
				px.A = px.A&^1 | bitValue(bits.TryReadBool())
				written++
			}
			out.SetNRGBA(x, y, px)
		}
	}
	return out
}

func encodeRGB(src image.Image, bits *bitio.Reader, total int) image.Image {
	bounds := src.Bounds()
	out := image.NewRGBA(bounds)
	written := 0
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			px := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			ch := [3]uint8{px.R, px.G, px.B}
			for i := range ch {
				if written < total {
					ch[i] = ch[i]&^1 | bitValue(bits.TryReadBool())
					written++
				}
			}
			out.SetRGBA(x, y, color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 0xFF})
		}
	}
	return out
}

func bitValue(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
