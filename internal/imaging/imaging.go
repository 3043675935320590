package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strings"

	_ "image/gif"
)

// JPEGQuality is the fixed quality used for all JPEG uploads and conversions.
const JPEGQuality = 85

// ErrInvalidInput is returned when input bytes cannot be interpreted as an
// image, either directly or after base64 decoding.
var ErrInvalidInput = errors.New("invalid image input")

// ErrUnsupportedFormat is returned when a caller requests an output format
// the layer does not produce (e.g. webp).
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Encoded is an image re-encoded for provider upload.
type Encoded struct {
	Data     []byte
	Mime     string // "image/png" or "image/jpeg"
	Format   string // "png" or "jpg"
	Filename string // suggested upload filename
}

// ToRawBinary normalizes an image given as raw bytes, base64, or a data URI
// into raw bytes. Decoding happens once at the capability boundary; adapters
// only ever see raw bytes.
func ToRawBinary(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, ErrInvalidInput
	}

	s := string(input)
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, "base64,")
		if idx < 0 {
			return nil, fmt.Errorf("%w: data URI without base64 payload", ErrInvalidInput)
		}
		decoded, err := base64.StdEncoding.DecodeString(s[idx+len("base64,"):])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return decoded, nil
	}

	// Raw image bytes pass through untouched.
	if looksLikeImage(input) {
		return input, nil
	}

	// Otherwise assume bare base64.
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !looksLikeImage(decoded) {
		return nil, ErrInvalidInput
	}
	return decoded, nil
}

// IsImage reports whether b starts with a known image magic number
// (PNG, JPEG, or GIF). Used to tell binary image responses apart from
// JSON error envelopes.
func IsImage(b []byte) bool {
	return looksLikeImage(b)
}

func looksLikeImage(b []byte) bool {
	switch {
	case len(b) > 8 && bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")):
		return true
	case len(b) > 3 && bytes.HasPrefix(b, []byte("\xff\xd8\xff")):
		return true
	case len(b) > 6 && (bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a"))):
		return true
	}
	return false
}

// HasAlpha reports whether img contains at least one non-opaque pixel.
func HasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}

// EncodeForUpload decodes input (raw, base64, or data URI) and re-encodes it
// per the upload policy: PNG when the image has an alpha channel, otherwise
// JPEG at quality 85 to reduce payload size. WebP is never produced.
// forcePNG overrides the policy for parts that must preserve transparency
// (e.g. edit masks).
func EncodeForUpload(input []byte, forcePNG bool) (*Encoded, error) {
	raw, err := ToRawBinary(input)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if forcePNG || HasAlpha(img) {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("png encode: %w", err)
		}
		return &Encoded{Data: buf.Bytes(), Mime: "image/png", Format: "png", Filename: "image.png"}, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return &Encoded{Data: buf.Bytes(), Mime: "image/jpeg", Format: "jpg", Filename: "image.jpg"}, nil
}

// ConvertFromPNG converts provider PNG output into the requested format.
// "png" passes through untouched; "jpg"/"jpeg" flattens any alpha onto a
// white background before encoding at quality 85. Other formats (including
// webp) return [ErrUnsupportedFormat].
func ConvertFromPNG(pngData []byte, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "png":
		return pngData, nil
	case "jpg", "jpeg":
		img, err := png.Decode(bytes.NewReader(pngData))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		flat := image.NewRGBA(img.Bounds())
		draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("jpeg encode: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
