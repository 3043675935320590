package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, alpha bool) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	if alpha {
		img.SetNRGBA(1, 1, color.NRGBA{A: 0})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal("failed to encode PNG: " + err.Error())
	}
	return buf.Bytes()
}

func TestToRawBinary(t *testing.T) {
	raw := encodePNG(t, false)

	got, err := ToRawBinary(raw)
	if err != nil {
		t.Fatalf("raw bytes: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("raw bytes must pass through untouched")
	}

	b64 := []byte(base64.StdEncoding.EncodeToString(raw))
	got, err = ToRawBinary(b64)
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("base64 input must decode to the original bytes")
	}

	dataURI := []byte("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw))
	got, err = ToRawBinary(dataURI)
	if err != nil {
		t.Fatalf("data URI: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Error("data URI input must decode to the original bytes")
	}
}

func TestToRawBinaryInvalid(t *testing.T) {
	for _, input := range [][]byte{nil, []byte("not an image"), []byte("data:image/png;hex,00")} {
		if _, err := ToRawBinary(input); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ToRawBinary(%q) expected ErrInvalidInput, got %v", input, err)
		}
	}
}

func TestIsImage(t *testing.T) {
	if !IsImage(encodePNG(t, false)) {
		t.Error("PNG not recognized")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
		t.Fatal(err)
	}
	if !IsImage(buf.Bytes()) {
		t.Error("JPEG not recognized")
	}
	if IsImage([]byte(`{"error":"nope"}`)) {
		t.Error("JSON misrecognized as image")
	}
}

func TestEncodeForUploadAlphaPolicy(t *testing.T) {
	// Transparent input stays PNG.
	encoded, err := EncodeForUpload(encodePNG(t, true), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded.Format != "png" || encoded.Mime != "image/png" || encoded.Filename != "image.png" {
		t.Errorf("transparent image must upload as PNG, got %+v", encoded)
	}

	// Opaque input becomes JPEG.
	encoded, err = EncodeForUpload(encodePNG(t, false), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded.Format != "jpg" || encoded.Mime != "image/jpeg" || encoded.Filename != "image.jpg" {
		t.Errorf("opaque image must upload as JPEG, got %+v", encoded)
	}
	if !bytes.HasPrefix(encoded.Data, []byte{0xFF, 0xD8}) {
		t.Error("expected JPEG payload")
	}

	// forcePNG overrides the policy for opaque input.
	encoded, err = EncodeForUpload(encodePNG(t, false), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded.Format != "png" {
		t.Errorf("forcePNG must produce PNG, got %s", encoded.Format)
	}
}

func TestEncodeForUploadInvalidInput(t *testing.T) {
	if _, err := EncodeForUpload([]byte("garbage"), false); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestConvertFromPNG(t *testing.T) {
	// White canvas with one fully transparent pixel, so the flattened
	// JPEG should come out uniformly white.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	img.SetNRGBA(1, 1, color.NRGBA{A: 0})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	pngData := buf.Bytes()

	// PNG passes through untouched.
	out, err := ConvertFromPNG(pngData, "png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, pngData) {
		t.Error("png output must pass through")
	}

	// JPEG conversion flattens alpha.
	out, err = ConvertFromPNG(pngData, "jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte{0xFF, 0xD8}) {
		t.Error("expected JPEG payload")
	}
	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal("converted JPEG must decode: " + err.Error())
	}
	// The fully transparent pixel flattens onto white.
	r, g, b, _ := decoded.At(1, 1).RGBA()
	if r < 0xe000 || g < 0xe000 || b < 0xe000 {
		t.Errorf("transparent pixel must flatten to white, got rgb(%d, %d, %d)", r>>8, g>>8, b>>8)
	}
}

func TestConvertFromPNGUnsupportedFormat(t *testing.T) {
	if _, err := ConvertFromPNG(encodePNG(t, false), "webp"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for webp, got %v", err)
	}
}

func TestHasAlpha(t *testing.T) {
	opaque := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			opaque.SetNRGBA(x, y, color.NRGBA{R: 1, A: 255})
		}
	}
	if HasAlpha(opaque) {
		t.Error("fully opaque image misreported")
	}

	transparent := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	if !HasAlpha(transparent) {
		t.Error("transparent image not detected")
	}
}
