package vision

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"

	"imgsheet/internal/common"
)

func TestDecode_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(8, 4, color.RGBA{1, 2, 3, 255})); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, format, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if format != "png" {
		t.Errorf("Expected format png, got %q", format)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("Expected 8x4, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDecode_Garbage(t *testing.T) {
	_, _, err := Decode([]byte("definitely not an image"))
	if err == nil {
		t.Fatal("Expected error for garbage input")
	}
	if !errors.Is(err, common.ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}
