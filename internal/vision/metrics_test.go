package vision

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"imgsheet/internal/common"
)

func createTestImage(width, height int, fill color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fill)
		}
	}
	return img
}

func createGradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			intensity := uint8((x + y) * 255 / (width + height))
			img.Set(x, y, color.RGBA{intensity, intensity, intensity, 255})
		}
	}
	return img
}

func TestProps(t *testing.T) {
	img := createTestImage(640, 480, color.RGBA{10, 20, 30, 255})

	props, err := Props(img, 1536)
	if err != nil {
		t.Fatalf("Props failed: %v", err)
	}
	if props.Width != 640 || props.Height != 480 {
		t.Errorf("Expected 640x480, got %dx%d", props.Width, props.Height)
	}
	if props.Channels != 3 {
		t.Errorf("Expected 3 channels for RGBA image, got %d", props.Channels)
	}
	if props.TotalPixels != 640*480 {
		t.Errorf("Expected %d total pixels, got %d", 640*480, props.TotalPixels)
	}
	if props.AspectRatio != 1.33 {
		t.Errorf("Expected aspect ratio 1.33, got %v", props.AspectRatio)
	}
	if props.FileSizeKB != 1.5 {
		t.Errorf("Expected 1.5 KB, got %v", props.FileSizeKB)
	}
}

func TestProps_GrayscaleChannels(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 10, 10))
	props, err := Props(gray, 100)
	if err != nil {
		t.Fatalf("Props failed: %v", err)
	}
	if props.Channels != 1 {
		t.Errorf("Expected 1 channel for gray image, got %d", props.Channels)
	}
}

func TestProps_ZeroHeight(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 0))
	_, err := Props(img, 100)
	if err == nil {
		t.Fatal("Expected error for zero-height image")
	}
	if !errors.Is(err, common.ErrDecode) {
		t.Errorf("Expected ErrDecode, got %v", err)
	}
}

func TestBrightness_UniformGray(t *testing.T) {
	img := createTestImage(50, 50, color.RGBA{128, 128, 128, 255})

	got := Brightness(img)
	if math.Abs(got-128) > 0.5 {
		t.Errorf("Expected brightness ~128, got %v", got)
	}
}

func TestBrightness_Extremes(t *testing.T) {
	black := createTestImage(20, 20, color.RGBA{0, 0, 0, 255})
	if got := Brightness(black); got != 0 {
		t.Errorf("Expected brightness 0 for black image, got %v", got)
	}
	white := createTestImage(20, 20, color.RGBA{255, 255, 255, 255})
	if got := Brightness(white); math.Abs(got-255) > 0.5 {
		t.Errorf("Expected brightness ~255 for white image, got %v", got)
	}
}

func TestBrightness_Range(t *testing.T) {
	img := createGradientImage(100, 100)
	got := Brightness(img)
	if got < 0 || got > 255 {
		t.Errorf("Brightness %v out of [0, 255]", got)
	}
}

func TestGrayscale_LumaWeights(t *testing.T) {
	// Pure green: luma = 0.587 * 255 ~ 150.
	img := createTestImage(10, 10, color.RGBA{0, 255, 0, 255})
	gray := Grayscale(img)
	got := float64(gray.GrayAt(5, 5).Y)
	if math.Abs(got-150) > 1 {
		t.Errorf("Expected green luma ~150, got %v", got)
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.005, 1.0},
		{1.335, 1.34},
		{2.0, 2.0},
		{0.125, 0.13},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
