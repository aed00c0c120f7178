package vision

import (
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"

	"imgsheet/internal/common"
)

// Properties are the per-image geometric features.
type Properties struct {
	Width       int
	Height      int
	Channels    int
	FileSizeKB  float64
	AspectRatio float64
	TotalPixels int
}

// Props computes the geometric properties of a decoded image. fileSize is the
// on-disk size in bytes. A zero-height grid is malformed input, not a
// divide-by-zero to paper over.
func Props(img image.Image, fileSize int64) (Properties, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if h == 0 {
		return Properties{}, common.DecodeErrorf("zero-height image")
	}
	return Properties{
		Width:       w,
		Height:      h,
		Channels:    channelCount(img),
		FileSizeKB:  Round2(float64(fileSize) / 1024),
		AspectRatio: Round2(float64(w) / float64(h)),
		TotalPixels: w * h,
	}, nil
}

func channelCount(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	default:
		return 3
	}
}

// Grayscale converts img to 8-bit luminance using BT.601 weights
// (0.299 R + 0.587 G + 0.114 B).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// 16-bit channels -> 8-bit luma
			lum := (299*float64(r) + 587*float64(g) + 114*float64(bl)) / 1000 / 257
			if lum > 255 {
				lum = 255
			}
			gray.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: uint8(lum + 0.5)})
		}
	}
	return gray
}

// Brightness returns the mean luminance of img rounded to 2 decimals,
// in [0, 255].
func Brightness(img image.Image) float64 {
	gray := Grayscale(img)
	if len(gray.Pix) == 0 {
		return 0
	}
	vals := make([]float64, len(gray.Pix))
	for i, p := range gray.Pix {
		vals[i] = float64(p)
	}
	return Round2(stat.Mean(vals, nil))
}

// Round2 rounds v to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
