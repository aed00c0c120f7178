package extract

import (
	"context"
	"image"

	"imgsheet/internal/vision"
)

// Engine is the image-primitive port consumed by the Extractor. The default
// implementation is vision.Engine; tests substitute deterministic fakes.
type Engine interface {
	Load(data []byte) (image.Image, error)
	Properties(img image.Image, fileSize int64) (vision.Properties, error)
	Brightness(img image.Image) float64
	EdgeCount(img image.Image) int
	DominantColors(img image.Image, k int) ([]vision.RGB, error)
}

// TextReader is the OCR port: image file -> recognized text.
type TextReader interface {
	ReadText(ctx context.Context, path string) (string, error)
}
