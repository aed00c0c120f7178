package vision

import (
	"bytes"
	"image"

	// Registered decoders for the supported raster formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"imgsheet/internal/common"
)

// Decode parses raw image bytes into a pixel grid. The returned string is the
// detected format name ("jpeg", "png", ...).
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", common.DecodeErrorf("%v", err)
	}
	return img, format, nil
}
