package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"imgsheet/internal/common"
)

// DominantColorCount is the number of clusters requested per image.
const DominantColorCount = 3

// Extractor composes the image primitives and OCR into one feature record
// per image.
type Extractor struct {
	engine Engine
	text   TextReader
	logger *slog.Logger
}

func NewExtractor(engine Engine, text TextReader, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, text: text, logger: logger}
}

// Extract produces the feature record for the image at path. Decode and
// feature failures abort the whole record (no partial record is returned);
// OCR failure degrades to a diagnostic text value so one unreadable text
// region never drops an otherwise valid image.
func (e *Extractor) Extract(ctx context.Context, path string) (*Record, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.ExtractionError(common.DecodeErrorf("read %s: %v", path, err))
	}
	img, err := e.engine.Load(data)
	if err != nil {
		return nil, common.ExtractionError(fmt.Errorf("load %s: %w", path, err))
	}

	rec := NewRecord()
	rec.Set(KeyImagePath, path)
	rec.Set(KeyExtractedText, e.readText(ctx, path))

	props, err := e.engine.Properties(img, int64(len(data)))
	if err != nil {
		return nil, common.ExtractionError(fmt.Errorf("properties %s: %w", path, err))
	}
	rec.Set(KeyWidth, props.Width)
	rec.Set(KeyHeight, props.Height)
	rec.Set(KeyChannels, props.Channels)
	rec.Set(KeyFileSizeKB, props.FileSizeKB)
	rec.Set(KeyAspectRatio, props.AspectRatio)
	rec.Set(KeyTotalPixels, props.TotalPixels)

	rec.Set(KeyAvgBrightness, e.engine.Brightness(img))
	rec.Set(KeyEdgeCount, e.engine.EdgeCount(img))

	colors, err := e.engine.DominantColors(img, DominantColorCount)
	if err != nil {
		return nil, common.ExtractionError(fmt.Errorf("dominant colors %s: %w", path, err))
	}
	for i, c := range colors {
		rec.Set(fmt.Sprintf("dominant_color_%d", i+1), fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B))
	}

	e.logger.Debug("extract.ok",
		"path", path,
		"features", rec.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

func (e *Extractor) readText(ctx context.Context, path string) string {
	txt, err := e.text.ReadText(ctx, path)
	if err != nil {
		// Deliberate policy: OCR issues never abort the record.
		return fmt.Sprintf("Error extracting text: %v", err)
	}
	return txt
}
