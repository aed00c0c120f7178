// Package ocr recognizes text in raster images by shelling out to tesseract.
// Errors are reported normally here; the degrade-to-diagnostic-text policy
// lives in the extract layer.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string

	PSM int // e.g., 6 is good for a uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Reader runs OCR over image files.
type Reader struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewReader(cfg Config, logger *slog.Logger) *Reader {
	return newReader(cfg, execRunner{}, logger)
}

func newReader(cfg Config, runner Runner, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Reader{cfg: cfg, runner: runner, logger: logger}
}

// ReadText runs tesseract on path and returns the normalized recognized text.
func (r *Reader) ReadText(ctx context.Context, path string) (string, error) {
	start := time.Now()

	args := []string{path, "stdout", "-l", r.cfg.TesseractLang}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", r.cfg.PSM))
	}
	if r.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", r.cfg.OEM))
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}

	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		r.logger.Error("ocr.tesseract.failed",
			"path", path,
			"duration_ms", time.Since(start).Milliseconds(),
			"stderr", truncate(string(errb), 8<<10),
			"error", err,
		)
		return "", fmt.Errorf("tesseract: %w", err)
	}

	txt := Normalize(string(out))
	r.logger.Debug("ocr.tesseract.ok",
		"path", path,
		"bytes", len(txt),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return txt, nil
}

// reBoxNoise matches box-drawing characters and pipe runs that tesseract
// emits for table rules.
var reBoxNoise = regexp.MustCompile(`[|\x{2500}-\x{257F}]{2,}`)

// Normalize strips line noise and trailing whitespace from raw OCR output.
func Normalize(s string) string {
	s = reBoxNoise.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
