package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"imgsheet/internal/batch"
	"imgsheet/internal/catalog"
	"imgsheet/internal/common"
	"imgsheet/internal/export"
	"imgsheet/internal/extract"
	"imgsheet/internal/ocr"
	"imgsheet/internal/vision"
)

func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		images    = flag.String("image", "", "comma-separated image path(s); positional arguments work too")
		dir       = flag.String("dir", "", "directory to scan for images")
		out       = flag.String("out", "features.xlsx", "output XLSX file path")
		recursive = flag.Bool("recursive", false, "recurse into subdirectories (only with -dir)")
		summary   = flag.Bool("summary", false, "add a summary sheet (multi-image only)")
		useCache  = flag.Bool("cache", false, "cache extracted features in the local catalog")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	meanMode, err := export.ParseMeanMode(cfg.Export.SummaryMeanMode)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	paths, err := gatherPaths(*images, *dir, *recursive, flag.Args())
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		printError("Error: no input images; use -image or -dir\n")
		os.Exit(2)
	}

	outPath, err := normalizeOutput(*out)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	engine := vision.NewEngine()
	reader := ocr.NewReader(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
	}, logger)
	extractor := extract.NewExtractor(engine, reader, logger)

	var cache batch.Cache
	if *useCache {
		cat, err := catalog.Open(cfg.Catalog.Path, logger)
		if err != nil {
			printError("Error: open catalog: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := cat.Close(); cerr != nil {
				logger.Error("close catalog", "error", cerr)
			}
		}()
		cache = cat
	}

	driver := batch.NewDriver(extractor, cache, logger)
	records, stats := driver.Run(ctx, paths)
	if len(records) == 0 {
		printError("Error: no images were successfully processed\n")
		os.Exit(1)
	}

	exporter := export.NewExporter(logger)
	var data []byte
	switch {
	case len(paths) == 1 && !*summary:
		data, err = exporter.ExportRecord(records[0])
	case *summary:
		data, err = exporter.ExportWithSummary(records, export.SummaryOptions{MeanMode: meanMode})
	default:
		data, err = exporter.ExportRecords(records)
	}
	if err != nil {
		printError("Error: export: %v\n", err)
		os.Exit(1)
	}

	// Bytes first, one write: a failed export never truncates an existing file.
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		printError("Error: write %s: %v\n", outPath, err)
		os.Exit(1)
	}

	logger.Info("imgsheet.done",
		"output", outPath,
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"cached", stats.Cached,
	)
}

func gatherPaths(images, dir string, recursive bool, args []string) ([]string, error) {
	var paths []string
	for _, p := range strings.Split(images, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	paths = append(paths, args...)

	if dir != "" {
		if len(paths) > 0 {
			return nil, fmt.Errorf("-image and -dir are mutually exclusive")
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("directory not found: %s", dir)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("not a directory: %s", dir)
		}
		return batch.Images(dir, recursive)
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("file not found: %s", p)
		}
	}
	return paths, nil
}

// normalizeOutput appends .xlsx when the extension is missing and creates the
// parent directory.
func normalizeOutput(out string) (string, error) {
	ext := strings.ToLower(filepath.Ext(out))
	if ext != ".xlsx" && ext != ".xls" {
		out += ".xlsx"
	}
	if dir := filepath.Dir(out); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory %s: %w", dir, err)
		}
	}
	return out, nil
}
