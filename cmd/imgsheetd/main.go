package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"imgsheet/internal/batch"
	"imgsheet/internal/common"
	"imgsheet/internal/export"
	"imgsheet/internal/extract"
	"imgsheet/internal/ocr"
	"imgsheet/internal/server"
	"imgsheet/internal/vision"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	meanMode, err := export.ParseMeanMode(cfg.Export.SummaryMeanMode)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	engine := vision.NewEngine()
	reader := ocr.NewReader(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           cfg.OCR.PSM,
		OEM:           cfg.OCR.OEM,
	}, logger)
	extractor := extract.NewExtractor(engine, reader, logger)
	driver := batch.NewDriver(extractor, nil, logger)
	exporter := export.NewExporter(logger)

	handler := server.New(extractor, driver, exporter, meanMode, logger)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("imgsheetd.listening", "addr", cfg.Server.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("http server", "error", err)
		os.Exit(1)
	}
}
