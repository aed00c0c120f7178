package common

import (
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	OCR     OCRConfig
	Catalog CatalogConfig
	Server  ServerConfig
	Export  ExportConfig
}

// OCRConfig holds OCR-related configuration.
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	PSM           int
	OEM           int
}

// CatalogConfig holds feature-cache configuration.
type CatalogConfig struct {
	Path string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	HTTPAddr string
}

// ExportConfig holds export-related configuration.
type ExportConfig struct {
	// SummaryMeanMode is "zero-fill" (historical behavior: records missing a
	// column contribute 0 to the mean) or "exclude-missing".
	SummaryMeanMode string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("TESSERACT_PSM", 0),
			OEM:           getEnvAsInt("TESSERACT_OEM", 0),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", "./imgsheet.db"),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Export: ExportConfig{
			SummaryMeanMode: getEnv("SUMMARY_MEAN_MODE", "zero-fill"),
		},
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.OCR.Tesseract == "" {
		return NewAppError("CONFIG_ERROR", "TESSERACT_BIN must not be empty", nil)
	}
	if c.Export.SummaryMeanMode != "zero-fill" && c.Export.SummaryMeanMode != "exclude-missing" {
		return NewAppError("CONFIG_ERROR", "SUMMARY_MEAN_MODE must be zero-fill or exclude-missing", nil)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", nil)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
