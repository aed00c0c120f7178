// Package server exposes extraction and export over HTTP.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"imgsheet/internal/batch"
	"imgsheet/internal/common"
	"imgsheet/internal/export"
	"imgsheet/internal/extract"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExtractRequest struct {
	Path string `json:"path" binding:"required"`
}

type ExportRequest struct {
	Paths   []string `json:"paths" binding:"required,min=1"`
	Summary bool     `json:"summary"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Handler wires the extraction pipeline behind gin routes.
type Handler struct {
	extractor *extract.Extractor
	driver    *batch.Driver
	exporter  *export.Exporter
	meanMode  export.MeanMode
	logger    *slog.Logger
}

func New(extractor *extract.Extractor, driver *batch.Driver, exporter *export.Exporter, meanMode export.MeanMode, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		extractor: extractor,
		driver:    driver,
		exporter:  exporter,
		meanMode:  meanMode,
		logger:    logger,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.health)
	r.POST("/extract", h.extractOne)
	r.POST("/export", h.exportMany)
	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "available",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) extractOne(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	rec, err := h.extractor.Extract(c.Request.Context(), req.Path)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, common.ErrDecode) {
			status = http.StatusUnprocessableEntity
		}
		h.respondError(c, status, "extraction failed", err)
		return
	}
	if err := extract.ValidateRecord(rec); err != nil {
		h.respondError(c, http.StatusInternalServerError, "record failed schema validation", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) exportMany(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	records, stats := h.driver.Run(c.Request.Context(), req.Paths)
	if err := export.EnsureNotEmpty(records); err != nil {
		h.respondError(c, http.StatusUnprocessableEntity, "no images could be processed", err)
		return
	}

	var data []byte
	var err error
	if req.Summary {
		data, err = h.exporter.ExportWithSummary(records, export.SummaryOptions{MeanMode: h.meanMode})
	} else {
		data, err = h.exporter.ExportRecords(records)
	}
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, "export failed", err)
		return
	}

	h.logger.Info("server.export.ok",
		"requested", len(req.Paths),
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"bytes", len(data),
	)
	c.Header("Content-Disposition", `attachment; filename="features.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) respondError(c *gin.Context, code int, message string, err error) {
	h.logger.Error("server.request.failed",
		"status", code,
		"path", c.Request.URL.Path,
		"message", message,
		"error", err,
	)
	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
