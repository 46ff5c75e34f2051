package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/constants"
	"github.com/joseph-ayodele/portfolio-grader/internal/analyze"
	"github.com/joseph-ayodele/portfolio-grader/internal/common"
	"github.com/joseph-ayodele/portfolio-grader/internal/export"
	"github.com/joseph-ayodele/portfolio-grader/internal/grade"
	"github.com/joseph-ayodele/portfolio-grader/internal/llm"
)

// Client-facing messages. They are part of the HTTP contract.
const (
	MsgNoFile         = "No screenshot file uploaded."
	MsgAnalyzeFailed  = "Failed to analyze screenshot."
	multipartOverhead = 64 * 1024
)

// Analyzer runs one screenshot through extraction.
type Analyzer interface {
	Analyze(ctx context.Context, up analyze.Upload) (analyze.Result, error)
}

// Exporter renders a record as a workbook.
type Exporter interface {
	ExportRecordXLSX(ctx context.Context, rec llm.InvestmentRecord) ([]byte, error)
}

type Handler struct {
	analyzer  Analyzer
	exporter  Exporter
	maxUpload int64
	log       *zap.Logger
}

func NewHandler(analyzer Analyzer, exporter Exporter, maxUpload int64, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		analyzer:  analyzer,
		exporter:  exporter,
		maxUpload: maxUpload,
		log:       log,
	}
}

// AnalyzeScreenshot handles /api/analyze-screenshot for every method.
func (h *Handler) AnalyzeScreenshot(c *gin.Context) {
	if !allowPost(c) {
		return
	}
	res, ok := h.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.Record)
}

// ExportScreenshot runs the same extraction and answers with an XLSX workbook.
func (h *Handler) ExportScreenshot(c *gin.Context) {
	if !allowPost(c) {
		return
	}
	res, ok := h.analyze(c)
	if !ok {
		return
	}
	b, err := h.exporter.ExportRecordXLSX(c.Request.Context(), res.Record)
	if err != nil {
		h.fail(c, common.WrapError(err, "export workbook"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(res.Record)))
	c.Data(http.StatusOK, export.ContentTypeXLSX, b)
}

func (h *Handler) Grades(c *gin.Context) {
	c.JSON(http.StatusOK, grade.Scale())
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// analyze validates the upload and runs extraction. On false the response is already written.
func (h *Handler) analyze(c *gin.Context) (analyze.Result, bool) {
	ctx := c.Request.Context()
	log := common.LoggerFromContext(ctx, h.log)

	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}

	file, err := c.FormFile(constants.ScreenshotField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			log.Warn("http.analyze.no_file", zap.Error(common.NewAppError(common.CodeUpload, err.Error(), common.ErrNoUpload)))
			c.JSON(http.StatusBadRequest, gin.H{"error": MsgNoFile})
			return analyze.Result{}, false
		}
		h.fail(c, common.NewAppError(common.CodeUpload, "parse upload", err))
		return analyze.Result{}, false
	}
	if file.Size == 0 {
		log.Warn("http.analyze.empty_file",
			zap.String("filename", file.Filename),
			zap.Error(common.NewAppError(common.CodeUpload, "empty file", common.ErrNoUpload)),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgNoFile})
		return analyze.Result{}, false
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		h.fail(c, common.NewAppError(common.CodeUpload, fmt.Sprintf("file exceeds %d bytes", h.maxUpload), common.ErrTooLarge))
		return analyze.Result{}, false
	}

	src, err := file.Open()
	if err != nil {
		h.fail(c, common.NewAppError(common.CodeUpload, "open upload", err))
		return analyze.Result{}, false
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Warn("http.analyze.close_upload_failed", zap.Error(err))
		}
	}()

	res, err := h.analyzer.Analyze(ctx, analyze.Upload{
		Body:     src,
		Filename: file.Filename,
		MimeType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		h.fail(c, err)
		return analyze.Result{}, false
	}
	return res, true
}

// fail is the single failure boundary: every non-validation error becomes a 500 envelope.
func (h *Handler) fail(c *gin.Context, err error) {
	common.LoggerFromContext(c.Request.Context(), h.log).Error("http.analyze.failed",
		zap.String("code", common.ErrorCode(err)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   MsgAnalyzeFailed,
		"details": err.Error(),
	})
}

func allowPost(c *gin.Context) bool {
	if c.Request.Method == http.MethodPost {
		return true
	}
	c.Header("Allow", http.MethodPost)
	c.String(http.StatusMethodNotAllowed, "Method %s Not Allowed", c.Request.Method)
	return false
}
