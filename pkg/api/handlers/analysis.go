package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/coder4052/market-analysis/pkg/analysis"
	apierrors "github.com/coder4052/market-analysis/pkg/api/errors"
	"github.com/coder4052/market-analysis/pkg/cache"
	"github.com/coder4052/market-analysis/pkg/logger"
	"github.com/coder4052/market-analysis/pkg/metrics"
	"github.com/coder4052/market-analysis/pkg/models"
	"github.com/coder4052/market-analysis/pkg/normalize"
	"github.com/coder4052/market-analysis/pkg/product"
	"github.com/coder4052/market-analysis/pkg/storage"
)

// AnalysisHandler runs the upload-to-report pipeline.
type AnalysisHandler struct {
	normalizer *normalize.Service
	analyzer   *analysis.Analyzer
	store      *storage.Store
	cache      *cache.Client
	metrics    *metrics.Metrics
	ourBrand   string
	log        logger.Logger
}

// NewAnalysisHandler creates a new analysis handler. cacheClient may be nil
// when caching is disabled.
func NewAnalysisHandler(
	normalizer *normalize.Service,
	analyzer *analysis.Analyzer,
	store *storage.Store,
	cacheClient *cache.Client,
	m *metrics.Metrics,
	ourBrand string,
	log logger.Logger,
) *AnalysisHandler {
	if log == nil {
		log = logger.Default()
	}
	return &AnalysisHandler{
		normalizer: normalizer,
		analyzer:   analyzer,
		store:      store,
		cache:      cacheClient,
		metrics:    m,
		ourBrand:   ourBrand,
		log:        log,
	}
}

// Upload accepts one or more xlsx listing exports, normalizes them, runs the
// market analysis and persists the resulting report. A storage failure does
// not fail the request; the report is still returned with saved=false.
func (h *AnalysisHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apierrors.ValidationError(c, err)
	}

	files := form.File["files"]
	if len(files) == 0 {
		return apierrors.ValidationError(c, fmt.Errorf("no files uploaded"))
	}

	var tables []*product.Table
	warnings := []analysis.Warning{}

	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return apierrors.ValidationError(c, fmt.Errorf("opening %s: %w", fh.Filename, err))
		}

		table, platform, missing, err := h.normalizer.Normalize(fh.Filename, src)
		src.Close()
		if err != nil {
			return apierrors.ValidationError(c, fmt.Errorf("normalizing %s: %w", fh.Filename, err))
		}

		h.metrics.RecordNormalized(platform, table.Len())
		for _, col := range missing {
			warnings = append(warnings, analysis.Warning(fmt.Sprintf(
				"%s: '%s' 컬럼이 없습니다.", fh.Filename, col)))
		}
		tables = append(tables, table)
	}

	quality := h.normalizer.ValidateQuality(tables, h.ourBrand)

	start := time.Now()
	report, analysisWarnings := h.analyzer.Analyze(tables)
	if report == nil {
		return apierrors.ValidationError(c, fmt.Errorf("no data to analyze"))
	}
	h.metrics.RecordAnalysis(time.Since(start))
	warnings = append(warnings, analysisWarnings...)

	resp := models.UploadResponse{
		Report:  report,
		Quality: quality,
	}

	ctx := c.Request().Context()
	filename, err := h.store.SaveWithCleanup(ctx, report)
	if err != nil {
		h.log.Error("report save failed", "error", err)
		h.metrics.RecordReportSaved(false)
		warnings = append(warnings, "분석 결과를 저장하지 못했습니다. 결과는 응답으로만 제공됩니다.")
	} else {
		h.metrics.RecordReportSaved(true)
		resp.Saved = true
		resp.Filename = filename

		if h.cache != nil {
			stored := &storage.StoredReport{
				Filename: filename,
				SavedAt:  time.Now(),
				Report:   report,
			}
			if err := h.cache.SetLatest(ctx, stored); err != nil {
				h.log.Warn("caching latest report failed", "error", err)
			}
		}
	}

	resp.Warnings = warnings
	return c.JSON(http.StatusOK, resp)
}
