package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apierrors "github.com/coder4052/market-analysis/pkg/api/errors"
	"github.com/coder4052/market-analysis/pkg/cache"
	"github.com/coder4052/market-analysis/pkg/logger"
	"github.com/coder4052/market-analysis/pkg/metrics"
	"github.com/coder4052/market-analysis/pkg/models"
	"github.com/coder4052/market-analysis/pkg/storage"
)

const defaultHistoryLimit = 20

// ReportsHandler serves stored analysis reports.
type ReportsHandler struct {
	store     *storage.Store
	cache     *cache.Client
	metrics   *metrics.Metrics
	keepFiles int
	repo      string
	log       logger.Logger
}

// NewReportsHandler creates a new reports handler. cacheClient may be nil
// when caching is disabled.
func NewReportsHandler(
	store *storage.Store,
	cacheClient *cache.Client,
	m *metrics.Metrics,
	keepFiles int,
	repo string,
	log logger.Logger,
) *ReportsHandler {
	if log == nil {
		log = logger.Default()
	}
	return &ReportsHandler{
		store:     store,
		cache:     cacheClient,
		metrics:   m,
		keepFiles: keepFiles,
		repo:      repo,
		log:       log,
	}
}

// Latest returns the most recent stored report, served from cache when
// available.
func (h *ReportsHandler) Latest(c echo.Context) error {
	ctx := c.Request().Context()

	if h.cache != nil {
		cached, err := h.cache.GetLatest(ctx)
		if err != nil {
			h.log.Warn("latest-report cache read failed", "error", err)
		} else if cached != nil {
			h.metrics.RecordCacheHit("redis")
			return c.JSON(http.StatusOK, cached)
		} else {
			h.metrics.RecordCacheMiss("redis")
		}
	}

	stored, err := h.store.LoadLatest(ctx)
	if err != nil {
		return apierrors.StorageError(c, err)
	}
	if stored == nil {
		return apierrors.NotFoundError(c, "report")
	}

	if h.cache != nil {
		if err := h.cache.SetLatest(ctx, stored); err != nil {
			h.log.Warn("caching latest report failed", "error", err)
		}
	}

	return c.JSON(http.StatusOK, stored)
}

// History lists stored report files, newest first.
func (h *ReportsHandler) History(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apierrors.ValidationError(c, err)
		}
		if parsed < 1 {
			return apierrors.ValidationError(c, fmt.Errorf("limit must be >= 1, got %d", parsed))
		}
		limit = parsed
	}

	entries, err := h.store.History(c.Request().Context(), limit)
	if err != nil {
		return apierrors.StorageError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reports": entries,
		"count":   len(entries),
	})
}

// Cleanup prunes old report files, keeping the configured number of latest
// files unless a keep parameter overrides it.
func (h *ReportsHandler) Cleanup(c echo.Context) error {
	keep := h.keepFiles
	if raw := c.QueryParam("keep"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apierrors.ValidationError(c, err)
		}
		if parsed < 1 {
			return apierrors.ValidationError(c, fmt.Errorf("keep must be >= 1, got %d", parsed))
		}
		keep = parsed
	}

	ctx := c.Request().Context()
	deleted, err := h.store.Cleanup(ctx, keep)
	if err != nil {
		return apierrors.StorageError(c, err)
	}

	if deleted > 0 && h.cache != nil {
		if err := h.cache.InvalidateLatest(ctx); err != nil {
			h.log.Warn("cache invalidation failed", "error", err)
		}
	}

	return c.JSON(http.StatusOK, models.CleanupResponse{Deleted: deleted, Kept: keep})
}

// StorageStatus reports whether the report store is reachable.
func (h *ReportsHandler) StorageStatus(c echo.Context) error {
	ok, message := h.store.CheckConnection(c.Request().Context())
	return c.JSON(http.StatusOK, models.StorageStatusResponse{
		Connected: ok,
		Message:   message,
		Repo:      h.repo,
	})
}
