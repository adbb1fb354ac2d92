package handlers

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coder4052/market-analysis/pkg/analysis"
	"github.com/coder4052/market-analysis/pkg/models"
	"github.com/coder4052/market-analysis/pkg/storage"
)

func storedReportJSON(t *testing.T) []byte {
	t.Helper()

	data, err := json.Marshal(&analysis.Report{
		AnalysisType: "수정과 시장 분석",
		OurBrand:     "서로",
		Timestamp:    "2025-08-30T12:00:00+09:00",
		Platforms:    []string{"네이버"},
	})
	require.NoError(t, err)
	return data
}

func doGet(h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		e.HTTPErrorHandler(err, e.NewContext(req, rec))
	}
	return rec
}

func doPost(h echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		e.HTTPErrorHandler(err, e.NewContext(req, rec))
	}
	return rec
}

func TestReportsLatest(t *testing.T) {
	t.Run("serves from storage and fills the cache", func(t *testing.T) {
		repo := &fakeRepo{files: map[string][]byte{
			"analysis_results_20250830_120000.json": storedReportJSON(t),
		}}
		cacheClient := newTestCache(t)
		h := NewReportsHandler(newFakeStore(t, repo), cacheClient, testMetrics, 3, "tester/market_analysis", nil)

		rec := doGet(h.Latest, "/api/v1/reports/latest")
		require.Equal(t, http.StatusOK, rec.Code)

		var stored storage.StoredReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stored))
		assert.Equal(t, "analysis_results_20250830_120000.json", stored.Filename)
		assert.Equal(t, "서로", stored.Report.OurBrand)

		// Second call is served from the cache even if the repo empties.
		repo.files = map[string][]byte{}
		rec = doGet(h.Latest, "/api/v1/reports/latest")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("404 when nothing is stored", func(t *testing.T) {
		repo := &fakeRepo{files: map[string][]byte{}}
		h := NewReportsHandler(newFakeStore(t, repo), nil, testMetrics, 3, "tester/market_analysis", nil)

		rec := doGet(h.Latest, "/api/v1/reports/latest")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReportsHistory(t *testing.T) {
	repo := &fakeRepo{files: map[string][]byte{
		"analysis_results_20250810_090000.json": storedReportJSON(t),
		"analysis_results_20250820_100000.json": storedReportJSON(t),
		"analysis_results_20250830_120000.json": storedReportJSON(t),
	}}
	h := NewReportsHandler(newFakeStore(t, repo), nil, testMetrics, 3, "tester/market_analysis", nil)

	rec := doGet(h.History, "/api/v1/reports/history?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reports []storage.HistoryEntry `json:"reports"`
		Count   int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "analysis_results_20250830_120000.json", resp.Reports[0].Filename)

	rec = doGet(h.History, "/api/v1/reports/history?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var logBuf bytes.Buffer
	log.SetOutput(&logBuf)
	defer log.SetOutput(os.Stderr)

	rec = doGet(h.History, "/api/v1/reports/history?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, logBuf.String(), "limit must be >= 1")
}

func TestReportsCleanup(t *testing.T) {
	repo := &fakeRepo{files: map[string][]byte{
		"analysis_results_20250810_090000.json": storedReportJSON(t),
		"analysis_results_20250820_100000.json": storedReportJSON(t),
		"analysis_results_20250830_120000.json": storedReportJSON(t),
	}}
	h := NewReportsHandler(newFakeStore(t, repo), nil, testMetrics, 3, "tester/market_analysis", nil)

	var logBuf bytes.Buffer
	log.SetOutput(&logBuf)
	defer log.SetOutput(os.Stderr)

	rec := doPost(h.Cleanup, "/api/v1/reports/cleanup?keep=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, logBuf.String(), "keep must be >= 1")
	assert.Len(t, repo.files, 3)

	rec = doPost(h.Cleanup, "/api/v1/reports/cleanup?keep=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.CleanupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Deleted)
	assert.Equal(t, 1, resp.Kept)
	assert.Len(t, repo.files, 1)
}

func TestStorageStatus(t *testing.T) {
	repo := &fakeRepo{files: map[string][]byte{}}
	h := NewReportsHandler(newFakeStore(t, repo), nil, testMetrics, 3, "tester/market_analysis", nil)

	rec := doGet(h.StorageStatus, "/api/v1/storage/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.StorageStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Connected)
	assert.Equal(t, "tester/market_analysis", resp.Repo)
}
