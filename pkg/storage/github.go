package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/coder4052/market-analysis/pkg/analysis"
	"github.com/coder4052/market-analysis/pkg/logger"
)

const (
	filePrefix = "analysis_results_"
	fileSuffix = ".json"
	timeLayout = "20060102_150405"
)

// Config holds the GitHub repository settings for the report store.
type Config struct {
	Token      string
	Repo       string
	ResultsDir string
	BaseURL    string
	KeepFiles  int
}

// Store persists analysis reports as JSON files in a GitHub repository
// through the contents API.
type Store struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

func New(cfg Config, log logger.Logger) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	if log == nil {
		log = logger.Default()
	}
	return &Store{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

// StoredReport is a report together with the file it was loaded from.
type StoredReport struct {
	Filename string           `json:"filename"`
	SavedAt  time.Time        `json:"saved_at"`
	Report   *analysis.Report `json:"report"`
}

// HistoryEntry describes one stored report file without loading its content.
type HistoryEntry struct {
	Filename string    `json:"filename"`
	SavedAt  time.Time `json:"saved_at"`
}

type contentItem struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SHA         string `json:"sha"`
	DownloadURL string `json:"download_url"`
}

// Save uploads the report as a new timestamped JSON file and returns the
// filename.
func (s *Store) Save(ctx context.Context, report *analysis.Report) (string, error) {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	filename := filePrefix + time.Now().Format(timeLayout) + fileSuffix
	path := s.cfg.ResultsDir + "/" + filename

	body := map[string]string{
		"message": "Add analysis results " + filename,
		"content": base64.StdEncoding.EncodeToString(payload),
	}

	resp, err := s.do(ctx, http.MethodPut, s.contentsURL(path), body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", s.apiError("saving report", resp)
	}

	s.log.Info("report saved", "filename", filename, "repo", s.cfg.Repo)
	return filename, nil
}

// SaveWithCleanup saves the report and then prunes old files down to the
// configured keep count. A cleanup failure does not fail the save.
func (s *Store) SaveWithCleanup(ctx context.Context, report *analysis.Report) (string, error) {
	filename, err := s.Save(ctx, report)
	if err != nil {
		return "", err
	}
	if deleted, err := s.Cleanup(ctx, s.cfg.KeepFiles); err != nil {
		s.log.Warn("cleanup after save failed", "error", err)
	} else if deleted > 0 {
		s.log.Info("old reports removed", "deleted", deleted)
	}
	return filename, nil
}

// LoadLatest fetches the most recent stored report, or nil when the results
// directory holds none.
func (s *Store) LoadLatest(ctx context.Context) (*StoredReport, error) {
	files, err := s.listReports(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	latest := files[len(files)-1]

	resp, err := s.do(ctx, http.MethodGet, latest.DownloadURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.apiError("downloading report", resp)
	}

	var report analysis.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", latest.Name, err)
	}

	savedAt, _ := parseTimestamp(latest.Name)
	return &StoredReport{Filename: latest.Name, SavedAt: savedAt, Report: &report}, nil
}

// History lists stored report files, newest first, up to limit (0 = all).
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	files, err := s.listReports(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(files))
	for i := len(files) - 1; i >= 0; i-- {
		savedAt, ok := parseTimestamp(files[i].Name)
		if !ok {
			continue
		}
		entries = append(entries, HistoryEntry{Filename: files[i].Name, SavedAt: savedAt})
		if limit > 0 && len(entries) >= limit {
			break
		}
	}
	return entries, nil
}

// Cleanup deletes all but the newest keepLatest report files and returns how
// many were removed.
func (s *Store) Cleanup(ctx context.Context, keepLatest int) (int, error) {
	if keepLatest < 1 {
		keepLatest = 1
	}

	files, err := s.listReports(ctx)
	if err != nil {
		return 0, err
	}
	if len(files) <= keepLatest {
		return 0, nil
	}

	deleted := 0
	for _, f := range files[:len(files)-keepLatest] {
		body := map[string]string{
			"message": "Remove old analysis results " + f.Name,
			"sha":     f.SHA,
		}
		resp, err := s.do(ctx, http.MethodDelete, s.contentsURL(f.Path), body)
		if err != nil {
			return deleted, err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return deleted, fmt.Errorf("deleting %s: unexpected status %d", f.Name, resp.StatusCode)
		}
		deleted++
	}
	return deleted, nil
}

// CheckConnection verifies the token and repository are reachable. It returns
// a human-readable status message alongside the result.
func (s *Store) CheckConnection(ctx context.Context) (bool, string) {
	resp, err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/repos/%s", s.cfg.BaseURL, s.cfg.Repo), nil)
	if err != nil {
		return false, fmt.Sprintf("GitHub 연결 실패: %v", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, fmt.Sprintf("GitHub 저장소 %s 연결 정상", s.cfg.Repo)
	case http.StatusUnauthorized:
		return false, "GitHub 토큰이 유효하지 않습니다."
	case http.StatusNotFound:
		return false, fmt.Sprintf("GitHub 저장소 %s를 찾을 수 없습니다.", s.cfg.Repo)
	default:
		return false, fmt.Sprintf("GitHub 응답 오류: HTTP %d", resp.StatusCode)
	}
}

// listReports returns the result files in the results directory sorted by
// name ascending. Timestamped names sort chronologically.
func (s *Store) listReports(ctx context.Context) ([]contentItem, error) {
	resp, err := s.do(ctx, http.MethodGet, s.contentsURL(s.cfg.ResultsDir), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.apiError("listing reports", resp)
	}

	var items []contentItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding directory listing: %w", err)
	}

	files := items[:0]
	for _, it := range items {
		if strings.HasPrefix(it.Name, filePrefix) && strings.HasSuffix(it.Name, fileSuffix) {
			files = append(files, it)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (s *Store) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", s.cfg.BaseURL, s.cfg.Repo, path)
}

func (s *Store) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "token "+s.cfg.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return s.client.Do(req)
}

func (s *Store) apiError(action string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("%s: HTTP %d: %s", action, resp.StatusCode, strings.TrimSpace(string(data)))
}

func parseTimestamp(name string) (time.Time, bool) {
	raw := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	ts, err := time.ParseInLocation(timeLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
