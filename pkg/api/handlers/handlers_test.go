package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/coder4052/market-analysis/pkg/cache"
	"github.com/coder4052/market-analysis/pkg/metrics"
	"github.com/coder4052/market-analysis/pkg/storage"
)

// Prometheus collectors register globally, so the package shares one
// instance across tests.
var testMetrics = metrics.New()

// fakeRepo is an in-memory stand-in for the GitHub contents API.
type fakeRepo struct {
	files    map[string][]byte
	failPuts bool
}

func (g *fakeRepo) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/repos/tester/market_analysis", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/raw/")
		content, ok := g.files[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(content)
	})

	mux.HandleFunc("/repos/tester/market_analysis/contents/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/repos/tester/market_analysis/contents/")

		switch r.Method {
		case http.MethodGet:
			names := make([]string, 0, len(g.files))
			for name := range g.files {
				names = append(names, name)
			}
			sort.Strings(names)

			items := make([]map[string]string, 0, len(names))
			for _, name := range names {
				items = append(items, map[string]string{
					"name":         name,
					"path":         "results/" + name,
					"sha":          "sha-" + name,
					"download_url": "http://" + r.Host + "/raw/" + name,
				})
			}
			json.NewEncoder(w).Encode(items)

		case http.MethodPut:
			if g.failPuts {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			var body struct {
				Content string `json:"content"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			raw, _ := base64.StdEncoding.DecodeString(body.Content)
			g.files[strings.TrimPrefix(path, "results/")] = raw
			w.WriteHeader(http.StatusCreated)

		case http.MethodDelete:
			delete(g.files, strings.TrimPrefix(path, "results/"))
			w.WriteHeader(http.StatusOK)
		}
	})

	return mux
}

func newFakeStore(t *testing.T, repo *fakeRepo) *storage.Store {
	t.Helper()

	srv := httptest.NewServer(repo.handler())
	t.Cleanup(srv.Close)

	return storage.New(storage.Config{
		Token:      "secret",
		Repo:       "tester/market_analysis",
		ResultsDir: "results",
		BaseURL:    srv.URL,
		KeepFiles:  3,
	}, nil)
}

func newTestCache(t *testing.T) *cache.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := cache.NewClient("redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client
}
