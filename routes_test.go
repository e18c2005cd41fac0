package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-archive/catalog"
	"paper-archive/config"
	"paper-archive/services"
	"paper-archive/storage"
)

type failingKV struct{}

func (failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, storage.ErrNotFound
}

func (failingKV) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}

func newTestRouter(t *testing.T, cfg *config.Config, kv storage.KV) (*gin.Engine, *services.FavoritesStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg == nil {
		cfg = &config.Config{CORSOrigins: "http://localhost:3000"}
	}
	if kv == nil {
		kv = storage.NewMemoryKV()
	}
	cat, err := catalog.LoadEmbedded()
	require.NoError(t, err)

	log := zap.NewNop()
	favs := services.NewFavoritesStore(kv, log)
	favs.Load(context.Background())
	return newRouter(cfg, cat, services.BuildGraph(cat.All()), favs, log), favs
}

func doRequest(router http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func paperIDs(t *testing.T, body map[string]any) []string {
	t.Helper()
	raw, ok := body["papers"].([]any)
	require.True(t, ok, "papers must be a list")
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		ids = append(ids, item.(map[string]any)["id"].(string))
	}
	return ids
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := doRequest(router, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(14), body["papers"])
	assert.Equal(t, true, body["favorites_loaded"])
}

func TestListPapersByOrganization(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := doRequest(router, http.MethodGet, "/papers?org=DeepSeek")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, []string{"deepseek-ocr", "deepseek-r1", "deepseek-v3"}, paperIDs(t, body))
	assert.Equal(t, float64(3), body["count"])
	assert.NotContains(t, body, "empty_message")
}

func TestListPapersEmptyMessages(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := doRequest(router, http.MethodGet, "/papers?favorites=true")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Empty(t, paperIDs(t, body))
	assert.Equal(t, services.EmptyFavoritesMessage, body["empty_message"])

	w = doRequest(router, http.MethodGet, "/papers?org=Princeton")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.EmptyFilterMessage, decodeBody(t, w)["empty_message"])
}

func TestListPapersRejectsUnknownFilter(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/papers?org=Acme").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/papers?domain=Chemistry").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/papers?favorites=maybe").Code)
}

func TestPaperDetail(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := doRequest(router, http.MethodGet, "/papers/deepseek-r1")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "deepseek-r1", body["paper"].(map[string]any)["id"])
	assert.Equal(t, services.OrgColor("DeepSeek"), body["color"])
	assert.Equal(t, false, body["is_favorite"])

	w = doRequest(router, http.MethodGet, "/papers/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "paper not found", decodeBody(t, w)["error"])
}

func TestToggleFavoriteRoundTrip(t *testing.T) {
	kv := storage.NewMemoryKV()
	router, favs := newTestRouter(t, nil, kv)

	w := doRequest(router, http.MethodPost, "/favorites/qwen-vl/toggle")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["favorite"])
	assert.True(t, favs.IsFavorite("qwen-vl"))

	raw, err := kv.Get(context.Background(), services.FavoritesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `["qwen-vl"]`, string(raw))

	w = doRequest(router, http.MethodGet, "/papers?favorites=true")
	assert.Equal(t, []string{"qwen-vl"}, paperIDs(t, decodeBody(t, w)))

	w = doRequest(router, http.MethodPost, "/favorites/qwen-vl/toggle")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["favorite"])

	w = doRequest(router, http.MethodGet, "/favorites")
	body := decodeBody(t, w)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, true, body["loaded"])
}

func TestToggleFavoriteUnknownPaper(t *testing.T) {
	router, favs := newTestRouter(t, nil, nil)

	w := doRequest(router, http.MethodPost, "/favorites/nope/toggle")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, favs.Count())
}

func TestToggleFavoritePersistFailure(t *testing.T) {
	router, favs := newTestRouter(t, nil, failingKV{})

	w := doRequest(router, http.MethodPost, "/favorites/constitutional-ai/toggle")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "constitutional-ai", body["id"])
	assert.Equal(t, true, body["favorite"])
	assert.True(t, favs.IsFavorite("constitutional-ai"))
}

func TestGraphJSON(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := doRequest(router, http.MethodGet, "/graph")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["nodes"], 14)
	assert.Len(t, body["links"], 16)
	assert.Equal(t, services.BackgroundColor, body["background"])
	assert.NotEmpty(t, body["legend"])
}

func TestGraphPanel(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	assert.Equal(t, http.StatusNoContent, doRequest(router, http.MethodGet, "/graph/panel").Code)

	w := doRequest(router, http.MethodGet, "/graph/panel?hovered=qwen-vl")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "qwen-vl", decodeBody(t, w)["node"].(map[string]any)["id"])

	w = doRequest(router, http.MethodGet, "/graph/panel?hovered=qwen-vl&selected=deepseek-v3")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "deepseek-v3", body["node"].(map[string]any)["id"])
	assert.Equal(t, "/papers/deepseek-v3", body["href"])
}

func TestGraphNodeOpen(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := doRequest(router, http.MethodGet, "/graph/nodes/react-reasoning-and-acting/open")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/papers/react-reasoning-and-acting", w.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodGet, "/graph/nodes/ghost/open").Code)
}

func TestGraphPNG(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := doRequest(router, http.MethodGet, "/graph.png?width=320&height=240&selected=deepseek-r1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), w.Body.Bytes()[:4])

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/graph.png?width=-1").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/graph.png?height=99999").Code)
}

func TestHomeStats(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := doRequest(router, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	stats := body["stats"].(map[string]any)
	assert.Equal(t, float64(14), stats["papers"])
	assert.Equal(t, float64(0), stats["favorites"])
	assert.Len(t, body["recent"], 6)
	assert.Empty(t, body["favorites"])
}

func TestAPIKeyMiddleware(t *testing.T) {
	cfg := &config.Config{CORSOrigins: "http://localhost:3000", APISecretKey: "s3cret"}
	router, _ := newTestRouter(t, cfg, nil)

	w := doRequest(router, http.MethodGet, "/papers")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Invalid API Key", decodeBody(t, w)["error"])

	// Health-Check bleibt ohne Schlüssel erreichbar
	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodGet, "/healthz").Code)

	req := httptest.NewRequest(http.MethodGet, "/papers", nil)
	req.Header.Set("X-API-KEY", "s3cret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
