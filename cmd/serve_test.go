package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLayerDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zsj_points_all.geojson"), []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zsj_points_abroad.geojson"), []byte(`{"type":"FeatureCollection","features":[]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	return dir
}

func TestRouter_Health(t *testing.T) {
	h := newRouter(t.TempDir(), []string{"*"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_ListLayers(t *testing.T) {
	h := newRouter(newLayerDir(t), []string{"*"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/layers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"zsj_points_abroad", "zsj_points_all"}, body["layers"])
}

func TestRouter_ListLayers_MissingDir(t *testing.T) {
	h := newRouter(filepath.Join(t.TempDir(), "nope"), []string{"*"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/layers", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_GetLayer(t *testing.T) {
	h := newRouter(newLayerDir(t), []string{"*"})

	for _, name := range []string{"zsj_points_all", "zsj_points_all.geojson"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/layers/"+name, nil))
		require.Equal(t, http.StatusOK, rec.Code, name)
		assert.Contains(t, rec.Body.String(), "FeatureCollection")
	}
}

func TestRouter_GetLayer_NotFound(t *testing.T) {
	h := newRouter(newLayerDir(t), []string{"*"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/layers/zsj_points_total", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_GetLayer_RejectsHidden(t *testing.T) {
	h := newRouter(newLayerDir(t), []string{"*"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/layers/..", nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	h := newRouter(newLayerDir(t), []string{"http://localhost:5173"})
	req := httptest.NewRequest(http.MethodGet, "/layers", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestValidLayerName(t *testing.T) {
	assert.True(t, validLayerName("zsj_polygons_all"))
	assert.False(t, validLayerName(""))
	assert.False(t, validLayerName(".env"))
	assert.False(t, validLayerName(`a\b`))
}
