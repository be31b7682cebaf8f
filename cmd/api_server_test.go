package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rm-hull/image-editor/internal/imageio"
	"github.com/rm-hull/image-editor/internal/pipeline"
	"github.com/rm-hull/image-editor/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "recipes"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "output", "darkened"), 0755))
	writeRecipe(t, filepath.Join(root, "recipes"), "darkened", darkenRecipe)
	require.NoError(t, imageio.Save(filepath.Join(root, "output", "darkened", "a.png"), greyImage(t, 0.1)))

	r := gin.New()
	registerRoutes(r, root)
	return r, root
}

func pngBody(t *testing.T, value float64) *bytes.Buffer {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, imageio.Encode(&body, greyImage(t, value), "png"))
	return &body
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["error"]
}

func TestTransformEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	t.Run("brightness", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/transform/brightness?factor=2", pngBody(t, 0.2))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

		out, err := imageio.Decode(w.Body)
		require.NoError(t, err)
		assert.InDelta(t, 0.4, out.At(0, 0, 0), 1.0/255)
	})

	t.Run("bmp output", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/transform/blur?size=3&format=bmp", pngBody(t, 0.9))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/bmp", w.Header().Get("Content-Type"))
	})

	tests := []struct {
		name   string
		url    string
		body   *bytes.Buffer
		status int
	}{
		{"unknown op", "/v1/transform/sharpen", pngBody(t, 0.2), http.StatusBadRequest},
		{"missing factor", "/v1/transform/brightness", pngBody(t, 0.2), http.StatusBadRequest},
		{"bad number", "/v1/transform/contrast?factor=abc", pngBody(t, 0.2), http.StatusBadRequest},
		{"bad size", "/v1/transform/blur?size=3.5", pngBody(t, 0.2), http.StatusBadRequest},
		{"unknown kernel", "/v1/transform/kernel?kernel=laplace", pngBody(t, 0.2), http.StatusBadRequest},
		{"bad format", "/v1/transform/edges?format=gif", pngBody(t, 0.2), http.StatusBadRequest},
		{"not an image", "/v1/transform/edges", bytes.NewBufferString("hello"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.url, tt.body)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, errorMessage(t, w))
		})
	}
}

func TestRecipeEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	t.Run("applies recipe", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/recipe?recipe=darkened&format=jpeg", pngBody(t, 0.8))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	})

	t.Run("unknown recipe", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/recipe?recipe=missing", pngBody(t, 0.8))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects path traversal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/recipe?recipe=../secrets", pngBody(t, 0.8))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStaticAndVersion(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/images/darkened/a.png", nil))
	require.Equal(t, http.StatusOK, w.Code)
	out, err := imageio.Decode(w.Body)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, out.At(0, 0, 0), 1.0/255)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/version", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["version"])
}

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "output"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "output", "x.txt"), []byte("x"), 0644))

	// ginprom registers with the default prometheus registry, so the router
	// is built once with every optional middleware enabled.
	r, err := NewRouter(root, true)
	require.NoError(t, err)

	for _, path := range []string{"/healthz", "/metrics", "/debug/pprof/", "/v1/version", "/v1/images/x.txt"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(transform.ErrDimensionMismatch))
	assert.Equal(t, http.StatusBadRequest, statusFor(pipeline.ErrUnknownOp))
	assert.Equal(t, http.StatusBadRequest, statusFor(pipeline.ErrInvalidName))
	assert.Equal(t, http.StatusNotFound, statusFor(os.ErrNotExist))
	assert.Equal(t, http.StatusRequestEntityTooLarge, statusFor(&http.MaxBytesError{Limit: 1}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
