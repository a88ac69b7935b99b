package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"docgen-ai-api/internal/config"
	"docgen-ai-api/internal/interfaces/http/handler"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "docgen-ai-api"
	cfg.App.Env = "test"
	cfg.Observability.Metrics.Enabled = true
	cfg.Observability.Metrics.Path = "/metrics"
	cfg.Security.CORS.AllowedOrigins = []string{"*"}
	return cfg
}

func TestRouter_SystemRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(testConfig(), Handlers{Health: handler.NewHealthHandler("1.0.0")}, nil)

	for _, path := range []string{"/health", "/live", "/ready", "/metrics"} {
		w := httptest.NewRecorder()
		r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(testConfig(), Handlers{Documentation: handler.NewDocumentationHandler(nil)}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/documentation", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestRouter_CORSExposesProjectHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(testConfig(), Handlers{Health: handler.NewHealthHandler("1.0.0")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	exposed := strings.ToLower(w.Header().Get("Access-Control-Expose-Headers"))
	assert.Contains(t, exposed, "x-project-id")
	assert.Contains(t, exposed, "x-failed-documents")
}

func TestRouter_OptionalGroups(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(testConfig(), Handlers{}, nil)

	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/jobs/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
