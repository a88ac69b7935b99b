package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-ai-api/internal/infrastructure/persistence/redis"
	"docgen-ai-api/internal/interfaces/http/dto"
	"docgen-ai-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthEngine(cfg AuthConfig) *gin.Engine {
	r := gin.New()
	r.Use(Auth(cfg))
	r.GET("/v1/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("user_id"))
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	cfg := AuthConfig{Enabled: true, Secret: "s3cret", Issuer: "docgen", SkipPaths: DefaultSkipPaths}
	jwt := utils.NewJWTManager(cfg.Secret, cfg.Issuer)
	token, err := jwt.GenerateToken("user-1", "a@example.com", time.Hour)
	require.NoError(t, err)
	expired, err := jwt.GenerateToken("user-1", "", -time.Minute)
	require.NoError(t, err)

	r := newAuthEngine(cfg)

	w := get(r, "/v1/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/v1/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/v1/whoami", "garbage").Code)

	w = get(r, "/v1/whoami", expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")

	assert.Equal(t, http.StatusOK, get(r, "/health", "").Code)
}

func TestAuth_AnonymousAndDisabled(t *testing.T) {
	r := newAuthEngine(AuthConfig{Enabled: true, Secret: "s", AllowAnonymous: true})
	w := get(r, "/v1/whoami", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, get(r, "/v1/whoami", "garbage").Code)

	r = newAuthEngine(AuthConfig{Enabled: false})
	assert.Equal(t, http.StatusOK, get(r, "/v1/whoami", "garbage").Code)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	limiter := redis.NewRateLimiter(redis.NewClientFromRedis(rdb))

	r := gin.New()
	r.POST("/v1/documentation", RateLimit(RateLimitConfig{Enabled: true, Limit: 2, Window: time.Minute}, limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	post := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/documentation", nil))
		return w
	}
	assert.Equal(t, http.StatusOK, post().Code)
	w := post()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = post()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, int, time.Duration) (bool, int, error) {
	return false, 0, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(RateLimitConfig{Enabled: true, Limit: 1}, brokenLimiter{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, get(r, "/x", "").Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = get(r, "/x", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	for _, bad := range []string{strings.Repeat("a", 65), "id with spaces", "id\nforged=1"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(RequestIDHeader, bad)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.NotEqual(t, bad, w.Body.String())
		assert.Regexp(t, `^[0-9a-f-]{36}$`, w.Body.String())
	}
}

func corsRequest(r http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/documentation", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newCORSEngine(cfg CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORS(cfg))
	r.POST("/v1/documentation", func(c *gin.Context) {
		c.Header("X-Project-ID", "p-1")
		c.Status(http.StatusOK)
	})
	return r
}

func TestCORS_ExposesGenerationHeaders(t *testing.T) {
	w := corsRequest(newCORSEngine(CORSConfig{}), "https://app.example.com")
	require.Equal(t, http.StatusOK, w.Code)

	exposed := strings.ToLower(w.Header().Get("Access-Control-Expose-Headers"))
	for _, h := range []string{"x-project-id", "x-failed-documents", "content-disposition", "retry-after"} {
		assert.Contains(t, exposed, h)
	}
}

func TestCORS_CredentialsOnlyForExplicitOrigins(t *testing.T) {
	w := corsRequest(newCORSEngine(CORSConfig{AllowedOrigins: []string{"*"}}), "https://app.example.com")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	r := newCORSEngine(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})
	w = corsRequest(r, "https://app.example.com")
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = corsRequest(r, "https://evil.example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRecovery_ErrorShapes(t *testing.T) {
	r := gin.New()
	r.Use(Recovery("/v1/documentation"))
	boom := func(*gin.Context) { panic("boom") }
	r.POST("/v1/documentation", boom)
	r.GET("/v1/projects/:pid", boom)
	r.GET("/v1/stream", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/documentation", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error","kind":"INTERNAL_ERROR"}`, w.Body.String())

	w = get(r, "/v1/projects/p-1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Kind)

	w = get(r, "/v1/stream", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}
