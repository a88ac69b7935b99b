// Package router 提供 HTTP 路由配置
package router

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docgen-ai-api/internal/config"
	"docgen-ai-api/internal/interfaces/http/dto"
	"docgen-ai-api/internal/interfaces/http/handler"
	"docgen-ai-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器，Job 为 nil 时不注册异步任务路由
type Handlers struct {
	Health        *handler.HealthHandler
	Documentation *handler.DocumentationHandler
	Project       *handler.ProjectHandler
	Job           *handler.JobHandler
}

// Router HTTP 路由器
type Router struct {
	engine  *gin.Engine
	cfg     *config.Config
	limiter middleware.RateLimiter
}

// New 创建新的路由器，limiter 可为 nil
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:  gin.New(),
		cfg:     cfg,
		limiter: limiter,
	}

	r.setupMiddleware()
	r.setupRoutes(handlers)

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery(dto.DocumentationPaths...))
	r.engine.Use(middleware.RequestID())

	// 跨域，预检请求由 cors 直接应答
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name, slices.Concat(middleware.DefaultSkipPaths, []string{r.metricsPath()})...))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.Auth(middleware.AuthConfig{
		Enabled:        r.cfg.Security.JWT.Enabled,
		Secret:         r.cfg.Security.JWT.Secret,
		Issuer:         r.cfg.Security.JWT.Issuer,
		AllowAnonymous: r.cfg.Security.JWT.AllowAnonymous,
		SkipPaths:      middleware.DefaultSkipPaths,
	}))
	r.engine.Use(middleware.AccessLog(middleware.DefaultSkipPaths...))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes(h Handlers) {
	if h.Health != nil {
		r.engine.GET("/health", h.Health.Health)
		r.engine.GET("/ready", h.Health.Ready)
		r.engine.GET("/live", h.Health.Live)
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled: r.cfg.Security.RateLimit.Enabled,
		Limit:   r.cfg.Security.RateLimit.RequestsPerWindow,
		Window:  r.cfg.Security.RateLimit.Window,
	}, r.limiter)

	RegisterV1Routes(r.engine.Group("/v1"), limit, h)
}

func (r *Router) metricsPath() string {
	if p := r.cfg.Observability.Metrics.Path; p != "" {
		return p
	}
	return "/metrics"
}
