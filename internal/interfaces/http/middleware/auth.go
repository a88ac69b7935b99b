// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docgen-ai-api/pkg/logger"
	"docgen-ai-api/pkg/utils"
)

// AuthConfig 认证配置
type AuthConfig struct {
	// Enabled 是否启用认证
	Enabled bool
	// Secret JWT 密钥
	Secret string
	// Issuer JWT 签发者
	Issuer string
	// AllowAnonymous 未携带 Authorization 的请求匿名放行，携带了则必须有效
	AllowAnonymous bool
	// SkipPaths 跳过认证的路径前缀
	SkipPaths []string
}

// Auth 认证中间件，解析出的用户写入 gin 与 logger 上下文的 user_id
func Auth(cfg AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	jwtManager := utils.NewJWTManager(cfg.Secret, cfg.Issuer)

	return func(c *gin.Context) {
		for _, path := range cfg.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if cfg.AllowAnonymous {
				c.Next()
				return
			}
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		claims, err := jwtManager.ParseToken(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, utils.ErrExpiredToken) {
				msg = "token expired"
			}
			abortUnauthorized(c, msg)
			return
		}

		c.Set("user_id", claims.UserID())
		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, claims.UserID())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// abortUnauthorized 终止请求并返回 401
func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":     http.StatusUnauthorized,
		"message":  msg,
		"trace_id": c.GetString("trace_id"),
	})
}

// DefaultSkipPaths 默认跳过认证的路径
var DefaultSkipPaths = []string{
	"/health",
	"/ready",
	"/live",
	"/metrics",
}
