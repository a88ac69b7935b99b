// Package middleware 提供 HTTP 中间件
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"docgen-ai-api/internal/interfaces/http/dto"
)

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// ExposedHeaders 跨域前端需要读取的响应头：生成结果、导出文件名、限流与追踪
var ExposedHeaders = []string{
	dto.HeaderProjectID,
	dto.HeaderFailedDocuments,
	"Content-Disposition",
	"Retry-After",
	RequestIDHeader,
	TraceIDHeader,
}

// CORS 跨域中间件。未配置来源或包含 "*" 时放开全部来源，
// 此时不允许携带凭证，浏览器会拒绝带凭证的通配响应
func CORS(cfg CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader}
	}

	c := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: ExposedHeaders,
		MaxAge:        12 * time.Hour,
	}
	if allowsAnyOrigin(cfg.AllowedOrigins) {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
		c.AllowCredentials = true
	}
	return cors.New(c)
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
