// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"docgen-ai-api/internal/interfaces/http/dto"
	apperrors "docgen-ai-api/pkg/errors"
	"docgen-ai-api/pkg/logger"
)

// Recovery panic 恢复。rawErrorPaths 前缀下返回 {"error": "..."}，其余返回 ErrorResponse；
// 响应已开始写出（SSE）时只中断连接
func Recovery(rawErrorPaths ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			if hasPathPrefix(c.Request.URL.Path, rawErrorPaths) {
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.DocumentationError{
					Error: "Internal server error",
					Kind:  apperrors.ErrInternalError.Kind(),
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: "internal server error",
				Error: &dto.ErrorDetail{
					ErrorCode: string(apperrors.CodeInternalError),
					Kind:      apperrors.ErrInternalError.Kind(),
				},
				TraceID: c.GetString("trace_id"),
			})
		}()

		c.Next()
	}
}

func hasPathPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
