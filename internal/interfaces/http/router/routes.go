// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由，generationLimit 只作用于会调用模型的路由
func RegisterV1Routes(v1 *gin.RouterGroup, generationLimit gin.HandlerFunc, h Handlers) {
	if h.Documentation != nil {
		documentation := v1.Group("/documentation")
		{
			documentation.POST("", generationLimit, h.Documentation.Generate)
			documentation.POST("/stream", generationLimit, h.Documentation.Stream) // SSE
		}

		v1.POST("/questionnaire/validate", h.Documentation.ValidateQuestionnaire)
	}

	if h.Job != nil {
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", generationLimit, h.Job.SubmitJob)
			jobs.GET("/:jid", h.Job.GetJob)
		}
	}

	if h.Project != nil {
		projects := v1.Group("/projects")
		{
			projects.GET("", h.Project.ListProjects)
			projects.GET("/:pid", h.Project.GetProject)
			projects.DELETE("/:pid", h.Project.DeleteProject)
			projects.GET("/:pid/export", h.Project.ExportProject)
			projects.POST("/:pid/publish", h.Project.PublishProject)
		}
	}
}
