// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/domain/repository"
)

// DocumentGenerator 由 docgen.Generator 实现
type DocumentGenerator interface {
	CheckProjectAccess(ctx context.Context, projectID, owner string) error
	GenerateAll(ctx context.Context, q entity.QuestionnaireResponse, opts ...docgen.RunOption) (*docgen.Result, error)
}

// ProjectStore 由 docgen.Storage 实现
type ProjectStore interface {
	LoadProject(ctx context.Context, projectID string) (*docgen.ProjectView, error)
	ListProjects(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error)
	DeleteProject(ctx context.Context, projectID string) error
}

// ProjectPublisher 由 docgen.Publisher 实现
type ProjectPublisher interface {
	Enabled() bool
	Publish(ctx context.Context, projectID string) (*docgen.PublishResult, error)
}

// JobSubmitter 由 docgen.JobService 实现
type JobSubmitter interface {
	Submit(ctx context.Context, userID, projectID string, q entity.QuestionnaireResponse) (*entity.GenerationJob, error)
	Get(ctx context.Context, id string) (*entity.GenerationJob, error)
}

// currentUser 认证中间件注入的用户，匿名时为空串
func currentUser(c *gin.Context) string {
	return c.GetString("user_id")
}

// ownedBy 匿名访问不做归属校验
func ownedBy(c *gin.Context, p *entity.Project) bool {
	uid := currentUser(c)
	return uid == "" || p.UserID == uid
}
