package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/interfaces/http/dto"
	"docgen-ai-api/pkg/logger"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	store     ProjectStore
	publisher ProjectPublisher
}

// NewProjectHandler publisher 可为 nil
func NewProjectHandler(store ProjectStore, publisher ProjectPublisher) *ProjectHandler {
	return &ProjectHandler{store: store, publisher: publisher}
}

// loadOwned 读取项目并校验归属，失败时已写出响应
func (h *ProjectHandler) loadOwned(c *gin.Context) (*docgen.ProjectView, bool) {
	view, err := h.store.LoadProject(c.Request.Context(), dto.BindProjectID(c))
	if err != nil {
		dto.FromError(c, err)
		return nil, false
	}
	if !ownedBy(c, view.Project) {
		dto.NotFound(c, "project not found")
		return nil, false
	}
	return view, true
}

// ListProjects 获取当前用户的项目列表
// @Summary 获取项目列表
// @Tags Projects
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.ProjectListResponse]
// @Router /v1/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	result, err := h.store.ListProjects(ctx, currentUser(c), pageReq.Pagination())
	if err != nil {
		logger.Error(ctx, "failed to list projects", err)
		dto.FromError(c, err)
		return
	}

	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, dto.ToProjectListResponse(result.Items), meta)
}

// GetProject 获取项目及文档
// @Summary 获取项目详情
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectDetailResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	view, ok := h.loadOwned(c)
	if !ok {
		return
	}
	dto.Success(c, dto.ToProjectDetailResponse(view))
}

// DeleteProject 删除项目及文档
// @Summary 删除项目
// @Tags Projects
// @Param pid path string true "项目 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	view, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if err := h.store.DeleteProject(c.Request.Context(), view.Project.ID); err != nil {
		dto.FromError(c, err)
		return
	}
	dto.NoContent(c)
}

// ExportProject 下载 markdown
// @Summary 导出项目文档
// @Tags Projects
// @Produce text/markdown
// @Param pid path string true "项目 ID"
// @Success 200 {string} string "markdown"
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/export [get]
func (h *ProjectHandler) ExportProject(c *gin.Context) {
	view, ok := h.loadOwned(c)
	if !ok {
		return
	}
	filename := docgen.ExportFilename(view.Project.Name)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(docgen.ExportMarkdown(view.Documents)))
}

// PublishProject 上传导出文件到对象存储
// @Summary 发布项目文档
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.PublishResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/publish [post]
func (h *ProjectHandler) PublishProject(c *gin.Context) {
	if h.publisher == nil || !h.publisher.Enabled() {
		dto.Error(c, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	view, ok := h.loadOwned(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	res, err := h.publisher.Publish(ctx, view.Project.ID)
	if err != nil {
		logger.Error(ctx, "failed to publish project", err)
		dto.FromError(c, err)
		return
	}
	dto.Success(c, dto.ToPublishResponse(res))
}
