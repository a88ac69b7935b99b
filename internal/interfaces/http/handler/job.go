package handler

import (
	"github.com/gin-gonic/gin"

	"docgen-ai-api/internal/interfaces/http/dto"
	"docgen-ai-api/pkg/logger"
)

// JobHandler 异步任务处理器
type JobHandler struct {
	jobs JobSubmitter
}

// NewJobHandler 创建任务处理器
func NewJobHandler(jobs JobSubmitter) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// SubmitJob 提交异步生成任务
// @Summary 提交文档生成任务
// @Description 任务投递到 Redis Stream，由 job-worker 执行
// @Tags Jobs
// @Accept json
// @Produce json
// @Success 202 {object} dto.Response[dto.SubmitJobResponse]
// @Failure 400 {object} dto.DocumentationError
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/jobs [post]
func (h *JobHandler) SubmitJob(c *gin.Context) {
	req, ok := bindQuestionnaire(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	job, err := h.jobs.Submit(ctx, currentUser(c), req.ProjectID, *req.QuestionnaireData)
	if err != nil {
		logger.Error(ctx, "failed to submit job", err)
		dto.FromError(c, err)
		return
	}
	dto.Accepted(c, &dto.SubmitJobResponse{JobID: job.ID, Status: string(job.Status)})
}

// GetJob 获取任务详情
// @Summary 获取任务详情
// @Description 获取任务状态、进度与结果
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	ctx := c.Request.Context()

	job, err := h.jobs.Get(ctx, dto.BindJobID(c))
	if err != nil {
		dto.FromError(c, err)
		return
	}
	if uid := currentUser(c); uid != "" && job.UserID != uid {
		dto.NotFound(c, "job not found")
		return
	}
	dto.Success(c, dto.ToJobResponse(job))
}
