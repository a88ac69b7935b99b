package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/application/questionnaire"
	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/interfaces/http/dto"
	apperrors "docgen-ai-api/pkg/errors"
	"docgen-ai-api/pkg/logger"
)

// DocumentationHandler 文档生成处理器
type DocumentationHandler struct {
	generator DocumentGenerator
}

// NewDocumentationHandler 创建文档生成处理器
func NewDocumentationHandler(generator DocumentGenerator) *DocumentationHandler {
	return &DocumentationHandler{generator: generator}
}

// bindQuestionnaire 解析并校验请求体，失败时已写出 400
func bindQuestionnaire(c *gin.Context) (*dto.DocumentationRequest, bool) {
	var req dto.DocumentationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.QuestionnaireData == nil {
		c.JSON(http.StatusBadRequest, dto.DocumentationError{Error: "Invalid request body: questionnaireData is required"})
		return nil, false
	}
	if errs := questionnaire.Validate(*req.QuestionnaireData); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, dto.DocumentationError{
			Error:  "Questionnaire validation failed",
			Kind:   apperrors.ErrQuestionnaireInvalid.Kind(),
			Fields: dto.FieldErrors(errs),
		})
		return nil, false
	}
	return &req, true
}

// authorizeProject 指定 projectId 时先校验归属，避免为他人的项目调用模型
func (h *DocumentationHandler) authorizeProject(c *gin.Context, projectID string) bool {
	if projectID == "" {
		return true
	}
	err := h.generator.CheckProjectAccess(c.Request.Context(), projectID, currentUser(c))
	if err == nil {
		return true
	}
	if errors.Is(err, apperrors.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, dto.DocumentationError{Error: "Project not found"})
		return false
	}
	logger.Error(c.Request.Context(), "failed to check project access", err)
	c.JSON(http.StatusInternalServerError, dto.DocumentationError{Error: "Failed to load project"})
	return false
}

// Generate 同步生成七份文档
// @Summary 生成项目文档
// @Description 按问卷顺序生成七份文档，返回以文档类型为键的对象
// @Tags Documentation
// @Accept json
// @Produce json
// @Success 200 {object} entity.GeneratedDocuments
// @Failure 400 {object} dto.DocumentationError
// @Failure 404 {object} dto.DocumentationError
// @Failure 502 {object} dto.DocumentationError
// @Failure 500 {object} dto.DocumentationError
// @Router /v1/documentation [post]
func (h *DocumentationHandler) Generate(c *gin.Context) {
	req, ok := bindQuestionnaire(c)
	if !ok || !h.authorizeProject(c, req.ProjectID) {
		return
	}
	ctx := c.Request.Context()

	result, err := h.generator.GenerateAll(ctx, *req.QuestionnaireData,
		docgen.WithOwner(currentUser(c)),
		docgen.WithProjectID(req.ProjectID),
	)
	if err != nil {
		writeGenerationError(c, err)
		return
	}
	if len(result.Failures) == entity.TotalDocuments {
		writeGenerationError(c, result.Failures[0].Err)
		return
	}

	if result.ProjectID != "" {
		c.Header(dto.HeaderProjectID, result.ProjectID)
	}
	if failed := result.FailedTypes(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, dt := range failed {
			names = append(names, string(dt))
		}
		c.Header(dto.HeaderFailedDocuments, strings.Join(names, ","))
	}
	c.JSON(http.StatusOK, result.Documents)
}

// writeGenerationError 模型与内容类错误为 502，其余为 500
func writeGenerationError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := dto.DocumentationError{Error: "Failed to generate documentation"}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body.Kind = appErr.Kind()
		body.Error = "Failed to generate documentation: " + appErr.Message
		if appErr.HTTPStatus >= http.StatusBadRequest && appErr.HTTPStatus != http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
	}
	logger.Error(c.Request.Context(), "documentation generation failed", err)
	c.JSON(status, body)
}

type sseEvent struct {
	name string
	data any
}

// eventSink 生成协程向 SSE 循环投递事件，关闭后的投递被丢弃
type eventSink struct {
	mu     sync.Mutex
	ch     chan sseEvent
	done   <-chan struct{}
	closed bool
}

func (s *eventSink) send(name string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- sseEvent{name: name, data: data}:
	case <-s.done:
	}
}

func (s *eventSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Stream 以 SSE 推送进度与内容片段
// @Summary 流式生成项目文档
// @Description 事件：progress, chunk, slow, done, error
// @Tags Documentation
// @Accept json
// @Produce text/event-stream
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.DocumentationError
// @Failure 404 {object} dto.DocumentationError
// @Router /v1/documentation/stream [post]
func (h *DocumentationHandler) Stream(c *gin.Context) {
	req, ok := bindQuestionnaire(c)
	if !ok || !h.authorizeProject(c, req.ProjectID) {
		return
	}
	ctx := c.Request.Context()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sink := &eventSink{ch: make(chan sseEvent, 64), done: ctx.Done()}
	owner := currentUser(c)

	go func() {
		defer sink.close()

		result, err := h.generator.GenerateAll(ctx, *req.QuestionnaireData,
			docgen.WithOwner(owner),
			docgen.WithProjectID(req.ProjectID),
			docgen.WithProgress(func(p entity.GenerationProgress) {
				sink.send("progress", p)
			}),
			docgen.WithStream(func(dt entity.DocumentType, chunk string) {
				sink.send("chunk", dto.ChunkEvent{DocumentType: dt, Chunk: chunk})
			}),
			docgen.WithSlowNotice(func(dt entity.DocumentType, elapsed time.Duration) {
				sink.send("slow", dto.SlowEvent{DocumentType: dt, ElapsedMs: elapsed.Milliseconds()})
			}),
		)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			ev := dto.ErrorEvent{Message: err.Error()}
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				ev.Message = appErr.Message
				ev.Kind = appErr.Kind()
			}
			sink.send("error", ev)
			return
		}

		done := dto.DoneEvent{
			Documents:       result.Documents,
			ProjectID:       result.ProjectID,
			FailedDocuments: result.FailedTypes(),
		}
		if result.PersistenceError != nil {
			done.PersistenceError = result.PersistenceError.Error()
		}
		sink.send("done", done)
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sink.ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.name, ev.data)
			return ev.name != "done" && ev.name != "error"
		case <-ctx.Done():
			return false
		}
	})
}

// ValidateQuestionnaire 校验问卷，不触发生成
// @Summary 校验问卷
// @Tags Documentation
// @Accept json
// @Produce json
// @Success 200 {object} dto.ValidateResponse
// @Router /v1/questionnaire/validate [post]
func (h *DocumentationHandler) ValidateQuestionnaire(c *gin.Context) {
	var q entity.QuestionnaireResponse
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.DocumentationError{Error: "Invalid request body"})
		return
	}
	errs := questionnaire.Validate(q)
	c.JSON(http.StatusOK, dto.ValidateResponse{
		Valid:  len(errs) == 0,
		Errors: dto.FieldErrors(errs),
	})
}
