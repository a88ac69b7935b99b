package dto

import (
	"docgen-ai-api/internal/domain/entity"
)

// 同步生成接口的结果头，跨域时需要暴露给前端
const (
	HeaderProjectID       = "X-Project-ID"
	HeaderFailedDocuments = "X-Failed-Documents"
)

// DocumentationPaths 沿用 {"error": "..."} 错误体的路由前缀，其余路由使用 Response 包装
var DocumentationPaths = []string{"/v1/documentation", "/v1/questionnaire"}

// DocumentationRequest 生成请求，字段名沿用前端约定
type DocumentationRequest struct {
	QuestionnaireData *entity.QuestionnaireResponse `json:"questionnaireData"`
	// ProjectID 非空时覆盖该项目已有的文档
	ProjectID string `json:"projectId,omitempty"`
}

// DocumentationError 生成接口的错误体，保持 {"error": "..."} 形状
type DocumentationError struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ValidateResponse 问卷校验结果
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// FieldErrors 转为以字段标识为键的 map
func FieldErrors(errs map[entity.QuestionnaireField]string) map[string]string {
	out := make(map[string]string, len(errs))
	for f, msg := range errs {
		out[string(f)] = msg
	}
	return out
}

// ChunkEvent SSE chunk 事件
type ChunkEvent struct {
	DocumentType entity.DocumentType `json:"documentType"`
	Chunk        string              `json:"chunk"`
}

// SlowEvent SSE slow 事件
type SlowEvent struct {
	DocumentType entity.DocumentType `json:"documentType"`
	ElapsedMs    int64               `json:"elapsedMs"`
}

// DoneEvent SSE done 事件
type DoneEvent struct {
	Documents        entity.GeneratedDocuments `json:"documents"`
	ProjectID        string                    `json:"projectId,omitempty"`
	FailedDocuments  []entity.DocumentType     `json:"failedDocuments,omitempty"`
	PersistenceError string                    `json:"persistenceError,omitempty"`
}

// ErrorEvent SSE error 事件
type ErrorEvent struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}
