package node

import (
	"strings"

	"docgen-ai-api/internal/domain/entity"
)

const (
	projectInfoHeader  = "Project Information:\n\n"
	previousDocsHeader = "Previously Generated Documents:\n\n"
	blockSeparator     = "\n\n"
)

// BuildProjectInfo 拼接问卷中所有非空字段，字段顺序固定
func BuildProjectInfo(q entity.QuestionnaireResponse) string {
	blocks := make([]string, 0, len(entity.QuestionnaireFields()))
	for _, f := range entity.QuestionnaireFields() {
		v := strings.TrimSpace(q.Get(f))
		if v == "" {
			continue
		}
		blocks = append(blocks, f.Label()+":\n"+v)
	}
	return projectInfoHeader + strings.Join(blocks, blockSeparator)
}

// BuildPreviousDocuments 拼接 current 之前已生成的非空文档，没有时返回空串
func BuildPreviousDocuments(docs entity.GeneratedDocuments, current entity.DocumentType) string {
	blocks := make([]string, 0, entity.TotalDocuments)
	for _, dt := range entity.DocumentTypes() {
		if dt == current {
			break
		}
		content := strings.TrimSpace(docs.Get(dt))
		if content == "" {
			continue
		}
		blocks = append(blocks, dt.Label()+":\n"+content)
	}
	if len(blocks) == 0 {
		return ""
	}
	return previousDocsHeader + strings.Join(blocks, blockSeparator)
}

// BuildUserContext 生成某篇文档的上下文：项目信息，以及排在它之前的已生成文档。
// current 为空时不附带任何已生成文档。
func BuildUserContext(q entity.QuestionnaireResponse, docs entity.GeneratedDocuments, current entity.DocumentType) string {
	info := BuildProjectInfo(q)
	if current == "" {
		return info
	}
	prev := BuildPreviousDocuments(docs, current)
	if prev == "" {
		return info
	}
	return info + blockSeparator + prev
}
