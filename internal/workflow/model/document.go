package model

import "docgen-ai-api/internal/domain/entity"

// DocumentGenerateInput 单篇文档生成输入
type DocumentGenerateInput struct {
	DocumentType entity.DocumentType
	// Context 由问卷与已生成文档拼接而成的上下文
	Context string

	Provider string
	Model    string
	Config   GenerationConfig
}

// CombinedGenerateInput 单次调用生成全部文档的输入
type CombinedGenerateInput struct {
	Context string

	Provider string
	Model    string
	Config   GenerationConfig
}
