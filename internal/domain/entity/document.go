// Package entity 定义领域实体
package entity

import (
	"fmt"
	"time"
)

// DocumentType 文档类型
type DocumentType string

const (
	DocProjectRequirements DocumentType = "projectRequirements"
	DocBackendStructure    DocumentType = "backendStructure"
	DocTechStack           DocumentType = "techStack"
	DocFrontendGuidelines  DocumentType = "frontendGuidelines"
	DocFileStructure       DocumentType = "fileStructure"
	DocAppFlow             DocumentType = "appFlow"
	DocSystemPrompts       DocumentType = "systemPrompts"
)

// documentOrder 生成顺序，后序文档以前序文档为上下文
var documentOrder = [...]DocumentType{
	DocProjectRequirements,
	DocBackendStructure,
	DocTechStack,
	DocFrontendGuidelines,
	DocFileStructure,
	DocAppFlow,
	DocSystemPrompts,
}

var documentLabels = map[DocumentType]string{
	DocProjectRequirements: "Project Requirements",
	DocBackendStructure:    "Backend Structure",
	DocTechStack:           "Tech Stack",
	DocFrontendGuidelines:  "Frontend Guidelines",
	DocFileStructure:       "File Structure",
	DocAppFlow:             "App Flow",
	DocSystemPrompts:       "System Prompts",
}

// DocumentTypes 按固定生成顺序返回全部文档类型：
// projectRequirements, backendStructure, techStack, frontendGuidelines,
// fileStructure, appFlow, systemPrompts
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(documentOrder))
	copy(out, documentOrder[:])
	return out
}

// TotalDocuments 文档总数
const TotalDocuments = len(documentOrder)

// ParseDocumentType 解析文档类型标识
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// Valid 是否为已知文档类型
func (t DocumentType) Valid() bool {
	_, ok := documentLabels[t]
	return ok
}

// Label 返回文档标题
func (t DocumentType) Label() string {
	if l, ok := documentLabels[t]; ok {
		return l
	}
	return string(t)
}

// Step 返回 1 起始的生成序号，未知类型返回 0
func (t DocumentType) Step() int {
	for i, d := range documentOrder {
		if d == t {
			return i + 1
		}
	}
	return 0
}

// GeneratedDocuments 一次生成的七份文档，未生成的字段为空串
type GeneratedDocuments struct {
	ProjectRequirements string `json:"projectRequirements" yaml:"projectRequirements"`
	BackendStructure    string `json:"backendStructure" yaml:"backendStructure"`
	TechStack           string `json:"techStack" yaml:"techStack"`
	FrontendGuidelines  string `json:"frontendGuidelines" yaml:"frontendGuidelines"`
	FileStructure       string `json:"fileStructure" yaml:"fileStructure"`
	AppFlow             string `json:"appFlow" yaml:"appFlow"`
	SystemPrompts       string `json:"systemPrompts" yaml:"systemPrompts"`
}

func (d *GeneratedDocuments) field(t DocumentType) *string {
	switch t {
	case DocProjectRequirements:
		return &d.ProjectRequirements
	case DocBackendStructure:
		return &d.BackendStructure
	case DocTechStack:
		return &d.TechStack
	case DocFrontendGuidelines:
		return &d.FrontendGuidelines
	case DocFileStructure:
		return &d.FileStructure
	case DocAppFlow:
		return &d.AppFlow
	case DocSystemPrompts:
		return &d.SystemPrompts
	}
	return nil
}

// Get 按类型读取文档内容
func (d GeneratedDocuments) Get(t DocumentType) string {
	if f := d.field(t); f != nil {
		return *f
	}
	return ""
}

// Set 按类型写入文档内容，未知类型返回 false
func (d *GeneratedDocuments) Set(t DocumentType, content string) bool {
	f := d.field(t)
	if f == nil {
		return false
	}
	*f = content
	return true
}

// Complete 七份文档均非空
func (d GeneratedDocuments) Complete() bool {
	return len(d.Missing()) == 0
}

// Missing 返回内容为空的文档类型，按生成顺序
func (d GeneratedDocuments) Missing() []DocumentType {
	var out []DocumentType
	for _, t := range documentOrder {
		if d.Get(t) == "" {
			out = append(out, t)
		}
	}
	return out
}

// Document 持久化的单份文档，(project_id, document_type) 唯一
type Document struct {
	ID           string       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID    string       `json:"project_id" gorm:"type:uuid;not null;uniqueIndex:uk_documents_project_type,priority:1"`
	DocumentType DocumentType `json:"document_type" gorm:"type:varchar(50);not null;uniqueIndex:uk_documents_project_type,priority:2"`
	Content      string       `json:"content" gorm:"type:text;not null"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Document) TableName() string {
	return "documents"
}

// DocumentsFromSet 将文档集展开为按生成顺序排列的行
func DocumentsFromSet(projectID string, docs GeneratedDocuments) []*Document {
	out := make([]*Document, 0, len(documentOrder))
	for _, t := range documentOrder {
		out = append(out, &Document{
			ProjectID:    projectID,
			DocumentType: t,
			Content:      docs.Get(t),
		})
	}
	return out
}

// SetFromDocuments 将行聚合回文档集，忽略未知类型
func SetFromDocuments(rows []*Document) GeneratedDocuments {
	var docs GeneratedDocuments
	for _, r := range rows {
		docs.Set(r.DocumentType, r.Content)
	}
	return docs
}
