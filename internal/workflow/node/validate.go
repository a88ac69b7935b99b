package node

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docgen-ai-api/internal/domain/entity"
	apperrors "docgen-ai-api/pkg/errors"
)

// ContentRule 文档内容校验规则
type ContentRule struct {
	MinLength int
	// Keywords 任意一个出现即可，大小写不敏感
	Keywords []string
}

var contentRules = map[entity.DocumentType]ContentRule{
	entity.DocProjectRequirements: {MinLength: 1000, Keywords: []string{"Requirements", "Functional", "Non-functional", "User Stories"}},
	entity.DocBackendStructure:    {MinLength: 1000, Keywords: []string{"API", "Database", "Authentication", "Endpoints"}},
	entity.DocTechStack:           {MinLength: 800, Keywords: []string{"Frontend", "Backend", "Database", "DevOps"}},
	entity.DocFrontendGuidelines:  {MinLength: 800, Keywords: []string{"Component", "State", "UI", "Testing"}},
	entity.DocFileStructure:       {MinLength: 500, Keywords: []string{"src", "components", "tests", "config"}},
	entity.DocAppFlow:             {MinLength: 800, Keywords: []string{"Flow", "User Journey", "State", "Error Handling"}},
	entity.DocSystemPrompts:       {MinLength: 800, Keywords: []string{"Prompt", "Generation", "Guidelines", "Example"}},
}

// RuleFor 返回文档类型的校验规则
func RuleFor(docType entity.DocumentType) (ContentRule, bool) {
	r, ok := contentRules[docType]
	return r, ok
}

// ValidateContent 校验生成内容，失败返回 CodeContentValidation
func ValidateContent(docType entity.DocumentType, content string) error {
	rule, ok := contentRules[docType]
	if !ok {
		return apperrors.ErrUnknownDocumentType.WithDetail(string(docType))
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return apperrors.New(apperrors.CodeContentValidation, "generated content is empty").
			WithDetail(string(docType))
	}
	if n := utf8.RuneCountInString(trimmed); n < rule.MinLength {
		return apperrors.New(apperrors.CodeContentValidation, "generated content is too short").
			WithDetail(fmt.Sprintf("%s: %d < %d", docType, n, rule.MinLength))
	}

	lower := strings.ToLower(trimmed)
	for _, kw := range rule.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return nil
		}
	}
	return apperrors.New(apperrors.CodeContentValidation, "generated content misses required keywords").
		WithDetail(fmt.Sprintf("%s: expected one of %s", docType, strings.Join(rule.Keywords, ", ")))
}
