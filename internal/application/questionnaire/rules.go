package questionnaire

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"docgen-ai-api/internal/domain/entity"
)

// fieldRule 单字段规则，tag 为 validator 规则串
type fieldRule struct {
	tag     string
	message string
}

var rules = map[entity.QuestionnaireField]fieldRule{
	entity.FieldProjectName:        {tag: "min=2", message: "Project name is required"},
	entity.FieldProjectDescription: {tag: "min=10", message: "Please provide a detailed description"},
	entity.FieldTargetAudience:     {tag: "min=5", message: "Target audience is required"},
	entity.FieldKeyFeatures:        {tag: "min=10", message: "Please list key features"},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateField 校验单个字段，通过返回空串。无规则的字段总是通过。
func ValidateField(field entity.QuestionnaireField, value string) string {
	rule, ok := rules[field]
	if !ok {
		return ""
	}
	if err := getValidator().Var(value, rule.tag); err != nil {
		return rule.message
	}
	return ""
}

// Validate 校验整份问卷，返回字段到错误信息的映射，全部通过时为空
func Validate(q entity.QuestionnaireResponse) map[entity.QuestionnaireField]string {
	errs := make(map[entity.QuestionnaireField]string)
	for _, f := range entity.QuestionnaireFields() {
		if msg := ValidateField(f, q.Get(f)); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}
