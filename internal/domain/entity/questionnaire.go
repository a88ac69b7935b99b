package entity

// QuestionnaireField 问卷字段标识
type QuestionnaireField string

const (
	FieldProjectName          QuestionnaireField = "projectName"
	FieldProjectDescription   QuestionnaireField = "projectDescription"
	FieldTargetAudience       QuestionnaireField = "targetAudience"
	FieldKeyFeatures          QuestionnaireField = "keyFeatures"
	FieldTechnicalConstraints QuestionnaireField = "technicalConstraints"

	FieldBusinessGoals        QuestionnaireField = "businessGoals"
	FieldSecurityRequirements QuestionnaireField = "securityRequirements"
	FieldScalabilityNeeds     QuestionnaireField = "scalabilityNeeds"
	FieldBudget               QuestionnaireField = "budget"
	FieldTimeline             QuestionnaireField = "timeline"
)

// questionnaireFields 字段的固定展示顺序
var questionnaireFields = []QuestionnaireField{
	FieldProjectName,
	FieldProjectDescription,
	FieldTargetAudience,
	FieldKeyFeatures,
	FieldTechnicalConstraints,
	FieldBusinessGoals,
	FieldSecurityRequirements,
	FieldScalabilityNeeds,
	FieldBudget,
	FieldTimeline,
}

var fieldLabels = map[QuestionnaireField]string{
	FieldProjectName:          "Project Name",
	FieldProjectDescription:   "Project Description",
	FieldTargetAudience:       "Target Audience",
	FieldKeyFeatures:          "Key Features",
	FieldTechnicalConstraints: "Technical Constraints",
	FieldBusinessGoals:        "Business Goals",
	FieldSecurityRequirements: "Security Requirements",
	FieldScalabilityNeeds:     "Scalability Needs",
	FieldBudget:               "Budget",
	FieldTimeline:             "Timeline",
}

// QuestionnaireFields 返回全部字段，按展示顺序
func QuestionnaireFields() []QuestionnaireField {
	out := make([]QuestionnaireField, len(questionnaireFields))
	copy(out, questionnaireFields)
	return out
}

// Valid 是否为已知字段
func (f QuestionnaireField) Valid() bool {
	_, ok := fieldLabels[f]
	return ok
}

// Label 返回字段标题
func (f QuestionnaireField) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// QuestionnaireResponse 问卷答案，提交后按值传递，不再修改
type QuestionnaireResponse struct {
	ProjectName          string `json:"projectName" yaml:"projectName"`
	ProjectDescription   string `json:"projectDescription" yaml:"projectDescription"`
	TargetAudience       string `json:"targetAudience" yaml:"targetAudience"`
	KeyFeatures          string `json:"keyFeatures" yaml:"keyFeatures"`
	TechnicalConstraints string `json:"technicalConstraints,omitempty" yaml:"technicalConstraints,omitempty"`

	BusinessGoals        string `json:"businessGoals,omitempty" yaml:"businessGoals,omitempty"`
	SecurityRequirements string `json:"securityRequirements,omitempty" yaml:"securityRequirements,omitempty"`
	ScalabilityNeeds     string `json:"scalabilityNeeds,omitempty" yaml:"scalabilityNeeds,omitempty"`
	Budget               string `json:"budget,omitempty" yaml:"budget,omitempty"`
	Timeline             string `json:"timeline,omitempty" yaml:"timeline,omitempty"`
}

func (q *QuestionnaireResponse) field(f QuestionnaireField) *string {
	switch f {
	case FieldProjectName:
		return &q.ProjectName
	case FieldProjectDescription:
		return &q.ProjectDescription
	case FieldTargetAudience:
		return &q.TargetAudience
	case FieldKeyFeatures:
		return &q.KeyFeatures
	case FieldTechnicalConstraints:
		return &q.TechnicalConstraints
	case FieldBusinessGoals:
		return &q.BusinessGoals
	case FieldSecurityRequirements:
		return &q.SecurityRequirements
	case FieldScalabilityNeeds:
		return &q.ScalabilityNeeds
	case FieldBudget:
		return &q.Budget
	case FieldTimeline:
		return &q.Timeline
	}
	return nil
}

// Get 读取字段值
func (q QuestionnaireResponse) Get(f QuestionnaireField) string {
	if p := q.field(f); p != nil {
		return *p
	}
	return ""
}

// Set 写入字段值，未知字段返回 false
func (q *QuestionnaireResponse) Set(f QuestionnaireField, value string) bool {
	p := q.field(f)
	if p == nil {
		return false
	}
	*p = value
	return true
}
