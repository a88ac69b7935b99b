package entity

// GenerationStatus 生成状态
type GenerationStatus string

const (
	GenerationIdle       GenerationStatus = "idle"
	GenerationGenerating GenerationStatus = "generating"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationError      GenerationStatus = "error"
)

// GenerationProgress 生成进度快照
type GenerationProgress struct {
	CurrentStep     int              `json:"currentStep"`
	TotalSteps      int              `json:"totalSteps"`
	CurrentDocument *DocumentType    `json:"currentDocument"`
	Status          GenerationStatus `json:"status"`
	Error           string           `json:"error,omitempty"`
	FailedDocuments []DocumentType   `json:"failedDocuments,omitempty"`
}

// IdleProgress 初始进度
func IdleProgress() GenerationProgress {
	return GenerationProgress{TotalSteps: TotalDocuments, Status: GenerationIdle}
}

// Terminal 是否为终态
func (p GenerationProgress) Terminal() bool {
	return p.Status == GenerationCompleted || p.Status == GenerationError
}
