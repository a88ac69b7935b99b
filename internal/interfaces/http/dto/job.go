package dto

import (
	"time"

	"docgen-ai-api/internal/domain/entity"
)

// SubmitJobResponse 提交任务响应
type SubmitJobResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// JobResponse 任务响应
type JobResponse struct {
	JobID           string                     `json:"jobId"`
	ProjectID       string                     `json:"projectId,omitempty"`
	Status          string                     `json:"status"`
	Progress        entity.GenerationProgress  `json:"progress"`
	Documents       *entity.GeneratedDocuments `json:"documents,omitempty"`
	FailedDocuments []entity.DocumentType      `json:"failedDocuments,omitempty"`
	Error           string                     `json:"error,omitempty"`
	Attempts        int                        `json:"attempts"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
	CompletedAt     *time.Time                 `json:"completedAt,omitempty"`
}

// ToJobResponse 将领域实体转换为响应 DTO
func ToJobResponse(j *entity.GenerationJob) *JobResponse {
	if j == nil {
		return nil
	}
	return &JobResponse{
		JobID:           j.ID,
		ProjectID:       j.ProjectID,
		Status:          string(j.Status),
		Progress:        j.Progress,
		Documents:       j.Documents,
		FailedDocuments: j.FailedDocuments,
		Error:           j.ErrorMessage,
		Attempts:        j.Attempts,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
		CompletedAt:     j.CompletedAt,
	}
}
