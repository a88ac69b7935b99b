package entity

import (
	"time"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// GenerationJob 异步生成任务，状态保存在 Redis
type GenerationJob struct {
	ID              string              `json:"jobId"`
	UserID          string              `json:"userId,omitempty"`
	ProjectID       string              `json:"projectId,omitempty"`
	Status          JobStatus           `json:"status"`
	Progress        GenerationProgress  `json:"progress"`
	Documents       *GeneratedDocuments `json:"documents,omitempty"`
	FailedDocuments []DocumentType      `json:"failedDocuments,omitempty"`
	ErrorMessage    string              `json:"error,omitempty"`
	Attempts        int                 `json:"attempts"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	StartedAt       *time.Time          `json:"startedAt,omitempty"`
	CompletedAt     *time.Time          `json:"completedAt,omitempty"`
}

// NewGenerationJob 创建新任务
func NewGenerationJob(id, userID string) *GenerationJob {
	now := time.Now()
	return &GenerationJob{
		ID:        id,
		UserID:    userID,
		Status:    JobStatusPending,
		Progress:  IdleProgress(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Start 开始执行任务，消息重投时累计尝试次数
func (j *GenerationJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.Attempts++
	j.StartedAt = &now
	j.UpdatedAt = now
}

// UpdateProgress 记录最新进度
func (j *GenerationJob) UpdateProgress(p GenerationProgress) {
	j.Progress = p
	j.UpdatedAt = time.Now()
}

// Complete 完成任务，部分文档失败时仍视为完成
func (j *GenerationJob) Complete(projectID string, docs GeneratedDocuments, failed []DocumentType) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.ProjectID = projectID
	j.Documents = &docs
	j.FailedDocuments = failed
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// Fail 任务失败
func (j *GenerationJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// Finished 是否已结束
func (j *GenerationJob) Finished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
