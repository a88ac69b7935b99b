package dto

import (
	"time"

	"docgen-ai-api/internal/application/docgen"
	"docgen-ai-api/internal/domain/entity"
)

// ProjectResponse 项目摘要
type ProjectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectDetailResponse 项目详情，含问卷与文档
type ProjectDetailResponse struct {
	ProjectResponse
	Questionnaire *entity.QuestionnaireResponse `json:"questionnaire,omitempty"`
	Documents     entity.GeneratedDocuments     `json:"documents"`
}

// ProjectListResponse 项目列表
type ProjectListResponse struct {
	Projects []*ProjectResponse `json:"projects"`
}

// PublishResponse 发布结果
type PublishResponse struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
}

// ToProjectResponse 将领域实体转换为响应 DTO
func ToProjectResponse(p *entity.Project) *ProjectResponse {
	if p == nil {
		return nil
	}
	return &ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProjectDetailResponse 项目及文档
func ToProjectDetailResponse(v *docgen.ProjectView) *ProjectDetailResponse {
	return &ProjectDetailResponse{
		ProjectResponse: *ToProjectResponse(v.Project),
		Questionnaire:   v.Project.QuestionnaireData,
		Documents:       v.Documents,
	}
}

// ToProjectListResponse 将领域实体列表转换为响应 DTO
func ToProjectListResponse(projects []*entity.Project) *ProjectListResponse {
	resp := &ProjectListResponse{Projects: make([]*ProjectResponse, 0, len(projects))}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, ToProjectResponse(p))
	}
	return resp
}

// ToPublishResponse 发布结果
func ToPublishResponse(r *docgen.PublishResult) *PublishResponse {
	return &PublishResponse{URL: r.URL, Key: r.Key, Filename: r.Filename}
}
