// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/domain/repository"
)

// ProjectRepository 项目仓储实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// Upsert 按 ID 创建或覆盖项目，user_id 与 created_at 保持首次写入的值
func (r *ProjectRepository) Upsert(ctx context.Context, project *entity.Project) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Upsert")
	defer span.End()

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "questionnaire_data", "updated_at"}),
	}).Create(project).Error
	if err != nil {
		span.RecordError(err)
		return wrapDBError(err, "failed to upsert project")
	}
	return nil
}

// GetByID 根据 ID 获取项目
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var project entity.Project
	if err := db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, wrapDBError(err, "failed to get project")
	}
	return &project, nil
}

// ListByUser 获取用户项目列表
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db).Model(&entity.Project{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, wrapDBError(err, "failed to count projects")
	}

	var projects []*entity.Project
	if err := db.Order("updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&projects).Error; err != nil {
		span.RecordError(err)
		return nil, wrapDBError(err, "failed to list projects")
	}

	return repository.NewPagedResult(projects, total, pagination), nil
}

// Delete 删除项目，文档由外键级联删除
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Project{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return wrapDBError(err, "failed to delete project")
	}
	return nil
}
