package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/domain/repository"
)

// DocumentRepository 文档仓储实现
type DocumentRepository struct {
	client *Client
}

// NewDocumentRepository 创建文档仓储
func NewDocumentRepository(client *Client) *DocumentRepository {
	return &DocumentRepository{client: client}
}

// UpsertBatch 批量写入文档，冲突键为 (project_id, document_type)
func (r *DocumentRepository) UpsertBatch(ctx context.Context, docs []*entity.Document) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.UpsertBatch")
	defer span.End()

	if len(docs) == 0 {
		return nil
	}
	for _, d := range docs {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
	}

	db := getDB(ctx, r.client.db)
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "document_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(&docs).Error
	if err != nil {
		span.RecordError(err)
		return wrapDBError(err, "failed to upsert documents")
	}
	return nil
}

// ListByProject 获取项目下全部文档
func (r *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.Document, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.ListByProject")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var docs []*entity.Document
	if err := db.Where("project_id = ?", projectID).Find(&docs).Error; err != nil {
		span.RecordError(err)
		return nil, wrapDBError(err, "failed to list documents")
	}
	return docs, nil
}

// DeleteByProject 删除项目下全部文档
func (r *DocumentRepository) DeleteByProject(ctx context.Context, projectID string) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.DeleteByProject")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Document{}, "project_id = ?", projectID).Error; err != nil {
		span.RecordError(err)
		return wrapDBError(err, "failed to delete documents")
	}
	return nil
}

var (
	_ repository.ProjectRepository  = (*ProjectRepository)(nil)
	_ repository.DocumentRepository = (*DocumentRepository)(nil)
	_ repository.Transactor         = (*TxManager)(nil)
)
