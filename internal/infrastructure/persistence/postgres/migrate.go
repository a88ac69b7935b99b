package postgres

import (
	"context"
	"fmt"

	"docgen-ai-api/internal/domain/entity"
)

// Migrate 创建或更新表结构
func (c *Client) Migrate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "postgres.Migrate")
	defer span.End()

	db := c.db.WithContext(ctx)
	if err := db.AutoMigrate(&entity.Project{}, &entity.Document{}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// AutoMigrate 不生成级联外键，单独补齐
	const fk = "fk_documents_project"
	if !db.Migrator().HasConstraint(&entity.Document{}, fk) {
		stmt := `ALTER TABLE documents ADD CONSTRAINT ` + fk +
			` FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE`
		if err := db.Exec(stmt).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to add documents foreign key: %w", err)
		}
	}
	return nil
}
