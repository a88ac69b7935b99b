// Package repository 定义项目与文档的存储接口，postgres 与内存实现共用
package repository

import (
	"context"

	"docgen-ai-api/internal/domain/entity"
)

// TxKey 事务句柄在 context 中的键
type TxKey struct{}

// Transactor 项目与文档的写入需要在同一事务内完成
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProjectRepository 项目仓储
type ProjectRepository interface {
	// Upsert 按 ID 创建或覆盖项目，归属用户和创建时间保持首次写入的值
	Upsert(ctx context.Context, project *entity.Project) error

	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.Project, error)

	// ListByUser 按更新时间倒序；userID 为空时列出全部
	ListByUser(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.Project], error)

	// Delete 删除项目及其文档
	Delete(ctx context.Context, id string) error
}

// DocumentRepository 文档仓储，每个项目每种文档类型至多一条
type DocumentRepository interface {
	// UpsertBatch 按 (project_id, document_type) 写入，已存在则覆盖内容
	UpsertBatch(ctx context.Context, docs []*entity.Document) error

	ListByProject(ctx context.Context, projectID string) ([]*entity.Document, error)

	DeleteByProject(ctx context.Context, projectID string) error
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination 分页参数，页码从 1 开始
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPagination 越界的页码和页大小回落到默认值
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) Limit() int {
	return p.PageSize
}

// PagedResult 一页项目列表及总数
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPagedResult 未经 NewPagination 构造的零值分页按默认值计算总页数
func NewPagedResult[T any](items []T, total int64, pagination Pagination) *PagedResult[T] {
	if pagination.PageSize < 1 || pagination.Page < 1 {
		pagination = NewPagination(pagination.Page, pagination.PageSize)
	}
	totalPages := int((total + int64(pagination.PageSize) - 1) / int64(pagination.PageSize))
	if items == nil {
		items = []T{}
	}
	return &PagedResult[T]{
		Items:      items,
		Total:      total,
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalPages: totalPages,
	}
}
