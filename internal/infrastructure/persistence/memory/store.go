// Package memory 提供进程内的仓储实现，用于本地调试、CLI 与测试
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/domain/repository"
)

type docKey struct {
	projectID string
	docType   entity.DocumentType
}

// Store 内存存储，同时实现项目、文档仓储与事务接口
type Store struct {
	mu        sync.RWMutex
	projects  map[string]*entity.Project
	documents map[docKey]*entity.Document

	// txMu 串行化事务，失败时按快照回滚
	txMu sync.Mutex
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{
		projects:  make(map[string]*entity.Project),
		documents: make(map[docKey]*entity.Document),
	}
}

type txMarker struct{}

// WithTransaction 在事务中执行操作，fn 返回错误时恢复到执行前的状态
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	projects, documents := s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.mu.Lock()
		s.projects, s.documents = projects, documents
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[string]*entity.Project, map[docKey]*entity.Document) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make(map[string]*entity.Project, len(s.projects))
	for k, v := range s.projects {
		cp := *v
		projects[k] = &cp
	}
	documents := make(map[docKey]*entity.Document, len(s.documents))
	for k, v := range s.documents {
		cp := *v
		documents[k] = &cp
	}
	return projects, documents
}

// Projects 返回项目仓储视图
func (s *Store) Projects() *ProjectRepository {
	return &ProjectRepository{s: s}
}

// Documents 返回文档仓储视图
func (s *Store) Documents() *DocumentRepository {
	return &DocumentRepository{s: s}
}

// ProjectRepository 项目仓储内存实现
type ProjectRepository struct {
	s *Store
}

// Upsert 按 ID 创建或覆盖项目，归属用户不随覆盖改变
func (r *ProjectRepository) Upsert(ctx context.Context, project *entity.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if project.ID == "" {
		return fmt.Errorf("project id is required")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	cp := *project
	if prev, ok := r.s.projects[project.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
		cp.UserID = prev.UserID
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	if project.QuestionnaireData != nil {
		q := *project.QuestionnaireData
		cp.QuestionnaireData = &q
	}
	r.s.projects[project.ID] = &cp
	return nil
}

// GetByID 根据 ID 获取项目，不存在时返回 nil, nil
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ListByUser 获取用户项目列表，按更新时间倒序
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	var all []*entity.Project
	for _, p := range r.s.projects {
		if p.UserID == userID {
			cp := *p
			all = append(all, &cp)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].UpdatedAt.After(all[j].UpdatedAt)
	})

	total := int64(len(all))
	start := min(pagination.Offset(), len(all))
	end := min(start+pagination.Limit(), len(all))
	return repository.NewPagedResult(all[start:end], total, pagination), nil
}

// Delete 删除项目及其文档
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.projects, id)
	for k := range r.s.documents {
		if k.projectID == id {
			delete(r.s.documents, k)
		}
	}
	return nil
}

// DocumentRepository 文档仓储内存实现
type DocumentRepository struct {
	s *Store
}

// UpsertBatch 按 (project_id, document_type) 写入，已存在则覆盖内容
func (r *DocumentRepository) UpsertBatch(ctx context.Context, docs []*entity.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for _, d := range docs {
		if _, ok := r.s.projects[d.ProjectID]; !ok {
			return fmt.Errorf("project %s does not exist", d.ProjectID)
		}
		key := docKey{projectID: d.ProjectID, docType: d.DocumentType}
		if prev, ok := r.s.documents[key]; ok {
			prev.Content = d.Content
			prev.UpdatedAt = now
			d.ID = prev.ID
			continue
		}
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		cp := *d
		cp.CreatedAt, cp.UpdatedAt = now, now
		r.s.documents[key] = &cp
	}
	return nil
}

// ListByProject 获取项目下全部文档，按生成顺序
func (r *DocumentRepository) ListByProject(ctx context.Context, projectID string) ([]*entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.Document
	for _, t := range entity.DocumentTypes() {
		if d, ok := r.s.documents[docKey{projectID: projectID, docType: t}]; ok {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

// DeleteByProject 删除项目下全部文档
func (r *DocumentRepository) DeleteByProject(ctx context.Context, projectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for k := range r.s.documents {
		if k.projectID == projectID {
			delete(r.s.documents, k)
		}
	}
	return nil
}

var (
	_ repository.ProjectRepository  = (*ProjectRepository)(nil)
	_ repository.DocumentRepository = (*DocumentRepository)(nil)
	_ repository.Transactor         = (*Store)(nil)
)
