package docgen

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/domain/repository"
	"docgen-ai-api/internal/infrastructure/persistence/redis"
	apperrors "docgen-ai-api/pkg/errors"
	"docgen-ai-api/pkg/logger"
	"docgen-ai-api/pkg/metrics"
	"docgen-ai-api/pkg/tracer"
)

// ProjectCache 项目读缓存，nil 表示不使用缓存
type ProjectCache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, error)
	Delete(ctx context.Context, keys ...string) error
}

// SaveRequest 持久化一次生成结果
type SaveRequest struct {
	// ProjectID 为空时新建项目
	ProjectID     string
	UserID        string
	Questionnaire entity.QuestionnaireResponse
	Documents     entity.GeneratedDocuments
}

// ProjectView 项目及其文档
type ProjectView struct {
	Project   *entity.Project           `json:"project"`
	Documents entity.GeneratedDocuments `json:"documents"`
}

// Storage 文档持久化网关
type Storage struct {
	tx        repository.Transactor
	projects  repository.ProjectRepository
	documents repository.DocumentRepository
	cache     ProjectCache
	cacheTTL  time.Duration
}

// NewStorage cache 可为 nil
func NewStorage(tx repository.Transactor, projects repository.ProjectRepository, documents repository.DocumentRepository, cache ProjectCache, cacheTTL time.Duration) *Storage {
	return &Storage{
		tx:        tx,
		projects:  projects,
		documents: documents,
		cache:     cache,
		cacheTTL:  cacheTTL,
	}
}

// SaveDocuments 在一个事务内写入项目和七份文档，重复调用结果一致
func (s *Storage) SaveDocuments(ctx context.Context, req SaveRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "docgen.Storage.SaveDocuments")
	defer span.End()

	projectID := req.ProjectID
	if projectID == "" {
		projectID = uuid.NewString()
	}
	ctx = logger.WithContext(ctx, logger.ProjectIDKey, projectID)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if req.ProjectID != "" {
			if err := s.checkOwner(ctx, projectID, req.UserID); err != nil {
				return err
			}
		}
		project := entity.NewProject(projectID, req.UserID, req.Questionnaire)
		if err := s.projects.Upsert(ctx, project); err != nil {
			return err
		}
		return s.documents.UpsertBatch(ctx, entity.DocumentsFromSet(projectID, req.Documents))
	})
	if err != nil {
		tracer.RecordError(span, err)
		metrics.PersistenceTotal.WithLabelValues("failed").Inc()
		return "", persistenceError(err, "failed to save documents")
	}
	metrics.PersistenceTotal.WithLabelValues("success").Inc()

	s.invalidate(ctx, projectID)
	logger.Info(ctx, "documents saved", "user_id", req.UserID)
	return projectID, nil
}

// CheckProjectAccess 覆盖已有项目前的归属校验。项目不存在时允许以该 ID 新建，
// 属于其他用户时按不存在处理
func (s *Storage) CheckProjectAccess(ctx context.Context, projectID, userID string) error {
	if projectID == "" {
		return nil
	}
	if err := s.checkOwner(ctx, projectID, userID); err != nil {
		return persistenceError(err, "failed to load project")
	}
	return nil
}

func (s *Storage) checkOwner(ctx context.Context, projectID, userID string) error {
	existing, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if existing != nil && existing.UserID != userID {
		logger.Warn(ctx, "project belongs to another user", "user_id", userID)
		return apperrors.ErrProjectNotFound
	}
	return nil
}

// LoadProject 读取项目及文档，优先走缓存
func (s *Storage) LoadProject(ctx context.Context, projectID string) (*ProjectView, error) {
	ctx, span := tracer.Start(ctx, "docgen.Storage.LoadProject")
	defer span.End()

	if s.cache == nil {
		view, err := s.loadFromDB(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if view == nil {
			return nil, apperrors.ErrProjectNotFound
		}
		return view, nil
	}

	data, err := s.cache.GetOrLoad(ctx, redis.ProjectKey(projectID), s.cacheTTL, func(ctx context.Context) (any, error) {
		view, err := s.loadFromDB(ctx, projectID)
		if err != nil || view == nil {
			return nil, err
		}
		return view, nil
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}
	if data == nil {
		return nil, apperrors.ErrProjectNotFound
	}

	var view ProjectView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to decode cached project")
	}
	return &view, nil
}

// ListProjects 列出用户的项目，不含文档
func (s *Storage) ListProjects(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	result, err := s.projects.ListByUser(ctx, userID, pagination)
	if err != nil {
		return nil, persistenceError(err, "failed to list projects")
	}
	return result, nil
}

// DeleteProject 删除项目及其文档
func (s *Storage) DeleteProject(ctx context.Context, projectID string) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.documents.DeleteByProject(ctx, projectID); err != nil {
			return err
		}
		return s.projects.Delete(ctx, projectID)
	})
	if err != nil {
		return persistenceError(err, "failed to delete project")
	}
	s.invalidate(ctx, projectID)
	return nil
}

func (s *Storage) loadFromDB(ctx context.Context, projectID string) (*ProjectView, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, persistenceError(err, "failed to load project")
	}
	if project == nil {
		return nil, nil
	}
	rows, err := s.documents.ListByProject(ctx, projectID)
	if err != nil {
		return nil, persistenceError(err, "failed to load documents")
	}
	return &ProjectView{Project: project, Documents: entity.SetFromDocuments(rows)}, nil
}

func (s *Storage) invalidate(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, redis.ProjectKey(projectID)); err != nil {
		logger.Warn(ctx, "failed to invalidate project cache", "project_id", projectID, "error", err.Error())
	}
}

// persistenceError 非 AppError 统一归为 CodeDatabaseError
func persistenceError(err error, msg string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(err, apperrors.CodeDatabaseError, msg)
}
