package docgen

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/infrastructure/messaging"
	apperrors "docgen-ai-api/pkg/errors"
	"docgen-ai-api/pkg/logger"
	"docgen-ai-api/pkg/metrics"
)

// JobStore 异步任务状态存储，由 redis.JobStore 实现
type JobStore interface {
	Save(ctx context.Context, job *entity.GenerationJob) error
	// Get 不存在时返回 nil, nil
	Get(ctx context.Context, id string) (*entity.GenerationJob, error)
}

// JobQueue 任务队列，由 messaging.Producer 实现
type JobQueue interface {
	PublishGenerateDocs(ctx context.Context, job *messaging.GenerateDocsPayload) (string, error)
}

// JobService 异步生成：API 侧提交与查询，worker 侧执行
type JobService struct {
	store     JobStore
	queue     JobQueue
	generator *Generator
}

// NewJobService API 进程不执行任务，generator 可为 nil
func NewJobService(store JobStore, queue JobQueue, generator *Generator) *JobService {
	return &JobService{store: store, queue: queue, generator: generator}
}

// Submit 创建任务并投递到队列；projectID 属于其他用户时不入队
func (s *JobService) Submit(ctx context.Context, userID, projectID string, q entity.QuestionnaireResponse) (*entity.GenerationJob, error) {
	if s.generator != nil {
		if err := s.generator.CheckProjectAccess(ctx, projectID, userID); err != nil {
			return nil, err
		}
	}

	job := entity.NewGenerationJob(uuid.NewString(), userID)
	job.ProjectID = projectID
	ctx = logger.WithContext(ctx, logger.JobIDKey, job.ID)

	if err := s.store.Save(ctx, job); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to save job")
	}

	_, err := s.queue.PublishGenerateDocs(ctx, &messaging.GenerateDocsPayload{
		JobID:         job.ID,
		UserID:        userID,
		ProjectID:     projectID,
		Questionnaire: q,
	})
	if err != nil {
		job.Fail("failed to enqueue job")
		if serr := s.store.Save(ctx, job); serr != nil {
			logger.Error(ctx, "failed to mark job failed", serr)
		}
		return nil, apperrors.Wrap(err, apperrors.CodeMessagingError, "failed to enqueue job")
	}

	logger.Info(ctx, "generation job submitted")
	return job, nil
}

// Get 查询任务
func (s *JobService) Get(ctx context.Context, id string) (*entity.GenerationJob, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeCacheError, "failed to load job")
	}
	if job == nil {
		return nil, apperrors.ErrJobNotFound
	}
	return job, nil
}

// HandleMessage 消费者回调。生成失败属于终态，写入任务后确认消息；
// 只有基础设施错误和取消才返回 error 让消息重投。
func (s *JobService) HandleMessage(ctx context.Context, msg *messaging.Message) error {
	if s.generator == nil {
		return fmt.Errorf("job service has no generator")
	}

	var payload messaging.GenerateDocsPayload
	if err := msg.UnmarshalPayload(&payload); err != nil {
		logger.Error(ctx, "invalid generate docs payload", err, "message_id", msg.ID)
		return nil
	}
	ctx = logger.WithContext(ctx, logger.JobIDKey, payload.JobID)

	job, err := s.store.Get(ctx, payload.JobID)
	if err != nil {
		return err
	}
	if job == nil {
		// 状态已过期，按新任务重建
		job = entity.NewGenerationJob(payload.JobID, payload.UserID)
		job.ProjectID = payload.ProjectID
	}
	if job.Finished() {
		logger.Info(ctx, "job already finished, skipping", "status", job.Status)
		return nil
	}

	job.Start()
	if err := s.store.Save(ctx, job); err != nil {
		return err
	}

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	result, err := s.generator.GenerateAll(ctx, payload.Questionnaire,
		WithOwner(payload.UserID),
		WithProjectID(payload.ProjectID),
		WithProgress(func(p entity.GenerationProgress) {
			job.UpdateProgress(p)
			if serr := s.store.Save(ctx, job); serr != nil {
				logger.Warn(ctx, "failed to save job progress", "error", serr.Error())
			}
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		job.Fail(errorMessage(err))
		return s.store.Save(ctx, job)
	}

	projectID := result.ProjectID
	if projectID == "" {
		projectID = payload.ProjectID
	}
	job.Complete(projectID, result.Documents, result.FailedTypes())
	if result.PersistenceError != nil {
		job.ErrorMessage = errorMessage(result.PersistenceError)
	}
	return s.store.Save(ctx, job)
}
