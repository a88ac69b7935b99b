package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docgen-ai-api/internal/domain/entity"
)

// JobStore 异步任务状态存储
type JobStore struct {
	client *Client
	ttl    time.Duration
}

// NewJobStore 创建任务状态存储，ttl 到期后状态自动清理
func NewJobStore(client *Client, ttl time.Duration) *JobStore {
	return &JobStore{client: client, ttl: ttl}
}

func jobKey(id string) string {
	return "docgen:job:" + id
}

// Save 写入任务状态
func (s *JobStore) Save(ctx context.Context, job *entity.GenerationJob) error {
	ctx, span := tracer.Start(ctx, "redis.JobStore.Save",
		trace.WithAttributes(attribute.String("job.id", job.ID), attribute.String("job.status", string(job.Status))))
	defer span.End()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := s.client.rdb.Set(ctx, jobKey(job.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

// Get 读取任务状态，不存在时返回 nil, nil
func (s *JobStore) Get(ctx context.Context, id string) (*entity.GenerationJob, error) {
	ctx, span := tracer.Start(ctx, "redis.JobStore.Get",
		trace.WithAttributes(attribute.String("job.id", id)))
	defer span.End()

	data, err := s.client.rdb.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var job entity.GenerationJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}
