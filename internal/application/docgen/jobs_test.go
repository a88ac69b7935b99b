package docgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/infrastructure/messaging"
	"docgen-ai-api/internal/infrastructure/persistence/redis"
	apperrors "docgen-ai-api/pkg/errors"
)

type fakeQueue struct {
	published []*messaging.GenerateDocsPayload
	err       error
}

func (q *fakeQueue) PublishGenerateDocs(_ context.Context, job *messaging.GenerateDocsPayload) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.published = append(q.published, job)
	return "1-0", nil
}

func newTestJobStore(t *testing.T) *redis.JobStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.NewJobStore(redis.NewClientFromRedis(rdb), time.Hour)
}

func payloadMessage(t *testing.T, p *messaging.GenerateDocsPayload) *messaging.Message {
	t.Helper()
	msg, err := messaging.NewMessage("m-1", messaging.MessageTypeGenerateDocs, p.UserID, p.ProjectID, p)
	require.NoError(t, err)
	return msg
}

func TestJobService_SubmitAndRun(t *testing.T) {
	ctx := context.Background()
	store := newTestJobStore(t)
	queue := &fakeQueue{}
	storage := newMemoryStorage(nil)
	g, _ := newTestGenerator(t, newScriptedLLM(), storage, nil)
	svc := NewJobService(store, queue, g)

	job, err := svc.Submit(ctx, "user-1", "", testQuestionnaire())
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusPending, job.Status)
	require.Len(t, queue.published, 1)
	assert.Equal(t, job.ID, queue.published[0].JobID)

	require.NoError(t, svc.HandleMessage(ctx, payloadMessage(t, queue.published[0])))

	got, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusCompleted, got.Status)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, entity.GenerationCompleted, got.Progress.Status)
	require.NotNil(t, got.Documents)
	assert.True(t, got.Documents.Complete())
	require.NotEmpty(t, got.ProjectID)

	view, err := storage.LoadProject(ctx, got.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", view.Project.UserID)

	// 重复投递不再执行
	require.NoError(t, svc.HandleMessage(ctx, payloadMessage(t, queue.published[0])))
	again, err := svc.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Attempts)
}

func TestJobService_GenerationFailureIsTerminal(t *testing.T) {
	ctx := context.Background()
	llm := newScriptedLLM()
	llm.alwaysErr[entity.DocProjectRequirements] = true
	g, _ := newTestGenerator(t, llm, nil, func(o *Options) { o.FailurePolicy = FailureAbort })
	svc := NewJobService(newTestJobStore(t), &fakeQueue{}, g)

	p := &messaging.GenerateDocsPayload{JobID: "job-x", UserID: "u", Questionnaire: testQuestionnaire()}
	require.NoError(t, svc.HandleMessage(ctx, payloadMessage(t, p)))

	job, err := svc.Get(ctx, "job-x")
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "Rate limit exceeded")
}

func TestJobService_SubmitRejectsOtherUsersProject(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage(nil)
	pid, err := storage.SaveDocuments(ctx, SaveRequest{UserID: "alice", Questionnaire: testQuestionnaire(), Documents: fullDocuments()})
	require.NoError(t, err)

	g, _ := newTestGenerator(t, newScriptedLLM(), storage, nil)
	queue := &fakeQueue{}
	svc := NewJobService(newTestJobStore(t), queue, g)

	_, err = svc.Submit(ctx, "mallory", pid, testQuestionnaire())
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
	assert.Empty(t, queue.published)

	_, err = svc.Submit(ctx, "alice", pid, testQuestionnaire())
	require.NoError(t, err)
	assert.Len(t, queue.published, 1)
}

func TestJobService_SubmitQueueFailure(t *testing.T) {
	ctx := context.Background()
	store := newTestJobStore(t)
	svc := NewJobService(store, &fakeQueue{err: errors.New("redis down")}, nil)

	_, err := svc.Submit(ctx, "u", "", testQuestionnaire())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMessagingError))
}

func TestJobService_GetMissing(t *testing.T) {
	svc := NewJobService(newTestJobStore(t), &fakeQueue{}, nil)
	_, err := svc.Get(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeJobNotFound))
}

func TestJobService_BadPayloadIsAcked(t *testing.T) {
	g, _ := newTestGenerator(t, newScriptedLLM(), nil, nil)
	svc := NewJobService(newTestJobStore(t), &fakeQueue{}, g)
	msg := &messaging.Message{ID: "m", Type: messaging.MessageTypeGenerateDocs, Payload: []byte(`"not an object"`)}
	assert.NoError(t, svc.HandleMessage(context.Background(), msg))
}
