package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/pkg/logger"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func newTestConsumer(rdb *redis.Client, retryLimit int) *Consumer {
	return NewConsumer(rdb, ConsumerConfig{
		Stream:       StreamDocGenJobs,
		Group:        ConsumerGroupDocGenWorker,
		ConsumerName: "worker-1",
		BlockTimeout: -1,
		RetryLimit:   retryLimit,
	})
}

func TestProducerConsumer_Delivers(t *testing.T) {
	ctx := logger.WithContext(context.Background(), logger.RequestIDKey, "req-1")
	rdb := newTestRedis(t)
	c := newTestConsumer(rdb, 3)
	require.NoError(t, c.EnsureGroup(ctx))

	var got GenerateDocsPayload
	var gotReqID string
	c.RegisterHandler(MessageTypeGenerateDocs, func(ctx context.Context, msg *Message) error {
		gotReqID, _ = ctx.Value(logger.RequestIDKey).(string)
		return msg.UnmarshalPayload(&got)
	})

	p := NewProducer(rdb, 100)
	_, err := p.PublishGenerateDocs(ctx, &GenerateDocsPayload{
		JobID:         "job-1",
		UserID:        "user-1",
		Questionnaire: entity.QuestionnaireResponse{ProjectName: "Demo"},
	})
	require.NoError(t, err)

	n, err := c.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "job-1", got.JobID)
	assert.Equal(t, "Demo", got.Questionnaire.ProjectName)
	assert.Equal(t, "req-1", gotReqID)

	pending, err := rdb.XPending(ctx, string(StreamDocGenJobs), string(ConsumerGroupDocGenWorker)).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestConsumer_FailureGoesToDLQAtLimit(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	c := newTestConsumer(rdb, 1)
	require.NoError(t, c.EnsureGroup(ctx))
	c.RegisterHandler(MessageTypeGenerateDocs, func(context.Context, *Message) error {
		return errors.New("llm down")
	})

	_, err := NewProducer(rdb, 100).PublishGenerateDocs(ctx, &GenerateDocsPayload{JobID: "job-2"})
	require.NoError(t, err)

	_, err = c.Poll(ctx)
	require.NoError(t, err)

	dlq, err := rdb.XLen(ctx, StreamDocGenJobs.DLQStream()).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, dlq)
}

func TestConsumer_FailureStaysPendingBelowLimit(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	c := newTestConsumer(rdb, 3)
	require.NoError(t, c.EnsureGroup(ctx))
	c.RegisterHandler(MessageTypeGenerateDocs, func(context.Context, *Message) error {
		return errors.New("transient")
	})

	_, err := NewProducer(rdb, 100).PublishGenerateDocs(ctx, &GenerateDocsPayload{JobID: "job-3"})
	require.NoError(t, err)
	_, err = c.Poll(ctx)
	require.NoError(t, err)

	pending, err := rdb.XPending(ctx, string(StreamDocGenJobs), string(ConsumerGroupDocGenWorker)).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending.Count)
}

func TestConsumer_UnknownTypeIsAcked(t *testing.T) {
	ctx := context.Background()
	rdb := newTestRedis(t)
	c := newTestConsumer(rdb, 3)
	require.NoError(t, c.EnsureGroup(ctx))
	require.NoError(t, c.EnsureGroup(ctx))

	msg, err := NewMessage("m1", "unknown", "", "", map[string]string{})
	require.NoError(t, err)
	_, err = NewProducer(rdb, 100).Publish(ctx, StreamDocGenJobs, msg)
	require.NoError(t, err)

	_, err = c.Poll(ctx)
	require.NoError(t, err)

	pending, err := rdb.XPending(ctx, string(StreamDocGenJobs), string(ConsumerGroupDocGenWorker)).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestBackoffConfig_CalculateBackoff(t *testing.T) {
	b := BackoffConfig{Initial: time.Second, Max: 5 * time.Second, Multiplier: 2}

	assert.Equal(t, time.Second, b.CalculateBackoff(1))
	assert.Equal(t, 2*time.Second, b.CalculateBackoff(2))
	assert.Equal(t, 4*time.Second, b.CalculateBackoff(3))
	assert.Equal(t, 5*time.Second, b.CalculateBackoff(4))
}
