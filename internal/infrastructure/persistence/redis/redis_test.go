package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-ai-api/internal/domain/entity"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewClientFromRedis(rdb), mr
}

func TestClient_HealthCheck(t *testing.T) {
	c, _ := newTestClient(t)
	assert.NoError(t, c.HealthCheck(context.Background()))
}

func TestCache_GetOrLoad(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	cache := NewCache(c)

	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return map[string]string{"name": "Demo"}, nil
	}

	data, err := cache.GetOrLoad(ctx, ProjectKey("p1"), time.Minute, loader)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Demo"}`, string(data))
	assert.True(t, mr.Exists(ProjectKey("p1")))

	_, err = cache.GetOrLoad(ctx, ProjectKey("p1"), time.Minute, loader)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())

	require.NoError(t, cache.Delete(ctx, ProjectKey("p1")))
	_, err = cache.GetOrLoad(ctx, ProjectKey("p1"), time.Minute, loader)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestCache_GetOrLoadMissingIsNotCached(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	cache := NewCache(c)

	data, err := cache.GetOrLoad(ctx, ProjectKey("nope"), time.Minute, func(context.Context) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.False(t, mr.Exists(ProjectKey("nope")))

	boom := errors.New("db down")
	_, err = cache.GetOrLoad(ctx, ProjectKey("err"), time.Minute, func(context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestCache_GetOrLoadCollapsesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	cache := NewCache(c)

	release := make(chan struct{})
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cache.GetOrLoad(ctx, "k", time.Minute, loader)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(2))
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)
	l := NewRateLimiter(c)
	key := BuildRateLimitKey("user-1", "documentation")

	for i := 0; i < 3; i++ {
		ok, remaining, err := l.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2-i, remaining)
	}

	ok, remaining, err := l.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, remaining)
}

func TestJobStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	store := NewJobStore(c, time.Hour)

	job := entity.NewGenerationJob("job-1", "user-1")
	job.Start()
	require.NoError(t, store.Save(ctx, job))
	assert.Equal(t, time.Hour, mr.TTL(jobKey("job-1")))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.JobStatusRunning, got.Status)
	assert.Equal(t, 1, got.Attempts)

	missing, err := store.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
