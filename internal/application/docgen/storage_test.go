package docgen

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/domain/repository"
	"docgen-ai-api/internal/infrastructure/persistence/memory"
	"docgen-ai-api/internal/infrastructure/persistence/redis"
	apperrors "docgen-ai-api/pkg/errors"
)

func fullDocuments() entity.GeneratedDocuments {
	var docs entity.GeneratedDocuments
	for _, dt := range entity.DocumentTypes() {
		docs.Set(dt, validContent(dt))
	}
	return docs
}

func newMemoryStorage(cache ProjectCache) *Storage {
	store := memory.NewStore()
	return NewStorage(store, store.Projects(), store.Documents(), cache, time.Minute)
}

func TestStorage_SaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStorage(nil)
	req := SaveRequest{ProjectID: "p-1", UserID: "u-1", Questionnaire: testQuestionnaire(), Documents: fullDocuments()}

	id1, err := s.SaveDocuments(ctx, req)
	require.NoError(t, err)
	id2, err := s.SaveDocuments(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	view, err := s.LoadProject(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, req.Documents, view.Documents)

	page, err := s.ListProjects(ctx, "u-1", repository.NewPagination(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestStorage_SaveOverwritesDocuments(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStorage(nil)
	req := SaveRequest{ProjectID: "p-1", Questionnaire: testQuestionnaire(), Documents: fullDocuments()}
	_, err := s.SaveDocuments(ctx, req)
	require.NoError(t, err)

	req.Documents.TechStack = "replaced"
	_, err = s.SaveDocuments(ctx, req)
	require.NoError(t, err)

	view, err := s.LoadProject(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "replaced", view.Documents.TechStack)
}

func TestStorage_SaveRejectsOtherUsersProject(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStorage(nil)
	id, err := s.SaveDocuments(ctx, SaveRequest{UserID: "alice", Questionnaire: testQuestionnaire(), Documents: fullDocuments()})
	require.NoError(t, err)

	hijacked := fullDocuments()
	hijacked.TechStack = "overwritten"
	_, err = s.SaveDocuments(ctx, SaveRequest{ProjectID: id, UserID: "mallory", Questionnaire: testQuestionnaire(), Documents: hijacked})
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	view, err := s.LoadProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Project.UserID)
	assert.Equal(t, fullDocuments().TechStack, view.Documents.TechStack)
}

func TestStorage_CheckProjectAccess(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStorage(nil)
	id, err := s.SaveDocuments(ctx, SaveRequest{UserID: "alice", Questionnaire: testQuestionnaire(), Documents: fullDocuments()})
	require.NoError(t, err)

	assert.NoError(t, s.CheckProjectAccess(ctx, "", "mallory"))
	assert.NoError(t, s.CheckProjectAccess(ctx, id, "alice"))
	assert.NoError(t, s.CheckProjectAccess(ctx, "not-yet-created", "mallory"))
	assert.ErrorIs(t, s.CheckProjectAccess(ctx, id, "mallory"), apperrors.ErrProjectNotFound)
	assert.ErrorIs(t, s.CheckProjectAccess(ctx, id, ""), apperrors.ErrProjectNotFound)
}

func TestStorage_LoadMissingProject(t *testing.T) {
	_, err := newMemoryStorage(nil).LoadProject(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeProjectNotFound))
}

func TestStorage_DeleteProject(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStorage(nil)
	id, err := s.SaveDocuments(ctx, SaveRequest{Questionnaire: testQuestionnaire(), Documents: fullDocuments()})
	require.NoError(t, err)

	require.NoError(t, s.DeleteProject(ctx, id))
	_, err = s.LoadProject(ctx, id)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeProjectNotFound))
}

func TestStorage_CacheInvalidatedOnSave(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := redis.NewCache(redis.NewClientFromRedis(rdb))
	s := newMemoryStorage(cache)

	req := SaveRequest{ProjectID: "p-c", Questionnaire: testQuestionnaire(), Documents: fullDocuments()}
	_, err := s.SaveDocuments(ctx, req)
	require.NoError(t, err)

	_, err = s.LoadProject(ctx, "p-c")
	require.NoError(t, err)
	assert.True(t, mr.Exists(redis.ProjectKey("p-c")))

	req.Documents.AppFlow = "updated flow"
	_, err = s.SaveDocuments(ctx, req)
	require.NoError(t, err)
	assert.False(t, mr.Exists(redis.ProjectKey("p-c")))

	view, err := s.LoadProject(ctx, "p-c")
	require.NoError(t, err)
	assert.Equal(t, "updated flow", view.Documents.AppFlow)
	assert.Equal(t, "Acme Inventory", view.Project.Name)

	_, err = s.LoadProject(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeProjectNotFound))
}
