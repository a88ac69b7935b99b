package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-ai-api/internal/domain/entity"
	"docgen-ai-api/internal/domain/repository"
)

func seedProject(t *testing.T, s *Store, id, userID string) {
	t.Helper()
	q := entity.QuestionnaireResponse{ProjectName: "Name " + id, ProjectDescription: "desc"}
	require.NoError(t, s.Projects().Upsert(context.Background(), entity.NewProject(id, userID, q)))
}

func TestStore_DocumentUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProject(t, s, "p1", "u1")

	require.NoError(t, s.Documents().UpsertBatch(ctx, []*entity.Document{
		{ProjectID: "p1", DocumentType: entity.DocTechStack, Content: "v1"},
	}))
	first, err := s.Documents().ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, s.Documents().UpsertBatch(ctx, []*entity.Document{
		{ProjectID: "p1", DocumentType: entity.DocTechStack, Content: "v2"},
	}))
	second, err := s.Documents().ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "v2", second[0].Content)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestStore_DocumentRequiresProject(t *testing.T) {
	err := NewStore().Documents().UpsertBatch(context.Background(), []*entity.Document{
		{ProjectID: "missing", DocumentType: entity.DocAppFlow, Content: "x"},
	})
	assert.Error(t, err)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		q := entity.QuestionnaireResponse{ProjectName: "Tx"}
		require.NoError(t, s.Projects().Upsert(ctx, entity.NewProject("p-tx", "u1", q)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := s.Projects().GetByID(ctx, "p-tx")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestStore_ListByUserPaginates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, id := range []string{"a", "b", "c"} {
		seedProject(t, s, id, "u1")
	}
	seedProject(t, s, "other", "u2")

	page, err := s.Projects().ListByUser(ctx, "u1", repository.NewPagination(2, 2))
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 1)
}

func TestStore_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProject(t, s, "p1", "u1")
	require.NoError(t, s.Documents().UpsertBatch(ctx, entity.DocumentsFromSet("p1", entity.GeneratedDocuments{AppFlow: "x"})))

	require.NoError(t, s.Projects().Delete(ctx, "p1"))
	docs, err := s.Documents().ListByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_ProjectUpsertKeepsOwner(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedProject(t, s, "p1", "u1")

	q := entity.QuestionnaireResponse{ProjectName: "Renamed", ProjectDescription: "desc"}
	require.NoError(t, s.Projects().Upsert(ctx, entity.NewProject("p1", "u2", q)))

	p, err := s.Projects().GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, "u1", p.UserID)
}
