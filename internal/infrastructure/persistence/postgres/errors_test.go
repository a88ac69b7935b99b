package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	apperrors "docgen-ai-api/pkg/errors"
)

func TestWrapDBError(t *testing.T) {
	assert.NoError(t, wrapDBError(nil, "noop"))

	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "uk_documents_project_type"})
	err := wrapDBError(unique, "failed to upsert documents")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Contains(t, apperrors.AsAppError(err).Detail, "uk_documents_project_type")

	fk := &pgconn.PgError{Code: "23503"}
	assert.True(t, apperrors.HasCode(wrapDBError(fk, "x"), apperrors.CodeDatabaseError))

	plain := errors.New("connection refused")
	err = wrapDBError(plain, "failed to get project")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDatabaseError))
	assert.ErrorIs(t, err, plain)
	assert.Equal(t, "PERSISTENCE_ERROR", apperrors.AsAppError(err).Kind())
}
