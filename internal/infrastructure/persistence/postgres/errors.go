package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "docgen-ai-api/pkg/errors"
)

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// wrapDBError 将驱动错误转换为 AppError，保留 SQLSTATE 便于排查
func wrapDBError(err error, op string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detail := fmt.Sprintf("sqlstate=%s constraint=%s", pgErr.Code, pgErr.ConstraintName)
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.Wrap(err, apperrors.CodeConflict, op+": duplicate record").WithDetail(detail)
		case pgForeignKeyViolation:
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, op+": missing parent record").WithDetail(detail)
		default:
			return apperrors.Wrap(err, apperrors.CodeDatabaseError, op).WithDetail(detail)
		}
	}
	return apperrors.Wrap(err, apperrors.CodeDatabaseError, op)
}
