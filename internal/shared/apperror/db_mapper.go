package apperror

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error classes we translate. Everything else stays an opaque 500
// so constraint names and SQL never leak to the caller.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInsufficientPrivs   = "42501"
)

// FromDB translates driver/ORM errors into the shared taxonomy.
func FromDB(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Wrap(err, CodeConflict, "Resource already exists", http.StatusConflict)
		case pgForeignKeyViolation:
			return Wrap(err, CodeConflict, "Resource is referenced by other records", http.StatusConflict)
		case pgCheckViolation:
			return Wrap(err, CodeInvalidInput, "Value violates a data constraint", http.StatusBadRequest)
		case pgInsufficientPrivs:
			return Wrap(err, CodeForbidden, "Database denied the operation", http.StatusForbidden)
		}
	}

	return Wrap(err, CodeInternalError, "An unexpected error occurred", http.StatusInternalServerError)
}
