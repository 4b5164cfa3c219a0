package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level errors returned by every repository implementation.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict covers FK violations and stale optimistic-lock versions.
	ErrConflict = errors.New("conflict")
)

// MapPgError translates common Postgres error codes to domain errors.
// Serialization failures are surfaced as ErrConflict so callers can retry the unit of work.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation, pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return ErrConflict
		}
	}
	return err
}
