package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a mutation targets a row that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrResourceExhausted is returned when no pooled connection became available in time.
	ErrResourceExhausted = errors.New("connection pool exhausted")
	// ErrInvalidTransition is returned when a topic is not in a status the update may leave.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrConflict is returned when a uniqueness rule would be violated.
	ErrConflict = errors.New("conflict")
)

// StorageError represents a failed statement or transaction.
type StorageError struct {
	Op    string
	Cause error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error: failed to %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("storage error: failed to %s", e.Op)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// storageErr wraps err as a StorageError, mapping unique violations to ErrConflict.
func storageErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &StorageError{Op: op, Cause: fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)}
	}
	return &StorageError{Op: op, Cause: err}
}
