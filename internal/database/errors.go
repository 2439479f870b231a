package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a keyed lookup matches no row, or a list query is empty.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientSeats is returned when a seat decrement would drive a route below zero.
	ErrInsufficientSeats = errors.New("insufficient seats available")

	// ErrDuplicate is returned on a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")

	// ErrReferenced is returned when a delete is blocked by a restricting foreign key.
	ErrReferenced = errors.New("record is referenced by other records")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// translateError maps driver errors from either lib/pq or pgx onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	code := ""
	var pqErr *pq.Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	case errors.As(err, &pgErr):
		code = pgErr.Code
	}

	switch code {
	case uniqueViolation:
		return ErrDuplicate
	case foreignKeyViolation:
		return ErrReferenced
	}
	return err
}

// wrap annotates err for the given operation, keeping sentinel errors matchable with errors.Is.
func wrap(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, translateError(err))
}
