package services

import (
	"errors"
	"fmt"

	"github.com/flightdesk/booking-backend/internal/database"
)

// Kind classifies a service failure so transports can map it to a status code
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindCapacityExceeded Kind = "CAPACITY_EXCEEDED"
	KindConflict         Kind = "CONFLICT"
	KindUnauthorized     Kind = "UNAUTHORIZED"
	KindServiceError     Kind = "SERVICE_ERROR"
)

// Error is the error type returned by every service operation
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindServiceError for foreign errors
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindServiceError
}

func notFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func serviceError(message string, err error) error {
	return &Error{Kind: KindServiceError, Message: message, Err: err}
}

// fromRepository maps repository sentinels onto service kinds. what names the entity
// for NotFound messages, e.g. "booking 12".
func fromRepository(err error, what string) error {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return notFound("%s not found", what)
	case errors.Is(err, database.ErrInsufficientSeats):
		return &Error{Kind: KindCapacityExceeded, Message: "not enough seats available", Err: err}
	case errors.Is(err, database.ErrDuplicate):
		return &Error{Kind: KindConflict, Message: what + " already exists", Err: err}
	case errors.Is(err, database.ErrReferenced):
		return &Error{Kind: KindConflict, Message: what + " is still referenced", Err: err}
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	return serviceError("database operation failed for "+what, err)
}
