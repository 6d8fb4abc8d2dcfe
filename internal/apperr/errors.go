// Package apperr defines the error kinds shared by the workflow services and
// the API layer. Services wrap a kind with context; callers match with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation error")
	ErrSchedulingConflict     = errors.New("scheduling conflict")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrConflict               = errors.New("conflicting write")
)

func Validation(format string, args ...interface{}) error {
	return wrap(ErrValidation, format, args...)
}

func SchedulingConflict(format string, args ...interface{}) error {
	return wrap(ErrSchedulingConflict, format, args...)
}

func PermissionDenied(format string, args ...interface{}) error {
	return wrap(ErrPermissionDenied, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return wrap(ErrNotFound, format, args...)
}

func InvalidState(format string, args ...interface{}) error {
	return wrap(ErrInvalidStateTransition, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return wrap(ErrConflict, format, args...)
}

func wrap(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Kind returns the sentinel kind err wraps, or nil for unclassified errors
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrSchedulingConflict,
		ErrPermissionDenied,
		ErrNotFound,
		ErrInvalidStateTransition,
		ErrConflict,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
