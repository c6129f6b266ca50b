// Package errs defines the failure kinds shared by the ledger, its storage
// backends and the RPC layer.
//
// Callers test the kind with errors.Is; the message carries the detail.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for every failure kind the ledger reports.
var (
	// ErrNotFound means the referenced entity is absent or soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller lacks the required role or membership.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidSplit means a split allocation precondition was violated.
	ErrInvalidSplit = errors.New("invalid split")
	// ErrInvalidInput means the request itself is malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict means the entity is in a state that does not allow the operation.
	ErrConflict = errors.New("conflict")
	// ErrStorageUnavailable means the backing store failed. It is never retried here.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// NotFound returns an error of kind ErrNotFound.
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

// Forbidden returns an error of kind ErrForbidden.
func Forbidden(format string, args ...any) error {
	return wrap(ErrForbidden, format, args...)
}

// InvalidSplit returns an error of kind ErrInvalidSplit.
func InvalidSplit(format string, args ...any) error {
	return wrap(ErrInvalidSplit, format, args...)
}

// InvalidInput returns an error of kind ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return wrap(ErrInvalidInput, format, args...)
}

// Conflict returns an error of kind ErrConflict.
func Conflict(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}

// Storage wraps a backend failure so it reports ErrStorageUnavailable while
// keeping the driver error reachable through errors.Is/As.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err is of kind ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsForbidden reports whether err is of kind ErrForbidden.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsConflict reports whether err is of kind ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsStorage reports whether err is of kind ErrStorageUnavailable.
func IsStorage(err error) bool { return errors.Is(err, ErrStorageUnavailable) }
