// Package apperr defines the error kinds shared by the catalog, booking and
// attendance services. Every domain error wraps exactly one kind so callers
// can branch on errors.Is(err, apperr.ErrNotFound) without knowing the
// precise precondition that failed.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindUnknown          Kind = "UNKNOWN"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindInvalidState     Kind = "INVALID_STATE"
	KindInvalidArgument  Kind = "INVALID_ARGUMENT"
	KindStoreBusy        Kind = "STORE_BUSY"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidArgument  = errors.New("invalid argument")
	// ErrStoreBusy is the only retryable kind.
	ErrStoreBusy = errors.New("store busy, retry")
)

// Error is a domain error carrying its own message and a kind.
type Error struct {
	kind error
	msg  string
}

// New returns an error that prints msg and matches kind under errors.Is.
func New(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Busy marks cause as a transient store failure.
func Busy(cause error) error {
	if cause == nil {
		return ErrStoreBusy
	}
	return fmt.Errorf("%w: %w", ErrStoreBusy, cause)
}

// KindOf reports the kind err belongs to.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrStoreBusy), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindStoreBusy
	default:
		return KindUnknown
	}
}

// IsDomain reports whether err already carries a known kind.
func IsDomain(err error) bool {
	k := KindOf(err)
	return k != "" && k != KindUnknown
}

// Retryable reports whether the whole logical operation may be retried.
func Retryable(err error) bool {
	return KindOf(err) == KindStoreBusy
}
