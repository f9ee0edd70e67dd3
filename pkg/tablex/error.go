package tablex

import (
	"context"
	"errors"
	"fmt"
)

// Kind discriminates store failures so callers never match on message text
type Kind string

const (
	KindUnknownColumn    Kind = "UNKNOWN_COLUMN"
	KindPermissionDenied Kind = "PERMISSION_DENIED"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindInvalid          Kind = "INVALID"
	KindTimeout          Kind = "TIMEOUT"
	KindCanceled         Kind = "CANCELED"
	KindUnavailable      Kind = "UNAVAILABLE"
	KindInternal         Kind = "INTERNAL"
)

// Error is returned by every Client implementation
type Error struct {
	Kind    Kind
	Column  string // set for KindUnknownColumn when the store names it
	Code    string // store-native code, e.g. a SQLSTATE
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tablex %s: %s", e.Kind, e.Message)
	if e.Column != "" {
		msg += " (column " + e.Column + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error of the given kind
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind carried by err. Context errors map to
// KindTimeout and KindCanceled; anything else unknown is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	}
	return KindInternal
}

// IsUnknownColumn reports a schema-shape error
func IsUnknownColumn(err error) bool {
	return KindOf(err) == KindUnknownColumn
}

// FromContext converts a finished context into an *Error, or returns nil
func FromContext(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: "deadline exceeded", Err: err}
	default:
		return &Error{Kind: KindCanceled, Message: "request canceled", Err: err}
	}
}
