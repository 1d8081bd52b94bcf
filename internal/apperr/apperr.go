// Package apperr defines the error taxonomy carried from the services to
// the HTTP boundary, where it is mapped to a status code and the uniform
// response envelope. Raw causes stay wrapped for server-side logs and are
// never shown to clients.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	// Internal is the fallback for unclassified errors.
	Internal Kind = iota
	// Unauthenticated - missing, invalid or expired token.
	Unauthenticated
	// Forbidden - authenticated but insufficient role or ownership mismatch.
	Forbidden
	// NotFound - referenced entity absent.
	NotFound
	// InvalidRequest - malformed input.
	InvalidRequest
	// Conflict - duplicate unique field.
	Conflict
	// Upstream - payment provider or blob store failure.
	Upstream
)

// Error is a classified application error with a client-safe message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind with a client-visible message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches an underlying cause kept for logging only.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind of err, defaulting to Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Message returns the client-safe message of err, or a generic fallback
// for unclassified errors.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Msg
	}
	return "internal server error"
}

// HTTPStatus maps err to the HTTP status of its kind.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidRequest:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
