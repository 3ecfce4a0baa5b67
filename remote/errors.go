package remote

import (
	"errors"
	"fmt"
)

// Error kinds. Every backend failure unwraps to exactly one of these.
var (
	ErrAuthRequired  = errors.New("authentication required")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrReferenced    = errors.New("referenced by other data")
	ErrValidation    = errors.New("validation failed")
	ErrServer        = errors.New("server error")
)

// Error is the user-facing error returned by the data layer.
type Error struct {
	Kind    error
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an Error of the given kind.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or ErrServer for foreign errors.
func KindOf(err error) error {
	for _, kind := range []error{ErrAuthRequired, ErrNotFound, ErrAlreadyExists, ErrReferenced, ErrValidation, ErrServer} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrServer
}

// KindFromCode maps the short codes carried in API error bodies.
func KindFromCode(code string) (error, bool) {
	switch code {
	case "auth_required":
		return ErrAuthRequired, true
	case "not_found":
		return ErrNotFound, true
	case "already_exists":
		return ErrAlreadyExists, true
	case "referenced":
		return ErrReferenced, true
	case "validation_failed":
		return ErrValidation, true
	case "server_error":
		return ErrServer, true
	}
	return nil, false
}

// Code is the inverse of KindFromCode.
func Code(kind error) string {
	switch kind {
	case ErrAuthRequired:
		return "auth_required"
	case ErrNotFound:
		return "not_found"
	case ErrAlreadyExists:
		return "already_exists"
	case ErrReferenced:
		return "referenced"
	case ErrValidation:
		return "validation_failed"
	default:
		return "server_error"
	}
}

// KindFromStatus maps an HTTP status when no code is available.
func KindFromStatus(status int) error {
	switch status {
	case 401, 403:
		return ErrAuthRequired
	case 404:
		return ErrNotFound
	case 409:
		return ErrAlreadyExists
	case 400, 422:
		return ErrValidation
	default:
		return ErrServer
	}
}

// Retriable reports whether a failed idempotent step may be attempted again.
func Retriable(err error) bool {
	return errors.Is(err, ErrServer)
}
