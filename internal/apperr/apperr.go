// Package apperr classifies errors surfaced to users of the simulator.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error carries a user-facing message. Message is safe to render.
type Error struct {
	Kind    Kind
	Message string
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// KindOf reports KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Status maps an error to the HTTP status used on the apology page.
// Unknown symbols are a validation failure from the user's point of view.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindNotFound:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Message never leaks internal error text.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
