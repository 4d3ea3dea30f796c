// Package apperr carries the client-visible error taxonomy across
// layers. Services return these; the HTTP boundary maps Kind to a
// status code and exposes only Message.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies a client-visible failure.
type Kind int

const (
	// KindValidation is malformed or missing input.
	KindValidation Kind = iota + 1
	// KindUnauthenticated is a missing or invalid identity.
	KindUnauthenticated
	// KindForbidden is a known identity with insufficient permission.
	KindForbidden
	// KindNotFound is an absent entity or link.
	KindNotFound
	// KindExpired is a grant past its validity.
	KindExpired
)

// Error is a taxonomy-tagged failure safe to surface to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Unauthenticated creates an unauthenticated error.
func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// NotFound creates a not-found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Expired creates an expired error.
func Expired(message string) *Error {
	return New(KindExpired, message)
}

// NewErrUserNotFound reports a missing share target.
func NewErrUserNotFound(id uuid.UUID) *Error {
	return Validation(fmt.Sprintf("user %s does not exist", id))
}

// KindOf extracts the taxonomy kind from err, unwrapping as needed.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}
