package model

import "errors"

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateLinkToken is returned when a link token violates the
	// unique index; callers regenerate and retry.
	ErrDuplicateLinkToken = errors.New("duplicate link token")
	// ErrDuplicateUser is returned when a username or email is already taken.
	ErrDuplicateUser = errors.New("duplicate user")
)
