package domain

import "errors"

var (
	// ErrValidation marks rejected input (missing fields, over-length tags, invalid types).
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a uniqueness violation in the store.
	ErrConflict = errors.New("already exists")
	// ErrNotFound marks a missing referenced row.
	ErrNotFound = errors.New("not found")
)
