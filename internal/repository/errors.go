package repository

import "errors"

var (
	// ErrNotFound indicates an account was not located.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a unique constraint was violated, e.g. a
	// duplicate email on create.
	ErrConflict = errors.New("repository: conflict")
)
