package persistence

import "errors"

var (
	// ErrEntityNotFound is returned when an entity is not found in the repository.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)
