package repository

import "errors"

var (
	// ErrNotFound is returned when no stored entity matches the request
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a unique constraint rejects a write
	ErrDuplicateKey = errors.New("duplicate key")
)
