package database

import "errors"

var (
	// ErrNotFound is returned when a row addressed by key does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert collides with an existing unique key.
	ErrConflict = errors.New("already exists")

	// ErrInvalidEncoding is returned when an embedding blob has the wrong byte length.
	ErrInvalidEncoding = errors.New("invalid embedding encoding")
)
