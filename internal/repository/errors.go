package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a record with the same key already exists
	ErrDuplicate = errors.New("duplicate record")

	// ErrUnavailable is returned by repositories whose backing store could not be reached
	ErrUnavailable = errors.New("record store unavailable")
)
