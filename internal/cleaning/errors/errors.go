package errors

import "errors"

var (
	ErrNotFound = errors.New("cleaning run not found")

	ErrInvalidID = errors.New("invalid cleaning run ID format")
)
